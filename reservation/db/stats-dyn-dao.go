package db

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type HotelStats struct {
	Reservations       int
	FailedReservations int
	Cancellations      int
}

type StatsDynDao struct {
	client  *dynamodb.Client
	hotelId string
}

func NewStatsDynDao(client *dynamodb.Client, hotelId string) *StatsDynDao {
	return &StatsDynDao{client: client, hotelId: hotelId}
}

func (dao *StatsDynDao) IncrementReservations() error {
	return dao.increment("reservations")
}

func (dao *StatsDynDao) IncrementFailedReservations() error {
	return dao.increment("failed_reservations")
}

func (dao *StatsDynDao) IncrementCancellations() error {
	return dao.increment("cancellations")
}

func (dao *StatsDynDao) LoadStats() (HotelStats, error) {
	result, err := dao.client.GetItem(context.TODO(), &dynamodb.GetItemInput{
		TableName:      aws.String(ReservationTableName),
		Key:            key(dao.hotelId, statsSk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return HotelStats{}, err
	}

	var stats HotelStats
	if stats.Reservations, err = numberAttribute(result.Item, "reservations"); err != nil {
		return HotelStats{}, err
	}
	if stats.FailedReservations, err = numberAttribute(result.Item, "failed_reservations"); err != nil {
		return HotelStats{}, err
	}
	if stats.Cancellations, err = numberAttribute(result.Item, "cancellations"); err != nil {
		return HotelStats{}, err
	}
	return stats, nil
}

func (dao *StatsDynDao) increment(counter string) error {
	_, err := dao.client.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(ReservationTableName),
		Key:       key(dao.hotelId, statsSk),
		ExpressionAttributeNames: map[string]string{
			"#counter": counter,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		UpdateExpression: aws.String("ADD #counter :one"),
	})

	return err
}
