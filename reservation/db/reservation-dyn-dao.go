package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type ReservationDynDao struct {
	client  *dynamodb.Client
	hotelId string
}

func NewReservationDynDao(client *dynamodb.Client, hotelId string) *ReservationDynDao {
	return &ReservationDynDao{client: client, hotelId: hotelId}
}

// SaveReservation refuses to overwrite an existing item, so an instance
// working on a stale registry can never reuse a reservation id.
func (dao *ReservationDynDao) SaveReservation(reservation model.Reservation) error {
	item, err := BuildReservationItem(dao.hotelId, reservation)
	if err != nil {
		return err
	}

	_, err = dao.client.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName:           aws.String(ReservationTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return fmt.Errorf("%w: %v is already stored", model.ErrInvalidReservation, reservation.Id)
	}
	return err
}

func (dao *ReservationDynDao) MarkCancelled(reservation model.Reservation) error {
	item, err := BuildReservationItem(dao.hotelId, reservation)
	if err != nil {
		return err
	}

	_, err = dao.client.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(ReservationTableName),
		Key:       reservationKey(dao.hotelId, reservation.Id),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": &types.AttributeValueMemberS{Value: string(model.CANCELLED)},
			":active":    &types.AttributeValueMemberS{Value: string(model.ACTIVE)},
			":newState":  item["current_state"],
		},
		ConditionExpression: aws.String("#status = :active"),
		UpdateExpression:    aws.String("SET #status = :cancelled, current_state = :newState"),
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return fmt.Errorf("%w: %v is not active in storage", model.ErrReservationNotFound, reservation.Id)
	}
	return err
}

func (dao *ReservationDynDao) LoadReservations() ([]model.Reservation, error) {
	var reservations []model.Reservation
	var lastKey map[string]types.AttributeValue

	for {
		result, err := dao.client.Query(context.TODO(), &dynamodb.QueryInput{
			TableName:              aws.String(ReservationTableName),
			KeyConditionExpression: aws.String("PK = :hotelId AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":hotelId": &types.AttributeValueMemberS{Value: dao.hotelId},
				":prefix":  &types.AttributeValueMemberS{Value: reservationSkPrefix},
			},
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			reservation, err := reservationFromItem(item)
			if err != nil {
				return nil, err
			}
			reservations = append(reservations, reservation)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return reservations, nil
}
