package db

import (
	"context"
	"errors"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// HotelLockDynDao is a lease on the hotel shared by every function instance:
// the lock item holds the id of the instance currently owning the hotel, or NULL.
type HotelLockDynDao struct {
	client             *dynamodb.Client
	hotelId            string
	functionInstanceId string
}

func NewHotelLockDynDao(client *dynamodb.Client, hotelId string, functionInstanceId string) *HotelLockDynDao {
	return &HotelLockDynDao{client: client, hotelId: hotelId, functionInstanceId: functionInstanceId}
}

func (dao *HotelLockDynDao) Lock() error {
	return dao.setOwner(dao.functionInstanceId)
}

func (dao *HotelLockDynDao) Unlock() error {
	return dao.setOwner(nullInstanceId)
}

func (dao *HotelLockDynDao) setOwner(owner string) error {
	_, err := dao.client.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(ReservationTableName),
		Key:       key(dao.hotelId, lockSk),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":myFunctionInstanceId":   &types.AttributeValueMemberS{Value: dao.functionInstanceId},
			":nullFunctionInstanceId": &types.AttributeValueMemberS{Value: nullInstanceId},
			":newOwner":               &types.AttributeValueMemberS{Value: owner},
		},
		ConditionExpression: aws.String("attribute_not_exists(locked_instance_id) OR " +
			"locked_instance_id = :nullFunctionInstanceId OR locked_instance_id = :myFunctionInstanceId"),
		UpdateExpression: aws.String("SET locked_instance_id = :newOwner"),
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return model.ErrHotelLocked
	}
	return err
}
