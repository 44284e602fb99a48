package db

import (
	"context"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type CatalogDynDao struct {
	client  *dynamodb.Client
	hotelId string
}

func NewCatalogDynDao(client *dynamodb.Client, hotelId string) *CatalogDynDao {
	return &CatalogDynDao{client: client, hotelId: hotelId}
}

func (dao *CatalogDynDao) LoadRoomTypes() ([]model.RoomType, error) {
	var roomTypes []model.RoomType
	var lastKey map[string]types.AttributeValue

	for {
		result, err := dao.client.Query(context.TODO(), &dynamodb.QueryInput{
			TableName:              aws.String(ReservationTableName),
			KeyConditionExpression: aws.String("PK = :hotelId AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":hotelId": &types.AttributeValueMemberS{Value: dao.hotelId},
				":prefix":  &types.AttributeValueMemberS{Value: roomTypeSkPrefix},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			roomType, err := roomTypeFromItem(item)
			if err != nil {
				return nil, err
			}
			roomTypes = append(roomTypes, roomType)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return roomTypes, nil
}
