package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"slices"

	"github.com/Oscar-GGV/ATOMreservations/dynamoutils"
	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/db"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var client *dynamodb.Client

func init() {
	client = dynamoutils.CreateAwsClient(os.Getenv("AWS_REGION"))
}

type SetupParameters struct {
	HotelIds  []string
	RoomTypes []model.RoomType
}

func handler(_ context.Context, evt json.RawMessage) error {
	parameters := SetupParameters{}
	if len(evt) > 0 {
		if err := json.Unmarshal(evt, &parameters); err != nil {
			return err
		}
	}
	if len(parameters.RoomTypes) == 0 {
		parameters.RoomTypes = catalog.DefaultRoomTypes()
	}
	if _, err := catalog.NewRoomCatalog(parameters.RoomTypes); err != nil {
		return err
	}

	existingTableNames, err := dynamoutils.GetExistingTableNames(client)
	if err != nil {
		return err
	}

	if !slices.Contains(existingTableNames, db.ReservationTableName) {
		_, err = dynamoutils.CreateReservationTable(client)
		if err != nil {
			return err
		}
	}

	for _, hotelId := range parameters.HotelIds {
		if err = dynamoutils.AddHotelBatch(client, hotelId, parameters.RoomTypes); err != nil {
			return err
		}
		log.Printf("Hotel %v seeded with %v room types\n", hotelId, len(parameters.RoomTypes))
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
