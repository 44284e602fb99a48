package main

import (
	"os"
	"slices"

	"github.com/Oscar-GGV/ATOMreservations/dynamoutils"
	"github.com/Oscar-GGV/ATOMreservations/reservation/db"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

var client *dynamodb.Client

func init() {
	client = dynamoutils.CreateAwsClient(os.Getenv("AWS_REGION"))
}

func handler() error {
	existingTableNames, err := dynamoutils.GetExistingTableNames(client)
	if err != nil {
		return err
	}
	if !slices.Contains(existingTableNames, db.ReservationTableName) {
		return nil
	}

	_, err = dynamoutils.DeleteTable(client, db.ReservationTableName)
	return err
}

func main() {
	lambda.Start(handler)
}
