package lambdautils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

const (
	ReservationServiceFunction = "ReservationService"
	SetupFunction              = "Setup"
	CleanupFunction            = "Cleanup"
)

func CreateNewClient(region string) *lambda.Client {
	if region == "" {
		region = "eu-west-3"
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithClientLogMode(aws.LogRetries),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return lambda.NewFromConfig(cfg)
}

func InvokeReservationServiceSync(client *lambda.Client, request model.ReservationRequest) (model.ReservationResponse, error) {
	requestJson, err := json.Marshal(request)
	if err != nil {
		return model.ReservationResponse{}, err
	}

	output, err := client.Invoke(context.TODO(), &lambda.InvokeInput{
		FunctionName: aws.String(ReservationServiceFunction),
		Payload:      requestJson,
	})
	if err != nil {
		return model.ReservationResponse{}, err
	}
	if output.FunctionError != nil {
		return model.ReservationResponse{}, fmt.Errorf("function %v failed (%v): %s",
			ReservationServiceFunction, *output.FunctionError, output.Payload)
	}

	return DecodeReservationResponse(output.Payload)
}

// InvokeAsync fires an administrative function such as Setup or Cleanup without waiting for it.
func InvokeAsync(client *lambda.Client, functionName string, payload any) error {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = client.Invoke(context.TODO(), &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: "Event",
		Payload:        payloadJson,
	})

	return err
}

func DecodeReservationResponse(payload []byte) (model.ReservationResponse, error) {
	var response model.ReservationResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return model.ReservationResponse{}, fmt.Errorf("malformed reservation response: %w", err)
	}
	return response, nil
}
