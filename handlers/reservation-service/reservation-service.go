package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Oscar-GGV/ATOMreservations/config"
	"github.com/Oscar-GGV/ATOMreservations/reservation/bootstrap"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
)

var service *bootstrap.Service

func init() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Storage == config.MemoryStorage {
		cfg.Storage = config.DynamoStorage
	}

	service, err = bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("Could not start the reservation service: %v", err)
	}
}

func handler(_ context.Context, evt json.RawMessage) (model.ReservationResponse, error) {
	request := model.ReservationRequest{}
	if err := json.Unmarshal(evt, &request); err != nil {
		return model.NewFailureResponse("", model.ErrInvalidReservation), nil
	}
	if request.RequestId == "" {
		request.RequestId = uuid.NewString()
	}

	return service.Dispatcher.Dispatch(request), nil
}

func main() {
	lambda.Start(handler)
}
