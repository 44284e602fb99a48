package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Oscar-GGV/ATOMreservations/config"
	"github.com/Oscar-GGV/ATOMreservations/reservation/bootstrap"
	"github.com/Oscar-GGV/ATOMreservations/reservation/messaging"
)

func main() {
	configPath := flag.String("config", "properties", "configuration file path without the .json extension")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	service, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("Could not start the reservation service: %v", err)
	}
	defer service.Close()

	worker, err := messaging.NewCommandWorker(cfg.Amqp, service.Dispatcher)
	if err != nil {
		log.Fatalf("Could not start the command worker: %v", err)
	}
	defer worker.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = worker.Run(ctx); err != nil {
		log.Printf("Command worker stopped: %v\n", err)
	}
}
