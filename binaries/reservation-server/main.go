package main

import (
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Oscar-GGV/ATOMreservations/config"
	"github.com/Oscar-GGV/ATOMreservations/reservation/api"
	"github.com/Oscar-GGV/ATOMreservations/reservation/bootstrap"
)

func main() {
	configPath := flag.String("config", "properties", "configuration file path without the .json extension")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("No configuration file found, using defaults and environment\n")
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

	server := api.NewServer(cfg.Address(), service.Dispatcher)
	go func() {
		err := server.Start()
		if errors.Is(err, http.ErrServerClosed) {
			log.Println("The server has been shut down")
		} else if err != nil {
			log.Printf("server error: %v\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if err = server.Stop(); err != nil {
		log.Printf("Could not stop the server gracefully: %v\n", err)
	}
}
