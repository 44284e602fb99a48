package main

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/Oscar-GGV/ATOMreservations/benchmark"
	request_sender "github.com/Oscar-GGV/ATOMreservations/benchmark/request-sender"
	"github.com/Oscar-GGV/ATOMreservations/config"
	"github.com/Oscar-GGV/ATOMreservations/dynamoutils"
	"github.com/Oscar-GGV/ATOMreservations/lambdautils"
	"github.com/Oscar-GGV/ATOMreservations/reservation/bootstrap"
	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/db"
	"github.com/Oscar-GGV/ATOMreservations/utils"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func main() {
	args := os.Args
	isLocalDeployment := !slices.Contains(args, "aws")

	cfg, err := loadConfig(isLocalDeployment)
	if err != nil {
		log.Fatalf("Cannot load the configuration: %v", err)
	}

	var client *dynamodb.Client
	if !isLocalDeployment {
		client = dynamoutils.CreateAwsClient(cfg.Region)
	} else {
		client = dynamoutils.CreateLocalClient(cfg.DynamoUrl)
		logErr := utils.SetLogger("LoaderLog")
		if logErr != nil {
			log.Fatalf("Could not correctly setup the logger: %v", logErr)
		}
	}

	possibleCommands := []string{"setup", "cleanup", "seed-catalog", "import-csv", "send"}
	if slices.Contains(args, "setup") {
		err = setup(client)
	} else if slices.Contains(args, "cleanup") {
		_, err = dynamoutils.DeleteTable(client, db.ReservationTableName)
	} else if slices.Contains(args, "seed-catalog") {
		err = seedCatalog(client, cfg)
	} else if slices.Contains(args, "import-csv") {
		err = importCsv(client, cfg)
	} else if slices.Contains(args, "send") {
		err = sendReservationRequests(cfg, isLocalDeployment)
	} else {
		log.Fatalf("No command inserted. Please use one of the following: %v", possibleCommands)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig(isLocalDeployment bool) (config.Config, error) {
	cfg, err := config.Load(path.Join(getParamsPath(), "properties"))
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return config.Config{}, err
	}

	cfg.Storage = config.DynamoStorage
	if isLocalDeployment {
		cfg.Storage = config.DynamoLocalStorage
	}
	return cfg, nil
}

func setup(client *dynamodb.Client) error {
	existingTableNames, err := dynamoutils.GetExistingTableNames(client)
	if err != nil {
		return err
	}
	if slices.Contains(existingTableNames, db.ReservationTableName) {
		log.Printf("Table %v already exists\n", db.ReservationTableName)
		return nil
	}

	_, err = dynamoutils.CreateReservationTable(client)
	return err
}

func seedCatalog(client *dynamodb.Client, cfg config.Config) error {
	roomCatalog := catalog.NewDefaultRoomCatalog()
	if cfg.CatalogFile != "" {
		var err error
		roomCatalog, err = catalog.LoadFromFile(cfg.CatalogFile)
		if err != nil {
			return err
		}
	}

	return dynamoutils.AddHotelBatch(client, cfg.HotelId, roomCatalog.ListTypes(0))
}

// importCsv copies an existing reservations.csv log into the hotel partition.
func importCsv(client *dynamodb.Client, cfg config.Config) error {
	reservations, err := db.NewCsvReservationDao(cfg.CsvFile).LoadReservations()
	if err != nil {
		return err
	}
	log.Printf("Importing %v reservations from %v\n", len(reservations), cfg.CsvFile)

	return dynamoutils.AddReservationsBatch(client, cfg.HotelId, reservations)
}

func sendReservationRequests(cfg config.Config, isLocalDeployment bool) error {
	b, err := os.ReadFile(path.Join(getParamsPath(), "reservation-requests-params.json"))
	if err != nil {
		return err
	}
	var runParams RunSpecificParams
	if err = json.Unmarshal(b, &runParams); err != nil {
		return err
	}

	basePath := getTimeLoggerPath()
	if isLocalDeployment {
		basePath = utils.LogDir()
	}
	timeLogger := benchmark.NewRequestTimeLoggerImpl(basePath, runParams.RunId, runParams.ConcurrentLogsCount)
	timeLogger.Start()
	defer timeLogger.Stop()

	var sender request_sender.RequestSender
	if isLocalDeployment {
		service, err := bootstrap.Build(cfg)
		if err != nil {
			return err
		}
		defer service.Close()
		sender = request_sender.NewDispatcherSender(service.Dispatcher)
	} else {
		sender = request_sender.NewLambdaReservationSender(lambdautils.CreateNewClient(cfg.Region))
	}

	requests := request_sender.BuildReservationRequests(runParams.Requests)
	samples := request_sender.SendAndMeasureReservationRequests(runParams.Requests, requests, sender, timeLogger)

	if isLocalDeployment {
		return benchmark.ExportResults(samples,
			benchmark.NewCsvExporter(runParams.RunId+"-samples"),
			benchmark.NewCsvExporter(runParams.RunId+"-summary"))
	}
	return benchmark.ExportResults(samples, benchmark.NewLogExporter("samples"), benchmark.NewLogExporter("summary"))
}

func getTimeLoggerPath() string {
	return path.Join(getExecPath(), "time-logs")
}

func getParamsPath() string {
	return path.Join(getExecPath(), "params")
}

func getExecPath() string {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	return exPath
}

type RunSpecificParams struct {
	RunId               string
	ConcurrentLogsCount int
	Requests            request_sender.ReservationRequestsParameters
}
