package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Oscar-GGV/ATOMreservations/reservation/messaging"
	"github.com/getsops/sops/v3/decrypt"
)

type Storage string

const (
	MemoryStorage        Storage = "memory"
	CsvStorage           Storage = "csv"
	DynamoStorage        Storage = "dynamodb"
	DynamoLocalStorage   Storage = "dynamodb-local"
	MongoStorage         Storage = "mongodb"
	DefaultHotelId               = "Hotel/0"
	DefaultMongoDatabase         = "reservations"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Host          string                  `json:"host,omitempty"`
	Port          int                     `json:"port"`
	HotelId       string                  `json:"hotelId,omitempty"`
	Storage       Storage                 `json:"storage,omitempty"`
	CatalogFile   string                  `json:"catalogFile,omitempty"`
	CsvFile       string                  `json:"csvFile,omitempty"`
	MongoUri      string                  `json:"mongoUri,omitempty"`
	MongoDatabase string                  `json:"mongoDatabase,omitempty"`
	Region        string                  `json:"region,omitempty"`
	DynamoUrl     string                  `json:"dynamoUrl,omitempty"`
	PublishEvents bool                    `json:"publishEvents,omitempty"`
	Amqp          messaging.Configuration `json:"amqp"`
}

func Default() Config {
	return Config{
		Port:          8080,
		HotelId:       DefaultHotelId,
		Storage:       MemoryStorage,
		CsvFile:       "reservations.csv",
		MongoDatabase: DefaultMongoDatabase,
	}
}

// Load reads <basePath>.json, or <basePath>.enc.json decrypted with SOPS when
// the plain file is missing, on top of the defaults. Environment variables
// win over both.
func Load(basePath string) (Config, error) {
	data, err := readData(basePath)
	if err != nil {
		return Config{}, err
	}

	config := Default()
	if err = json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: cannot parse %v: %v", ErrInvalidConfig, basePath, err)
	}

	config = config.WithEnv(os.Getenv)
	return config, config.Validate()
}

// FromEnv builds a configuration out of the defaults and the environment only.
func FromEnv() (Config, error) {
	config := Default().WithEnv(os.Getenv)
	return config, config.Validate()
}

func readData(basePath string) ([]byte, error) {
	plainPath := basePath + ".json"
	data, err := os.ReadFile(plainPath)
	if err == nil {
		log.Printf("Loading configuration from %v\n", plainPath)
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	encryptedPath := basePath + ".enc.json"
	data, err = os.ReadFile(encryptedPath)
	if err != nil {
		return nil, fmt.Errorf("no configuration found at %v or %v: %w", plainPath, encryptedPath, err)
	}
	log.Printf("Loading encrypted configuration from %v\n", encryptedPath)

	decrypted, err := decrypt.Data(data, "json")
	if err != nil {
		return nil, fmt.Errorf("cannot decrypt %v: %w", encryptedPath, err)
	}
	return decrypted, nil
}

func (c Config) WithEnv(getenv func(string) string) Config {
	override := func(target *string, name string) {
		if value := getenv(name); value != "" {
			*target = value
		}
	}

	override(&c.Host, "RESERVATION_HOST")
	override(&c.HotelId, "RESERVATION_HOTEL_ID")
	override(&c.CatalogFile, "RESERVATION_CATALOG_FILE")
	override(&c.CsvFile, "RESERVATION_CSV_FILE")
	override(&c.MongoUri, "MONGO_URI")
	override(&c.Amqp.Url, "AMQP_URL")
	override(&c.DynamoUrl, "DDB_URL")
	override(&c.Region, "AWS_REGION")

	if storage := getenv("RESERVATION_STORAGE"); storage != "" {
		c.Storage = Storage(strings.ToLower(storage))
	}
	if port := getenv("RESERVATION_PORT"); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			log.Printf("Ignoring malformed RESERVATION_PORT %v: %v\n", port, err)
		} else {
			c.Port = parsed
		}
	}
	if publish := getenv("RESERVATION_PUBLISH_EVENTS"); publish != "" {
		c.PublishEvents = publish == "true" || publish == "1"
	}
	return c
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %v out of range", ErrInvalidConfig, c.Port)
	}
	if c.HotelId == "" {
		return fmt.Errorf("%w: missing hotel id", ErrInvalidConfig)
	}

	switch c.Storage {
	case MemoryStorage, DynamoStorage, DynamoLocalStorage:
	case CsvStorage:
		if c.CsvFile == "" {
			return fmt.Errorf("%w: csv storage needs csvFile", ErrInvalidConfig)
		}
	case MongoStorage:
		if c.MongoUri == "" {
			return fmt.Errorf("%w: mongodb storage needs mongoUri", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}
	return nil
}

func (c Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
