package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/Oscar-GGV/ATOMreservations/config"
	"github.com/Oscar-GGV/ATOMreservations/dynamoutils"
	"github.com/Oscar-GGV/ATOMreservations/reservation/api"
	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/db"
	"github.com/Oscar-GGV/ATOMreservations/reservation/messaging"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/reservation/services"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

// Service is a fully wired reservation engine for one hotel.
type Service struct {
	Config     config.Config
	Catalog    *catalog.RoomCatalog
	Registry   *services.ReservationRegistry
	Controller *services.ReservationController
	Reports    *services.ReportService
	Dispatcher *api.Dispatcher

	closers []func() error
}

type collaborators struct {
	catalogDao     model.CatalogDao
	reservationDao model.ReservationDao
	statsDao       model.StatsDao
	lockDao        model.HotelLockDao
}

func Build(cfg config.Config) (*Service, error) {
	service := &Service{Config: cfg}

	deps, err := service.buildCollaborators(cfg)
	if err != nil {
		return nil, errors.Join(err, service.Close())
	}

	roomCatalog, err := loadCatalog(cfg, deps.catalogDao)
	if err != nil {
		return nil, errors.Join(err, service.Close())
	}

	var publisher model.EventPublisher
	if cfg.PublishEvents {
		eventPublisher, err := messaging.NewEventPublisher(cfg.Amqp)
		if err != nil {
			return nil, errors.Join(err, service.Close())
		}
		service.closers = append(service.closers, eventPublisher.Close)
		publisher = eventPublisher
	}

	registry := services.NewReservationRegistry(roomCatalog, deps.reservationDao)
	if err = registry.Reload(); err != nil {
		return nil, errors.Join(fmt.Errorf("cannot restore reservations: %w", err), service.Close())
	}

	service.Catalog = roomCatalog
	service.Registry = registry
	service.Controller = services.NewReservationController(roomCatalog, registry, deps.statsDao, publisher)
	service.Reports = services.NewReportService(roomCatalog, registry)
	service.Dispatcher = api.NewDispatcher(service.Controller, service.Reports)
	if deps.lockDao != nil {
		service.Dispatcher.WithSession(services.NewHotelSession(deps.lockDao, registry))
	}

	log.Printf("Reservation service ready for %v: storage %v, %v room types, %v active reservations\n",
		cfg.HotelId, cfg.Storage, roomCatalog.Size(), len(registry.List()))
	return service, nil
}

func (s *Service) buildCollaborators(cfg config.Config) (collaborators, error) {
	var deps collaborators

	switch cfg.Storage {
	case config.MemoryStorage:
	case config.CsvStorage:
		deps.reservationDao = db.NewCsvReservationDao(cfg.CsvFile)
	case config.MongoStorage:
		mongoDao, err := db.NewReservationMongoDao(cfg.MongoUri, cfg.MongoDatabase, cfg.HotelId)
		if err != nil {
			return deps, err
		}
		s.closers = append(s.closers, mongoDao.Close)
		deps.reservationDao = mongoDao
	case config.DynamoStorage, config.DynamoLocalStorage:
		client := DynamoClient(cfg)
		deps.catalogDao = db.NewCatalogDynDao(client, cfg.HotelId)
		deps.reservationDao = db.NewReservationDynDao(client, cfg.HotelId)
		deps.statsDao = db.NewStatsDynDao(client, cfg.HotelId)
		deps.lockDao = db.NewHotelLockDynDao(client, cfg.HotelId, uuid.NewString())
	default:
		return deps, fmt.Errorf("%w: unknown storage %q", config.ErrInvalidConfig, cfg.Storage)
	}

	return deps, nil
}

func DynamoClient(cfg config.Config) *dynamodb.Client {
	if cfg.Storage == config.DynamoLocalStorage {
		return dynamoutils.CreateLocalClient(cfg.DynamoUrl)
	}
	if cfg.DynamoUrl != "" {
		return dynamoutils.CreateAwsPrivateClient(cfg.Region)
	}
	return dynamoutils.CreateAwsClient(cfg.Region)
}

// loadCatalog prefers an explicit catalog file, then the stored room types,
// then the default hotel.
func loadCatalog(cfg config.Config, catalogDao model.CatalogDao) (*catalog.RoomCatalog, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFromFile(cfg.CatalogFile)
	}
	if catalogDao != nil {
		return catalog.LoadFromDao(catalogDao)
	}
	return catalog.NewDefaultRoomCatalog(), nil
}

func (s *Service) Close() error {
	var err error
	for _, closer := range s.closers {
		err = errors.Join(err, closer())
	}
	s.closers = nil
	return err
}
