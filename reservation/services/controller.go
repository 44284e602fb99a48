package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
)

// ReservationController is the public entry point of the engine. statsDao and
// publisher are optional collaborators: their failures are logged and never
// undo a committed reservation.
type ReservationController struct {
	catalog   *catalog.RoomCatalog
	registry  *ReservationRegistry
	statsDao  model.StatsDao
	publisher model.EventPublisher
}

func NewReservationController(roomCatalog *catalog.RoomCatalog, registry *ReservationRegistry, statsDao model.StatsDao, publisher model.EventPublisher) *ReservationController {
	return &ReservationController{
		catalog:   roomCatalog,
		registry:  registry,
		statsDao:  statsDao,
		publisher: publisher,
	}
}

func (rc *ReservationController) Registry() *ReservationRegistry {
	return rc.registry
}

func (rc *ReservationController) Catalog() *catalog.RoomCatalog {
	return rc.catalog
}

// ListAvailableRoomTypes keeps the room types that host guestCount guests and
// have a free unit on every date of the stay.
func (rc *ReservationController) ListAvailableRoomTypes(checkIn model.CalendarDate, checkOut model.CalendarDate, guestCount int) ([]model.RoomType, error) {
	if guestCount < 0 {
		return nil, fmt.Errorf("%w: negative guest count %v", model.ErrInvalidReservation, guestCount)
	}
	dateRange, err := model.NewDateRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	availableTypes := []model.RoomType{}
	for _, roomType := range rc.catalog.ListTypes(guestCount) {
		available, err := rc.registry.IsAvailable(roomType.Name, dateRange)
		if err != nil {
			return nil, err
		}
		if available {
			availableTypes = append(availableTypes, roomType)
		}
	}
	return availableTypes, nil
}

func (rc *ReservationController) IsRoomTypeAvailable(roomType string, checkIn model.CalendarDate, checkOut model.CalendarDate) (bool, error) {
	dateRange, err := model.NewDateRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return rc.registry.IsAvailable(roomType, dateRange)
}

func (rc *ReservationController) MakeReservation(customerRef model.CustomerRef, roomType string, checkIn model.CalendarDate, checkOut model.CalendarDate) (model.ReservationId, error) {
	if strings.TrimSpace(string(customerRef)) == "" {
		return "", fmt.Errorf("%w: missing customer reference", model.ErrInvalidCustomer)
	}

	reservation, err := rc.registry.Create(customerRef, roomType, checkIn, checkOut)
	if err != nil {
		if errors.Is(err, model.ErrNoAvailability) && rc.statsDao != nil {
			if incrementErr := rc.statsDao.IncrementFailedReservations(); incrementErr != nil {
				log.Printf("Failed to increment failed reservation count: %v\n", incrementErr)
			}
		}
		return "", err
	}

	if rc.statsDao != nil {
		if incrementErr := rc.statsDao.IncrementReservations(); incrementErr != nil {
			log.Printf("Failed to increment reservation count: %v\n", incrementErr)
		}
	}
	rc.publish(model.ReservationCreated{Reservation: reservation})

	return reservation.Id, nil
}

func (rc *ReservationController) CancelReservation(id model.ReservationId) error {
	cancelled, err := rc.registry.Cancel(id)
	if err != nil {
		return err
	}

	if rc.statsDao != nil {
		if incrementErr := rc.statsDao.IncrementCancellations(); incrementErr != nil {
			log.Printf("Failed to increment cancellation count: %v\n", incrementErr)
		}
	}
	rc.publish(model.ReservationCancelled{Reservation: cancelled})

	return nil
}

func (rc *ReservationController) GetReservation(id model.ReservationId) (model.Reservation, error) {
	return rc.registry.Get(id)
}

func (rc *ReservationController) ListReservations() []model.Reservation {
	return rc.registry.List()
}

func (rc *ReservationController) publish(event any) {
	if rc.publisher == nil {
		return
	}
	if err := rc.publisher.Publish(event); err != nil {
		log.Printf("Failed to publish %T: %v\n", event, err)
	}
}
