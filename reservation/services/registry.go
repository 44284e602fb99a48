package services

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/ledger"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
)

// ReservationRegistry owns the reservations, the id counter and the occupancy
// ledger. A single lock covers all three so that the availability check and
// the ledger update of a create (or the lookup and release of a cancel) are
// never interleaved with another mutation.
type ReservationRegistry struct {
	mu             sync.RWMutex
	catalog        *catalog.RoomCatalog
	ledger         *ledger.OccupancyLedger
	checker        *AvailabilityChecker
	reservations   map[model.ReservationId]model.Reservation
	lastSequence   uint64
	reservationDao model.ReservationDao
}

// NewReservationRegistry builds an empty registry. reservationDao may be nil
// when reservations are kept in memory only.
func NewReservationRegistry(roomCatalog *catalog.RoomCatalog, reservationDao model.ReservationDao) *ReservationRegistry {
	occupancyLedger := ledger.NewOccupancyLedger()
	return &ReservationRegistry{
		catalog:        roomCatalog,
		ledger:         occupancyLedger,
		checker:        NewAvailabilityChecker(roomCatalog, occupancyLedger),
		reservations:   make(map[model.ReservationId]model.Reservation),
		reservationDao: reservationDao,
	}
}

func (rr *ReservationRegistry) Create(customerRef model.CustomerRef, roomType string, checkIn model.CalendarDate, checkOut model.CalendarDate) (model.Reservation, error) {
	dateRange, err := model.NewDateRange(checkIn, checkOut)
	if err != nil {
		return model.Reservation{}, err
	}

	rr.mu.Lock()
	defer rr.mu.Unlock()

	available, err := rr.checker.IsAvailable(roomType, dateRange)
	if err != nil {
		return model.Reservation{}, err
	}
	if !available {
		return model.Reservation{}, fmt.Errorf("%w: no %v left for %v", model.ErrNoAvailability, roomType, dateRange)
	}

	rr.lastSequence++
	reservation := model.Reservation{
		Id:          model.NewReservationId(rr.lastSequence),
		CustomerRef: customerRef,
		RoomType:    roomType,
		CheckIn:     dateRange.CheckIn,
		CheckOut:    dateRange.CheckOut,
		Status:      model.ACTIVE,
	}

	rr.ledger.IncrementRange(dateRange, roomType)
	rr.reservations[reservation.Id] = reservation

	if rr.reservationDao != nil {
		if saveErr := rr.reservationDao.SaveReservation(reservation); saveErr != nil {
			delete(rr.reservations, reservation.Id)
			if rollbackErr := rr.ledger.DecrementRange(dateRange, roomType); rollbackErr != nil {
				log.Printf("LEDGER CORRUPTION while rolling back %v: %v\n", reservation.Id, rollbackErr)
			}
			return model.Reservation{}, fmt.Errorf("could not persist reservation %v: %w", reservation.Id, saveErr)
		}
	}

	return reservation, nil
}

// Cancel releases exactly the range stored with the reservation.
func (rr *ReservationRegistry) Cancel(id model.ReservationId) (model.Reservation, error) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	reservation, ok := rr.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %v", model.ErrReservationNotFound, id)
	}

	err := rr.ledger.DecrementRange(reservation.DateRange(), reservation.RoomType)
	if err != nil {
		log.Printf("LEDGER CORRUPTION while cancelling %v: %v\n", id, err)
		return model.Reservation{}, err
	}
	delete(rr.reservations, id)

	cancelled := reservation
	cancelled.Status = model.CANCELLED

	if rr.reservationDao != nil {
		if saveErr := rr.reservationDao.MarkCancelled(cancelled); saveErr != nil {
			rr.ledger.IncrementRange(reservation.DateRange(), reservation.RoomType)
			rr.reservations[id] = reservation
			return model.Reservation{}, fmt.Errorf("could not persist cancellation of %v: %w", id, saveErr)
		}
	}

	return cancelled, nil
}

func (rr *ReservationRegistry) Get(id model.ReservationId) (model.Reservation, error) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	reservation, ok := rr.reservations[id]
	if !ok {
		return model.Reservation{}, fmt.Errorf("%w: %v", model.ErrReservationNotFound, id)
	}
	return reservation, nil
}

// List returns the active reservations ordered by id sequence.
func (rr *ReservationRegistry) List() []model.Reservation {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	reservations := make([]model.Reservation, 0, len(rr.reservations))
	for _, reservation := range rr.reservations {
		reservations = append(reservations, reservation)
	}
	slices.SortFunc(reservations, compareReservationIds)
	return reservations
}

func (rr *ReservationRegistry) IsAvailable(roomType string, dateRange model.DateRange) (bool, error) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.checker.IsAvailable(roomType, dateRange)
}

func (rr *ReservationRegistry) BookedCount(date model.CalendarDate, roomType string) int {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.ledger.BookedCount(date, roomType)
}

func (rr *ReservationRegistry) Entries(roomType string) []ledger.Entry {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.ledger.Entries(roomType)
}

func (rr *ReservationRegistry) LastIssuedId() model.ReservationId {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	if rr.lastSequence == 0 {
		return ""
	}
	return model.NewReservationId(rr.lastSequence)
}

// Reload replaces the registry state with what the reservation dao holds.
func (rr *ReservationRegistry) Reload() error {
	if rr.reservationDao == nil {
		return nil
	}
	reservations, err := rr.reservationDao.LoadReservations()
	if err != nil {
		return err
	}
	return rr.Restore(reservations)
}

// Restore rebuilds ledger, reservations and counter from stored records,
// cancelled ones included so that their ids are never issued again. The
// registry is left untouched if the records are inconsistent.
func (rr *ReservationRegistry) Restore(stored []model.Reservation) error {
	restoredLedger := ledger.NewOccupancyLedger()
	restoredReservations := make(map[model.ReservationId]model.Reservation)
	var lastSequence uint64

	for _, reservation := range stored {
		sequence, err := reservation.Id.Sequence()
		if err != nil {
			return err
		}
		lastSequence = max(lastSequence, sequence)

		if reservation.Status == model.CANCELLED {
			continue
		}
		if _, duplicated := restoredReservations[reservation.Id]; duplicated {
			return fmt.Errorf("%w: %v stored twice", model.ErrInvalidReservation, reservation.Id)
		}
		dateRange, err := model.NewDateRange(reservation.CheckIn, reservation.CheckOut)
		if err != nil {
			return fmt.Errorf("reservation %v: %w", reservation.Id, err)
		}
		if _, err = rr.catalog.Get(reservation.RoomType); err != nil {
			return fmt.Errorf("reservation %v: %w", reservation.Id, err)
		}

		reservation.Status = model.ACTIVE
		restoredLedger.IncrementRange(dateRange, reservation.RoomType)
		restoredReservations[reservation.Id] = reservation
	}

	for _, roomType := range restoredLedger.RoomTypes() {
		totalUnits, err := rr.catalog.TotalUnitsOf(roomType)
		if err != nil {
			return err
		}
		for _, entry := range restoredLedger.Entries(roomType) {
			if entry.BookedCount > totalUnits {
				err = fmt.Errorf("%w: %v booked %v times on %v with only %v units",
					model.ErrLedgerCorruption, roomType, entry.BookedCount, entry.Date, totalUnits)
				log.Printf("LEDGER CORRUPTION while restoring reservations: %v\n", err)
				return err
			}
		}
	}

	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.ledger = restoredLedger
	rr.checker = NewAvailabilityChecker(rr.catalog, restoredLedger)
	rr.reservations = restoredReservations
	rr.lastSequence = max(rr.lastSequence, lastSequence)

	return nil
}

func compareReservationIds(a, b model.Reservation) int {
	aSequence, aErr := a.Id.Sequence()
	bSequence, bErr := b.Id.Sequence()
	if errors.Join(aErr, bErr) != nil || aSequence == bSequence {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	}
	if aSequence < bSequence {
		return -1
	}
	return 1
}
