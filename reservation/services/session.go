package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/utils"
)

// HotelSession serializes the work of several stateless instances sharing the
// same persisted hotel: the hotel lock is held while the registry is reloaded
// and the action runs. The lock owner is the instance, so runs of one instance
// are also serialized in process.
type HotelSession struct {
	mu             sync.Mutex
	lockDao        model.HotelLockDao
	registry       *ReservationRegistry
	retrierFactory func() *utils.Retrier[struct{}]
}

func NewHotelSession(lockDao model.HotelLockDao, registry *ReservationRegistry) *HotelSession {
	return &HotelSession{
		lockDao:        lockDao,
		registry:       registry,
		retrierFactory: utils.NewExponentialRetrierFactory[struct{}](20, 50*time.Millisecond, 0.1, 2*time.Second),
	}
}

func (hs *HotelSession) WithRetrierFactory(retrierFactory func() *utils.Retrier[struct{}]) *HotelSession {
	hs.retrierFactory = retrierFactory
	return hs
}

// Run fails when the hotel cannot be locked and reloaded, or when the action
// fails. An unlock failure is only logged, after the action has committed.
func (hs *HotelSession) Run(action func() error) error {
	hs.mu.Lock()
	defer hs.mu.Unlock()

	if err := hs.retrierFactory().Do(hs.lockDao.Lock); err != nil {
		return fmt.Errorf("could not lock hotel: %w", err)
	}

	defer func() {
		if unlockErr := hs.retrierFactory().Do(hs.lockDao.Unlock); unlockErr != nil {
			log.Printf("Could not unlock hotel: %v\n", unlockErr)
		}
	}()

	if err := hs.registry.Reload(); err != nil {
		return err
	}

	return action()
}
