package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockDao struct {
	locked      bool
	lockCalls   int
	unlockCalls int
	lockErr     error
}

func (f *fakeLockDao) Lock() error {
	f.lockCalls++
	if f.lockErr != nil {
		return f.lockErr
	}
	if f.locked {
		return model.ErrHotelLocked
	}
	f.locked = true
	return nil
}

func (f *fakeLockDao) Unlock() error {
	f.unlockCalls++
	f.locked = false
	return nil
}

// instanceLockDao accepts its own instance again, like the DynamoDB lease.
type instanceLockDao struct {
	lockCalls atomic.Int32
	unlockErr error
}

func (f *instanceLockDao) Lock() error {
	f.lockCalls.Add(1)
	return nil
}

func (f *instanceLockDao) Unlock() error {
	return f.unlockErr
}

// slowLoadDao keeps its snapshot for a while before returning it.
type slowLoadDao struct {
	*memoryReservationDao
}

func (d slowLoadDao) LoadReservations() ([]model.Reservation, error) {
	reservations, err := d.memoryReservationDao.LoadReservations()
	time.Sleep(5 * time.Millisecond)
	return reservations, err
}

func TestSessionReloadsUnderLock(t *testing.T) {
	dao := newMemoryReservationDao()
	roomCatalog := catalog.NewDefaultRoomCatalog()

	other := NewReservationRegistry(roomCatalog, dao)
	_, err := other.Create("a@x.com", "Single Room", date(2, 1), date(2, 2))
	require.NoError(t, err)

	lockDao := &fakeLockDao{}
	registry := NewReservationRegistry(roomCatalog, dao)
	session := NewHotelSession(lockDao, registry).WithRetrierFactory(utils.NewNopRetrierFactory[struct{}]())

	var id model.ReservationId
	err = session.Run(func() error {
		assert.True(t, lockDao.locked)
		reservation, createErr := registry.Create("b@x.com", "Single Room", date(2, 1), date(2, 2))
		id = reservation.Id
		return createErr
	})
	require.NoError(t, err)

	assert.Equal(t, model.ReservationId("R0002"), id)
	assert.False(t, lockDao.locked)
	assert.Equal(t, 1, lockDao.unlockCalls)
}

func TestSessionReturnsActionErrorAndUnlocks(t *testing.T) {
	lockDao := &fakeLockDao{}
	registry := NewReservationRegistry(catalog.NewDefaultRoomCatalog(), nil)
	session := NewHotelSession(lockDao, registry).WithRetrierFactory(utils.NewNopRetrierFactory[struct{}]())

	err := session.Run(func() error {
		return model.ErrNoAvailability
	})
	assert.True(t, errors.Is(err, model.ErrNoAvailability))
	assert.False(t, lockDao.locked)
}

func TestSessionFailsWhenHotelStaysLocked(t *testing.T) {
	lockDao := &fakeLockDao{locked: true}
	registry := NewReservationRegistry(catalog.NewDefaultRoomCatalog(), nil)
	session := NewHotelSession(lockDao, registry).WithRetrierFactory(utils.NewNopRetrierFactory[struct{}]())

	ran := false
	err := session.Run(func() error {
		ran = true
		return nil
	})
	assert.True(t, errors.Is(err, model.ErrHotelLocked))
	assert.False(t, ran)
	assert.Equal(t, 0, lockDao.unlockCalls)
}

func TestConcurrentRunsOfOneInstanceNeverOverbook(t *testing.T) {
	roomCatalog, err := catalog.NewRoomCatalog([]model.RoomType{
		{Name: "Solo", TotalUnits: 1, MaxGuests: 1, PricePerNight: 80, Beds: 1},
	})
	require.NoError(t, err)

	dao := newMemoryReservationDao()
	registry := NewReservationRegistry(roomCatalog, slowLoadDao{dao})
	lockDao := &instanceLockDao{}
	session := NewHotelSession(lockDao, registry).WithRetrierFactory(utils.NewNopRetrierFactory[struct{}]())

	const requests = 8
	var wg sync.WaitGroup
	var booked, refused atomic.Int32
	for i := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := session.Run(func() error {
				_, createErr := registry.Create(model.CustomerRef(fmt.Sprintf("guest%v@hotel.com", i)), "Solo", date(3, 10), date(3, 12))
				return createErr
			})
			if err == nil {
				booked.Add(1)
			} else if errors.Is(err, model.ErrNoAvailability) {
				refused.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), booked.Load())
	assert.Equal(t, int32(requests-1), refused.Load())
	assert.Equal(t, int32(requests), lockDao.lockCalls.Load())

	stored, err := dao.LoadReservations()
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, stored, registry.List())
}

func TestSessionKeepsCommittedActionWhenUnlockFails(t *testing.T) {
	dao := newMemoryReservationDao()
	registry := NewReservationRegistry(catalog.NewDefaultRoomCatalog(), dao)
	lockDao := &instanceLockDao{unlockErr: errors.New("throttled")}
	session := NewHotelSession(lockDao, registry).WithRetrierFactory(utils.NewNopRetrierFactory[struct{}]())

	err := session.Run(func() error {
		_, createErr := registry.Create("a@x.com", "Single Room", date(3, 10), date(3, 12))
		return createErr
	})
	require.NoError(t, err)
	assert.Len(t, registry.List(), 1)
}
