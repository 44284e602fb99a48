package services

import (
	"errors"
	"testing"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/ledger"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(month, day int) model.CalendarDate {
	return model.CalendarDate{Month: month, Day: day}
}

func mustRange(t *testing.T, checkIn, checkOut model.CalendarDate) model.DateRange {
	t.Helper()
	r, err := model.NewDateRange(checkIn, checkOut)
	require.NoError(t, err)
	return r
}

type countingReader struct {
	counts map[model.CalendarDate]int
	reads  int
}

func (c *countingReader) BookedCount(date model.CalendarDate, _ string) int {
	c.reads++
	return c.counts[date]
}

func TestAvailableOnEmptyLedger(t *testing.T) {
	checker := NewAvailabilityChecker(catalog.NewDefaultRoomCatalog(), ledger.NewOccupancyLedger())

	available, err := checker.IsAvailable("VIP Suite", mustRange(t, date(1, 1), date(12, 30)))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestUnavailableWhenOneDateIsFull(t *testing.T) {
	occupancyLedger := ledger.NewOccupancyLedger()
	for i := 0; i < 3; i++ {
		occupancyLedger.IncrementRange(mustRange(t, date(4, 15), date(4, 15)), "VIP Suite")
	}
	checker := NewAvailabilityChecker(catalog.NewDefaultRoomCatalog(), occupancyLedger)

	available, err := checker.IsAvailable("VIP Suite", mustRange(t, date(4, 10), date(4, 20)))
	require.NoError(t, err)
	assert.False(t, available)

	available, err = checker.IsAvailable("VIP Suite", mustRange(t, date(4, 16), date(4, 20)))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestAvailabilityStopsAtFirstFullDate(t *testing.T) {
	reader := &countingReader{counts: map[model.CalendarDate]int{date(2, 2): 5}}
	checker := NewAvailabilityChecker(catalog.NewDefaultRoomCatalog(), reader)

	available, err := checker.IsAvailable("Single Room", mustRange(t, date(2, 1), date(2, 10)))
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, 2, reader.reads)
}

func TestAvailabilityOfUnknownRoomType(t *testing.T) {
	checker := NewAvailabilityChecker(catalog.NewDefaultRoomCatalog(), ledger.NewOccupancyLedger())

	_, err := checker.IsAvailable("Penthouse", mustRange(t, date(2, 1), date(2, 2)))
	assert.True(t, errors.Is(err, model.ErrUnknownRoomType))
}

func TestZeroUnitRoomTypeIsNeverAvailable(t *testing.T) {
	roomCatalog, err := catalog.NewRoomCatalog([]model.RoomType{{Name: "Closed Wing", TotalUnits: 0}})
	require.NoError(t, err)
	checker := NewAvailabilityChecker(roomCatalog, ledger.NewOccupancyLedger())

	available, err := checker.IsAvailable("Closed Wing", mustRange(t, date(6, 1), date(6, 1)))
	require.NoError(t, err)
	assert.False(t, available)
}
