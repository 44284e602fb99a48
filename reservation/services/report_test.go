package services

import (
	"errors"
	"testing"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancyReport(t *testing.T) {
	roomCatalog := catalog.NewDefaultRoomCatalog()
	registry := NewReservationRegistry(roomCatalog, nil)
	reportService := NewReportService(roomCatalog, registry)

	_, err := registry.Create("a@x.com", "Single Room", date(3, 29), date(4, 2))
	require.NoError(t, err)
	_, err = registry.Create("b@x.com", "Single Room", date(4, 1), date(4, 1))
	require.NoError(t, err)

	report, err := reportService.OccupancyReport(4)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Month)
	assert.Equal(t, model.DaysPerMonth, report.DaysInMonth)
	assert.Equal(t, []string{"Single Room", "Double Room", "Family Room", "VIP Suite"}, report.RoomTypes)

	singleRoom := report.ByRoomType["Single Room"]
	require.Len(t, singleRoom, 30)
	assert.Equal(t, model.DayOccupancy{Day: 1, BookedRooms: 2, OccupancyRate: 40}, singleRoom[0])
	assert.Equal(t, model.DayOccupancy{Day: 2, BookedRooms: 1, OccupancyRate: 20}, singleRoom[1])
	assert.Equal(t, model.DayOccupancy{Day: 3, BookedRooms: 0, OccupancyRate: 0}, singleRoom[2])
	assert.Equal(t, 0, report.ByRoomType["VIP Suite"][0].BookedRooms)
}

func TestOccupancyReportRejectsInvalidMonth(t *testing.T) {
	roomCatalog := catalog.NewDefaultRoomCatalog()
	reportService := NewReportService(roomCatalog, NewReservationRegistry(roomCatalog, nil))

	_, err := reportService.OccupancyReport(13)
	assert.True(t, errors.Is(err, model.ErrInvalidDate))
	_, err = reportService.GenerateReport(0)
	assert.True(t, errors.Is(err, model.ErrInvalidDate))
}

func TestManagerReport(t *testing.T) {
	roomCatalog := catalog.NewDefaultRoomCatalog()
	registry := NewReservationRegistry(roomCatalog, nil)
	reportService := NewReportService(roomCatalog, registry)

	// 1-29..2-2 is three nights at 100
	_, err := registry.Create("a@x.com", "Single Room", date(1, 29), date(2, 2))
	require.NoError(t, err)
	// same-day stays are not charged
	_, err = registry.Create("a@x.com", "VIP Suite", date(5, 5), date(5, 5))
	require.NoError(t, err)
	// two nights at 150
	_, err = registry.Create("b@x.com", "Double Room", date(6, 1), date(6, 3))
	require.NoError(t, err)
	cancelled, err := registry.Create("c@x.com", "Family Room", date(6, 1), date(6, 10))
	require.NoError(t, err)
	_, err = registry.Cancel(cancelled.Id)
	require.NoError(t, err)

	report, err := reportService.GenerateReport(6)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalReservations)
	assert.Equal(t, 2, report.TotalCustomers)
	assert.Equal(t, 600.0, report.TotalRevenue)
	assert.Equal(t, 600.0, reportService.TotalRevenue())
	require.Len(t, report.ReservationSummary, 3)
	assert.Equal(t, model.ReservationId("R0001"), report.ReservationSummary[0].Id)
	assert.Equal(t, 1, report.Occupancy.ByRoomType["Double Room"][1].BookedRooms)
	assert.Equal(t, 0, report.Occupancy.ByRoomType["Family Room"][1].BookedRooms)
}
