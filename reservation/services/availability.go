package services

import (
	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
)

type OccupancyReader interface {
	BookedCount(date model.CalendarDate, roomType string) int
}

type AvailabilityChecker struct {
	catalog *catalog.RoomCatalog
	ledger  OccupancyReader
}

func NewAvailabilityChecker(roomCatalog *catalog.RoomCatalog, ledger OccupancyReader) *AvailabilityChecker {
	return &AvailabilityChecker{catalog: roomCatalog, ledger: ledger}
}

// IsAvailable reports whether every date of the range has at least one free
// unit. It stops at the first fully booked date.
func (ac *AvailabilityChecker) IsAvailable(roomType string, dateRange model.DateRange) (bool, error) {
	totalUnits, err := ac.catalog.TotalUnitsOf(roomType)
	if err != nil {
		return false, err
	}

	available := true
	dateRange.ForEach(func(date model.CalendarDate) bool {
		if ac.ledger.BookedCount(date, roomType) >= totalUnits {
			available = false
			return true
		}
		return false
	})

	return available, nil
}
