package ledger

import (
	"fmt"
	"slices"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"golang.org/x/exp/maps"
)

// OccupancyLedger is a sparse index of booked units per room type and date.
// Only dates with at least one booking have an entry. It performs no capacity
// checks and no locking: its owner serializes access and gates increments.
type OccupancyLedger struct {
	entries map[string]map[model.CalendarDate]int
}

type Entry struct {
	Date        model.CalendarDate
	BookedCount int
}

func NewOccupancyLedger() *OccupancyLedger {
	return &OccupancyLedger{entries: make(map[string]map[model.CalendarDate]int)}
}

func (l *OccupancyLedger) BookedCount(date model.CalendarDate, roomType string) int {
	return l.entries[roomType][date]
}

func (l *OccupancyLedger) IncrementRange(dateRange model.DateRange, roomType string) {
	byDate, ok := l.entries[roomType]
	if !ok {
		byDate = make(map[model.CalendarDate]int)
		l.entries[roomType] = byDate
	}

	dateRange.ForEach(func(date model.CalendarDate) bool {
		byDate[date]++
		return false
	})
}

// DecrementRange is all or nothing: if any date of the range has no booking
// left to release, nothing is changed and ErrLedgerCorruption is returned.
func (l *OccupancyLedger) DecrementRange(dateRange model.DateRange, roomType string) error {
	byDate := l.entries[roomType]

	var corruptedDate *model.CalendarDate
	dateRange.ForEach(func(date model.CalendarDate) bool {
		if byDate[date] <= 0 {
			corruptedDate = &date
			return true
		}
		return false
	})
	if corruptedDate != nil {
		return fmt.Errorf("%w: releasing %v on %v would make the booked count negative",
			model.ErrLedgerCorruption, roomType, *corruptedDate)
	}

	dateRange.ForEach(func(date model.CalendarDate) bool {
		byDate[date]--
		if byDate[date] == 0 {
			delete(byDate, date)
		}
		return false
	})
	if len(byDate) == 0 {
		delete(l.entries, roomType)
	}

	return nil
}

// Entries lists the booked dates of a room type in chronological order.
func (l *OccupancyLedger) Entries(roomType string) []Entry {
	byDate := l.entries[roomType]
	dates := maps.Keys(byDate)
	slices.SortFunc(dates, func(a, b model.CalendarDate) int {
		return a.Compare(b)
	})

	entries := make([]Entry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, Entry{Date: date, BookedCount: byDate[date]})
	}
	return entries
}

func (l *OccupancyLedger) RoomTypes() []string {
	roomTypes := maps.Keys(l.entries)
	slices.Sort(roomTypes)
	return roomTypes
}

func (l *OccupancyLedger) Len() int {
	size := 0
	for _, byDate := range l.entries {
		size += len(byDate)
	}
	return size
}
