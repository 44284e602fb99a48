package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRollsOverAfterDayThirty(t *testing.T) {
	assert.Equal(t, CalendarDate{Month: 1, Day: 30}, CalendarDate{Month: 1, Day: 29}.Next())
	assert.Equal(t, CalendarDate{Month: 2, Day: 1}, CalendarDate{Month: 1, Day: 30}.Next())
}

func TestRangeAcrossMonthBoundaryTouchesFourDates(t *testing.T) {
	dateRange, err := NewDateRange(CalendarDate{Month: 1, Day: 29}, CalendarDate{Month: 2, Day: 2})
	require.NoError(t, err)

	expected := []CalendarDate{{1, 29}, {1, 30}, {2, 1}, {2, 2}}
	assert.Equal(t, expected, dateRange.Dates())
	assert.Equal(t, 3, dateRange.Nights())
}

func TestSingleDayRange(t *testing.T) {
	dateRange, err := NewDateRange(CalendarDate{Month: 5, Day: 5}, CalendarDate{Month: 5, Day: 5})
	require.NoError(t, err)

	assert.Equal(t, []CalendarDate{{5, 5}}, dateRange.Dates())
	assert.Equal(t, 0, dateRange.Nights())
}

func TestReversedRangeIsRejected(t *testing.T) {
	_, err := NewDateRange(CalendarDate{Month: 1, Day: 5}, CalendarDate{Month: 1, Day: 3})
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
}

func TestReversedRangeLiteralDoesNotIterate(t *testing.T) {
	visited := 0
	DateRange{CheckIn: CalendarDate{3, 10}, CheckOut: CalendarDate{2, 10}}.ForEach(func(CalendarDate) bool {
		visited++
		return false
	})
	assert.Equal(t, 0, visited)
}

func TestForEachStopsWhenVisitorAsks(t *testing.T) {
	visited := 0
	DateRange{CheckIn: CalendarDate{3, 1}, CheckOut: CalendarDate{3, 20}}.ForEach(func(CalendarDate) bool {
		visited++
		return visited == 3
	})
	assert.Equal(t, 3, visited)
}

func TestValidateRejectsOutOfRangeDates(t *testing.T) {
	for _, date := range []CalendarDate{{0, 1}, {13, 1}, {1, 0}, {1, 31}} {
		err := date.Validate()
		assert.Truef(t, errors.Is(err, ErrInvalidDate), "expected %v to be invalid", date)
	}
	assert.NoError(t, CalendarDate{12, 30}.Validate())
}

func TestParseCalendarDate(t *testing.T) {
	date, err := ParseCalendarDate("03-07")
	require.NoError(t, err)
	assert.Equal(t, CalendarDate{Month: 3, Day: 7}, date)
	assert.Equal(t, "03-07", date.String())

	_, err = ParseCalendarDate("02-31")
	assert.True(t, errors.Is(err, ErrInvalidDate))

	_, err = ParseCalendarDate("march")
	assert.True(t, errors.Is(err, ErrInvalidDate))
}

func TestCalendarDateJson(t *testing.T) {
	data, err := json.Marshal(CalendarDate{Month: 11, Day: 2})
	require.NoError(t, err)
	assert.Equal(t, `"11-02"`, string(data))

	var date CalendarDate
	require.NoError(t, json.Unmarshal([]byte(`"04-30"`), &date))
	assert.Equal(t, CalendarDate{Month: 4, Day: 30}, date)

	assert.Error(t, json.Unmarshal([]byte(`"04-31"`), &date))
}

func TestReservationIdFormat(t *testing.T) {
	assert.Equal(t, ReservationId("R0001"), NewReservationId(1))
	assert.Equal(t, ReservationId("R0042"), NewReservationId(42))
	assert.Equal(t, ReservationId("R12345"), NewReservationId(12345))

	sequence, err := ReservationId("R12345").Sequence()
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), sequence)

	_, err = ReservationId("X0001").Sequence()
	assert.True(t, errors.Is(err, ErrInvalidReservation))
}

func TestCodeOfWrappedErrors(t *testing.T) {
	_, err := NewDateRange(CalendarDate{1, 5}, CalendarDate{1, 3})
	assert.Equal(t, CodeInvalidDateRange, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}
