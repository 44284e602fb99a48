package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Every month has exactly DaysPerMonth days and there is no year component.
const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
)

type CalendarDate struct {
	Month int
	Day   int
}

func NewCalendarDate(month int, day int) (CalendarDate, error) {
	date := CalendarDate{Month: month, Day: day}
	return date, date.Validate()
}

func (d CalendarDate) Validate() error {
	if d.Month < 1 || d.Month > MonthsPerYear {
		return fmt.Errorf("%w: month %v is outside 1..%v", ErrInvalidDate, d.Month, MonthsPerYear)
	}
	if d.Day < 1 || d.Day > DaysPerMonth {
		return fmt.Errorf("%w: day %v is outside 1..%v", ErrInvalidDate, d.Day, DaysPerMonth)
	}
	return nil
}

// Next rolls the month forward past day 30.
func (d CalendarDate) Next() CalendarDate {
	next := CalendarDate{Month: d.Month, Day: d.Day + 1}
	if next.Day > DaysPerMonth {
		next.Day = 1
		next.Month++
	}
	return next
}

func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Month < other.Month:
		return -1
	case d.Month > other.Month:
		return 1
	case d.Day < other.Day:
		return -1
	case d.Day > other.Day:
		return 1
	default:
		return 0
	}
}

func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Compare(other) < 0
}

func (d CalendarDate) After(other CalendarDate) bool {
	return d.Compare(other) > 0
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d-%02d", d.Month, d.Day)
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var strRepr string
	err := json.Unmarshal(data, &strRepr)
	if err != nil {
		return err
	}
	date, err := ParseCalendarDate(strRepr)
	if err != nil {
		return err
	}
	*d = date
	return nil
}

// ParseCalendarDate parses the MM-DD form used by the reservation log.
func ParseCalendarDate(s string) (CalendarDate, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return CalendarDate{}, fmt.Errorf("%w: could not parse a date from '%v'", ErrInvalidDate, s)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: malformed month in '%v'", ErrInvalidDate, s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: malformed day in '%v'", ErrInvalidDate, s)
	}

	return NewCalendarDate(month, day)
}

// DateRange is an inclusive [CheckIn, CheckOut] stay.
type DateRange struct {
	CheckIn  CalendarDate
	CheckOut CalendarDate
}

// NewDateRange validates both ends and rejects reversed ranges.
func NewDateRange(checkIn CalendarDate, checkOut CalendarDate) (DateRange, error) {
	if err := checkIn.Validate(); err != nil {
		return DateRange{}, err
	}
	if err := checkOut.Validate(); err != nil {
		return DateRange{}, err
	}
	if checkOut.Before(checkIn) {
		return DateRange{}, fmt.Errorf("%w: check-out %v is before check-in %v", ErrInvalidDateRange, checkOut, checkIn)
	}
	return DateRange{CheckIn: checkIn, CheckOut: checkOut}, nil
}

// ForEach visits every date of the range in chronological order. It is the
// single iteration rule shared by the ledger and the availability checker.
// Returning true from visit stops the iteration.
func (r DateRange) ForEach(visit func(date CalendarDate) bool) {
	for date := r.CheckIn; !date.After(r.CheckOut); date = date.Next() {
		if stop := visit(date); stop {
			return
		}
	}
}

func (r DateRange) Dates() []CalendarDate {
	var dates []CalendarDate
	r.ForEach(func(date CalendarDate) bool {
		dates = append(dates, date)
		return false
	})
	return dates
}

// Nights counts the day steps from check-in to check-out; a same-day stay has zero nights.
func (r DateRange) Nights() int {
	nights := len(r.Dates()) - 1
	if nights < 0 {
		return 0
	}
	return nights
}

func (r DateRange) Contains(date CalendarDate) bool {
	return !date.Before(r.CheckIn) && !date.After(r.CheckOut)
}

func (r DateRange) String() string {
	return r.CheckIn.String() + ".." + r.CheckOut.String()
}
