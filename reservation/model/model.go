package model

import (
	"fmt"
	"strconv"
	"strings"
)

type RoomType struct {
	Name          string
	TotalUnits    int
	MaxGuests     int
	PricePerNight float64
	Beds          int
}

func (rt RoomType) Validate() error {
	if strings.TrimSpace(rt.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRoomType)
	}
	if rt.TotalUnits < 0 {
		return fmt.Errorf("%w: %v has negative unit count %v", ErrInvalidRoomType, rt.Name, rt.TotalUnits)
	}
	if rt.MaxGuests < 0 {
		return fmt.Errorf("%w: %v has negative guest count %v", ErrInvalidRoomType, rt.Name, rt.MaxGuests)
	}
	if rt.PricePerNight < 0 {
		return fmt.Errorf("%w: %v has negative price %v", ErrInvalidRoomType, rt.Name, rt.PricePerNight)
	}
	return nil
}

// CustomerRef is the opaque identifier handed over by the customer-management collaborator.
type CustomerRef string

type ReservationId string

const reservationIdPrefix = "R"

// NewReservationId pads to four digits; wider sequence numbers keep growing unpadded.
func NewReservationId(sequence uint64) ReservationId {
	return ReservationId(fmt.Sprintf("%v%04d", reservationIdPrefix, sequence))
}

func (id ReservationId) String() string {
	return string(id)
}

func (id ReservationId) Sequence() (uint64, error) {
	if !strings.HasPrefix(string(id), reservationIdPrefix) {
		return 0, fmt.Errorf("%w: id '%v' does not start with %v", ErrInvalidReservation, id, reservationIdPrefix)
	}
	sequence, err := strconv.ParseUint(strings.TrimPrefix(string(id), reservationIdPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed id '%v'", ErrInvalidReservation, id)
	}
	return sequence, nil
}

type ReservationStatus string

const (
	ACTIVE    ReservationStatus = "ACTIVE"
	CANCELLED ReservationStatus = "CANCELLED"
)

type Reservation struct {
	Id          ReservationId
	CustomerRef CustomerRef
	RoomType    string
	CheckIn     CalendarDate
	CheckOut    CalendarDate
	Status      ReservationStatus
}

func (r Reservation) DateRange() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

func (r Reservation) Nights() int {
	return r.DateRange().Nights()
}

// Events published to external collaborators

type ReservationCreated struct {
	Reservation Reservation
}

type ReservationCancelled struct {
	Reservation Reservation
}

// Reports

type DayOccupancy struct {
	Day           int
	BookedRooms   int
	OccupancyRate float64
}

type OccupancyReport struct {
	Month       int
	ByRoomType  map[string][]DayOccupancy
	RoomTypes   []string
	DaysInMonth int
}

type ManagerReport struct {
	Occupancy          OccupancyReport
	TotalReservations  int
	TotalCustomers     int
	TotalRevenue       float64
	ReservationSummary []Reservation
}
