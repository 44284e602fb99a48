package model

import "errors"

var (
	ErrUnknownRoomType     = errors.New("unknown room type")
	ErrInvalidRoomType     = errors.New("invalid room type")
	ErrNoAvailability      = errors.New("no availability")
	ErrInvalidCustomer     = errors.New("invalid customer")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrInvalidReservation  = errors.New("invalid reservation")
	ErrHotelLocked         = errors.New("hotel is locked by another instance")

	// ErrLedgerCorruption means an increment/decrement pairing was violated.
	ErrLedgerCorruption = errors.New("ledger corruption")
)

type ErrorCode string

const (
	CodeUnknownRoomType     ErrorCode = "UNKNOWN_ROOM_TYPE"
	CodeNoAvailability      ErrorCode = "NO_AVAILABILITY"
	CodeInvalidCustomer     ErrorCode = "INVALID_CUSTOMER"
	CodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"
	CodeLedgerCorruption    ErrorCode = "LEDGER_CORRUPTION"
	CodeInvalidDate         ErrorCode = "INVALID_DATE"
	CodeInvalidDateRange    ErrorCode = "INVALID_DATE_RANGE"
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeInternal            ErrorCode = "INTERNAL"
)

func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownRoomType):
		return CodeUnknownRoomType
	case errors.Is(err, ErrNoAvailability):
		return CodeNoAvailability
	case errors.Is(err, ErrInvalidCustomer):
		return CodeInvalidCustomer
	case errors.Is(err, ErrReservationNotFound):
		return CodeReservationNotFound
	case errors.Is(err, ErrLedgerCorruption):
		return CodeLedgerCorruption
	case errors.Is(err, ErrInvalidDate):
		return CodeInvalidDate
	case errors.Is(err, ErrInvalidDateRange):
		return CodeInvalidDateRange
	case errors.Is(err, ErrInvalidRoomType), errors.Is(err, ErrInvalidReservation):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}
