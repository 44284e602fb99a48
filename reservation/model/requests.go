package model

type Operation string

const (
	MakeReservation        Operation = "MakeReservation"
	CancelReservation      Operation = "CancelReservation"
	GetReservation         Operation = "GetReservation"
	ListReservations       Operation = "ListReservations"
	ListAvailableRoomTypes Operation = "ListAvailableRoomTypes"
	GenerateReport         Operation = "OccupancyReport"
)

type ReservationRequest struct {
	RequestId string
	Operation Operation

	CustomerRef   CustomerRef   `json:",omitempty"`
	RoomType      string        `json:",omitempty"`
	CheckIn       *CalendarDate `json:",omitempty"`
	CheckOut      *CalendarDate `json:",omitempty"`
	GuestCount    int           `json:",omitempty"`
	ReservationId ReservationId `json:",omitempty"`
	Month         int           `json:",omitempty"`
}

type ReservationResponse struct {
	RequestId     string
	Success       bool
	FailureReason string    `json:",omitempty"`
	ErrorCode     ErrorCode `json:",omitempty"`

	ReservationId ReservationId  `json:",omitempty"`
	Reservation   *Reservation   `json:",omitempty"`
	Reservations  []Reservation  `json:",omitempty"`
	RoomTypes     []RoomType     `json:",omitempty"`
	Report        *ManagerReport `json:",omitempty"`
}

func NewFailureResponse(requestId string, err error) ReservationResponse {
	return ReservationResponse{
		RequestId:     requestId,
		Success:       false,
		FailureReason: err.Error(),
		ErrorCode:     CodeOf(err),
	}
}
