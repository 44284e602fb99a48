package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIdHeader = "X-Request-Id"

// Translator maps an HTTP request to the request understood by the Dispatcher.
type Translator func(request *http.Request) (model.ReservationRequest, error)

type reservationBody struct {
	CustomerRef model.CustomerRef
	RoomType    string
	CheckIn     *model.CalendarDate
	CheckOut    *model.CalendarDate
}

func newRequest(request *http.Request, operation model.Operation) model.ReservationRequest {
	requestId := request.Header.Get(requestIdHeader)
	if requestId == "" {
		requestId = uuid.New().String()
	}
	return model.ReservationRequest{RequestId: requestId, Operation: operation}
}

func translateMakeReservation(request *http.Request) (model.ReservationRequest, error) {
	var body reservationBody
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		return model.ReservationRequest{}, fmt.Errorf("%w: malformed body: %v", model.ErrInvalidReservation, err)
	}

	reservationRequest := newRequest(request, model.MakeReservation)
	reservationRequest.CustomerRef = body.CustomerRef
	reservationRequest.RoomType = body.RoomType
	reservationRequest.CheckIn = body.CheckIn
	reservationRequest.CheckOut = body.CheckOut
	return reservationRequest, nil
}

func translateCancelReservation(request *http.Request) (model.ReservationRequest, error) {
	reservationRequest := newRequest(request, model.CancelReservation)
	reservationRequest.ReservationId = model.ReservationId(mux.Vars(request)["id"])
	return reservationRequest, nil
}

func translateGetReservation(request *http.Request) (model.ReservationRequest, error) {
	reservationRequest := newRequest(request, model.GetReservation)
	reservationRequest.ReservationId = model.ReservationId(mux.Vars(request)["id"])
	return reservationRequest, nil
}

func translateListReservations(request *http.Request) (model.ReservationRequest, error) {
	return newRequest(request, model.ListReservations), nil
}

func translateListAvailableRoomTypes(request *http.Request) (model.ReservationRequest, error) {
	query := request.URL.Query()

	checkIn, err := model.ParseCalendarDate(query.Get("checkIn"))
	if err != nil {
		return model.ReservationRequest{}, err
	}
	checkOut, err := model.ParseCalendarDate(query.Get("checkOut"))
	if err != nil {
		return model.ReservationRequest{}, err
	}

	guests := 0
	if rawGuests := query.Get("guests"); rawGuests != "" {
		guests, err = strconv.Atoi(rawGuests)
		if err != nil {
			return model.ReservationRequest{}, fmt.Errorf("%w: malformed guest count '%v'", model.ErrInvalidReservation, rawGuests)
		}
	}

	reservationRequest := newRequest(request, model.ListAvailableRoomTypes)
	reservationRequest.CheckIn = &checkIn
	reservationRequest.CheckOut = &checkOut
	reservationRequest.GuestCount = guests
	return reservationRequest, nil
}

func translateOccupancyReport(request *http.Request) (model.ReservationRequest, error) {
	rawMonth := mux.Vars(request)["month"]
	month, err := strconv.Atoi(rawMonth)
	if err != nil {
		return model.ReservationRequest{}, fmt.Errorf("%w: malformed month '%v'", model.ErrInvalidDate, rawMonth)
	}

	reservationRequest := newRequest(request, model.GenerateReport)
	reservationRequest.Month = month
	return reservationRequest, nil
}
