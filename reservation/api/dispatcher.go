package api

import (
	"fmt"
	"log"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/reservation/services"
)

// Dispatcher turns transport-neutral requests into controller calls. Every
// transport (HTTP, Lambda, AMQP) goes through it, so the response shape is
// the same everywhere.
type Dispatcher struct {
	controller *services.ReservationController
	reports    *services.ReportService
	session    *services.HotelSession
}

func NewDispatcher(controller *services.ReservationController, reports *services.ReportService) *Dispatcher {
	return &Dispatcher{controller: controller, reports: reports}
}

// WithSession makes every request run while holding the shared hotel lock,
// on a registry freshly reloaded from storage.
func (d *Dispatcher) WithSession(session *services.HotelSession) *Dispatcher {
	d.session = session
	return d
}

func (d *Dispatcher) Dispatch(request model.ReservationRequest) model.ReservationResponse {
	if d.session == nil {
		return d.dispatch(request)
	}

	var response model.ReservationResponse
	err := d.session.Run(func() error {
		response = d.dispatch(request)
		return nil
	})
	if err != nil {
		log.Printf("Request %v failed outside the engine: %v\n", request.RequestId, err)
		return model.NewFailureResponse(request.RequestId, err)
	}
	return response
}

func (d *Dispatcher) dispatch(request model.ReservationRequest) model.ReservationResponse {
	response := model.ReservationResponse{RequestId: request.RequestId, Success: true}

	var err error
	switch request.Operation {
	case model.MakeReservation:
		checkIn, checkOut, datesErr := requiredDates(request)
		if datesErr != nil {
			return model.NewFailureResponse(request.RequestId, datesErr)
		}
		response.ReservationId, err = d.controller.MakeReservation(request.CustomerRef, request.RoomType, checkIn, checkOut)

	case model.CancelReservation:
		err = d.controller.CancelReservation(request.ReservationId)
		response.ReservationId = request.ReservationId

	case model.GetReservation:
		var reservation model.Reservation
		reservation, err = d.controller.GetReservation(request.ReservationId)
		if err == nil {
			response.ReservationId = reservation.Id
			response.Reservation = &reservation
		}

	case model.ListReservations:
		response.Reservations = d.controller.ListReservations()

	case model.ListAvailableRoomTypes:
		checkIn, checkOut, datesErr := requiredDates(request)
		if datesErr != nil {
			return model.NewFailureResponse(request.RequestId, datesErr)
		}
		response.RoomTypes, err = d.controller.ListAvailableRoomTypes(checkIn, checkOut, request.GuestCount)

	case model.GenerateReport:
		var report model.ManagerReport
		report, err = d.reports.GenerateReport(request.Month)
		if err == nil {
			response.Report = &report
		}

	default:
		err = fmt.Errorf("%w: unsupported operation '%v'", model.ErrInvalidReservation, request.Operation)
	}

	if err != nil {
		return model.NewFailureResponse(request.RequestId, err)
	}
	return response
}

func requiredDates(request model.ReservationRequest) (model.CalendarDate, model.CalendarDate, error) {
	if request.CheckIn == nil || request.CheckOut == nil {
		return model.CalendarDate{}, model.CalendarDate{}, fmt.Errorf("%w: check-in and check-out are required", model.ErrInvalidDateRange)
	}
	return *request.CheckIn, *request.CheckOut, nil
}
