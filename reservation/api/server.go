package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/gorilla/mux"
)

type Server struct {
	srv    *http.Server
	router *mux.Router
}

func NewServer(addr string, dispatcher *Dispatcher) *Server {
	return &Server{
		srv:    &http.Server{Addr: addr},
		router: NewRouter(dispatcher),
	}
}

func (s *Server) Start() error {
	s.srv.Handler = s.router
	log.Printf("Listening on %v\n", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func NewRouter(dispatcher *Dispatcher) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", health).Methods(http.MethodGet)
	router.HandleFunc("/rooms/available", handler(dispatcher, translateListAvailableRoomTypes, http.StatusOK)).Methods(http.MethodGet)
	router.HandleFunc("/reservations", handler(dispatcher, translateListReservations, http.StatusOK)).Methods(http.MethodGet)
	router.HandleFunc("/reservations", handler(dispatcher, translateMakeReservation, http.StatusCreated)).Methods(http.MethodPost)
	router.HandleFunc("/reservations/{id}", handler(dispatcher, translateGetReservation, http.StatusOK)).Methods(http.MethodGet)
	router.HandleFunc("/reservations/{id}", handler(dispatcher, translateCancelReservation, http.StatusOK)).Methods(http.MethodDelete)
	router.HandleFunc("/reports/occupancy/{month}", handler(dispatcher, translateOccupancyReport, http.StatusOK)).Methods(http.MethodGet)

	return router
}

func health(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("Status: UP"))
}

func handler(dispatcher *Dispatcher, translate Translator, successStatus int) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		reservationRequest, err := translate(request)
		if err != nil {
			log.Printf("Error translating request: %v\n", err)
			writeResponse(writer, http.StatusBadRequest, model.NewFailureResponse(request.Header.Get(requestIdHeader), err))
			return
		}

		response := dispatcher.Dispatch(reservationRequest)
		if !response.Success {
			writeResponse(writer, StatusOf(response.ErrorCode), response)
			return
		}
		writeResponse(writer, successStatus, response)
	}
}

// StatusOf maps an engine error code to the HTTP status returned to clients.
func StatusOf(code model.ErrorCode) int {
	switch code {
	case "":
		return http.StatusOK
	case model.CodeReservationNotFound:
		return http.StatusNotFound
	case model.CodeNoAvailability:
		return http.StatusConflict
	case model.CodeUnknownRoomType, model.CodeInvalidCustomer, model.CodeInvalidDate,
		model.CodeInvalidDateRange, model.CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeResponse(writer http.ResponseWriter, status int, response model.ReservationResponse) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(response); err != nil {
		log.Printf("Error encoding response: %v\n", err)
	}
}
