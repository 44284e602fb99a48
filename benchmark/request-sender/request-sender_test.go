package request_sender

import (
	"errors"
	"sync"
	"testing"

	"github.com/Oscar-GGV/ATOMreservations/benchmark"
	"github.com/Oscar-GGV/ATOMreservations/reservation/api"
	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/reservation/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTimeLogger struct {
	mu       sync.Mutex
	started  int
	outcomes map[string]int
}

func (l *countingTimeLogger) LogStartRequest(_ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started++
	return nil
}

func (l *countingTimeLogger) LogEndRequest(_ string, outcome string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes[outcome]++
	return nil
}

type failingSender struct{}

func (failingSender) Send(model.ReservationRequest) (model.ReservationResponse, error) {
	return model.ReservationResponse{}, errors.New("connection refused")
}

func newDispatcher() *api.Dispatcher {
	roomCatalog := catalog.NewDefaultRoomCatalog()
	registry := services.NewReservationRegistry(roomCatalog, nil)
	controller := services.NewReservationController(roomCatalog, registry, nil, nil)
	return api.NewDispatcher(controller, services.NewReportService(roomCatalog, registry))
}

func TestBuildReservationRequests(t *testing.T) {
	params := ReservationRequestsParameters{
		CustomersCount:      4,
		RequestsPerCustomer: 5,
		RoomTypes:           []string{"Single Room", "VIP Suite"},
		Month:               6,
		MaxStayNights:       7,
		Seed:                42,
	}

	requests := BuildReservationRequests(params)
	require.Len(t, requests, 20)
	assert.Equal(t, requests, BuildReservationRequests(params))

	ids := make(map[string]bool)
	for _, request := range requests {
		ids[request.RequestId] = true
		assert.Equal(t, model.MakeReservation, request.Operation)
		assert.Equal(t, 6, request.CheckIn.Month)
		assert.Equal(t, 6, request.CheckOut.Month)
		assert.NoError(t, request.CheckOut.Validate())
		assert.False(t, request.CheckOut.Before(*request.CheckIn))
		assert.LessOrEqual(t, request.CheckOut.Day-request.CheckIn.Day, 7)
		assert.Contains(t, params.RoomTypes, request.RoomType)
	}
	assert.Len(t, ids, 20)
}

func TestSendAndMeasureNeverOverbooks(t *testing.T) {
	params := ReservationRequestsParameters{
		CustomersCount:        10,
		RequestsPerCustomer:   3,
		RoomTypes:             []string{"VIP Suite"},
		Month:                 2,
		MaxStayNights:         0,
		Seed:                  7,
		SendingPeriodMillis:   -1,
		MaxConcurrentRequests: 8,
	}
	requests := BuildReservationRequests(params)
	timeLogger := &countingTimeLogger{outcomes: make(map[string]int)}
	dispatcher := newDispatcher()

	samples := SendAndMeasureReservationRequests(params, requests, NewDispatcherSender(dispatcher), timeLogger)

	require.Len(t, samples, 30)
	assert.Equal(t, 30, timeLogger.started)

	results := benchmark.ComputeResults(samples)
	assert.Equal(t, 30, results.Requests)
	assert.Equal(t, results.OutcomeCounts["OK"], len(dispatcher.Dispatch(model.ReservationRequest{Operation: model.ListReservations}).Reservations))
	assert.Equal(t, 30, results.OutcomeCounts["OK"]+results.OutcomeCounts[string(model.CodeNoAvailability)])
	assert.Equal(t, timeLogger.outcomes, results.OutcomeCounts)
}

func TestSendAndMeasureRecordsTransportErrors(t *testing.T) {
	params := ReservationRequestsParameters{CustomersCount: 2, RequestsPerCustomer: 2, RoomTypes: []string{"Double Room"}, Month: 3, MaxConcurrentRequests: 2, SendingPeriodMillis: -1}
	timeLogger := &countingTimeLogger{outcomes: make(map[string]int)}

	samples := SendAndMeasureReservationRequests(params, BuildReservationRequests(params), failingSender{}, timeLogger)

	require.Len(t, samples, 4)
	assert.Equal(t, map[string]int{"TRANSPORT_ERROR": 4}, timeLogger.outcomes)
}
