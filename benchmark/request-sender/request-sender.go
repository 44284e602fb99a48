package request_sender

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/benchmark"
	"github.com/Oscar-GGV/ATOMreservations/lambdautils"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

type ReservationRequestsParameters struct {
	CustomersCount      int
	RequestsPerCustomer int
	RoomTypes           []string
	Month               int
	MaxStayNights       int
	Seed                int64

	SendingPeriodMillis   int
	MaxConcurrentRequests int
}

type RequestSender interface {
	Send(request model.ReservationRequest) (model.ReservationResponse, error)
}

// SendAndMeasureReservationRequests pushes the requests through MaxConcurrentRequests
// senders, pausing SendingPeriodMillis after every MaxConcurrentRequests requests
// (-1 disables pacing).
func SendAndMeasureReservationRequests(
	params ReservationRequestsParameters,
	requests []model.ReservationRequest,
	sender RequestSender,
	timeLogger benchmark.RequestTimeLogger) []benchmark.Sample {

	concurrentRequests := max(params.MaxConcurrentRequests, 1)
	var requestSenderWg sync.WaitGroup
	var samplesMutex sync.Mutex
	var samples []benchmark.Sample

	inputQueue := make(chan model.ReservationRequest, concurrentRequests)
	for range concurrentRequests {
		requestSenderWg.Add(1)
		go func() {
			defer requestSenderWg.Done()
			for request := range inputQueue {
				sample := sendAndMeasure(request, sender, timeLogger)
				samplesMutex.Lock()
				samples = append(samples, sample)
				samplesMutex.Unlock()
			}
		}()
	}

	for i, request := range requests {
		if i > 0 && i%concurrentRequests == 0 && params.SendingPeriodMillis != -1 {
			time.Sleep(time.Duration(params.SendingPeriodMillis) * time.Millisecond)
		}
		inputQueue <- request
	}
	close(inputQueue)
	requestSenderWg.Wait()

	return samples
}

func sendAndMeasure(request model.ReservationRequest, sender RequestSender, timeLogger benchmark.RequestTimeLogger) benchmark.Sample {
	err := timeLogger.LogStartRequest(request.RequestId)
	if err != nil {
		log.Printf("Could not log the start request %v: %v\n", request.RequestId, err)
	}

	sample := benchmark.Sample{Id: request.RequestId, Start: time.Now()}
	response, err := sender.Send(request)
	sample.End = time.Now()
	sample.Outcome = outcomeOf(response, err)
	if err != nil {
		log.Printf("Failed to execute request with id %v: %v\n", request.RequestId, err)
	}

	err = timeLogger.LogEndRequest(request.RequestId, sample.Outcome)
	if err != nil {
		log.Printf("Could not log the end request %v: %v\n", request.RequestId, err)
	}
	return sample
}

func outcomeOf(response model.ReservationResponse, err error) string {
	if err != nil {
		return "TRANSPORT_ERROR"
	}
	if response.Success {
		return "OK"
	}
	return string(response.ErrorCode)
}

// BuildReservationRequests generates MakeReservation requests for random stays
// inside the configured month, deterministically for a given seed.
func BuildReservationRequests(params ReservationRequestsParameters) []model.ReservationRequest {
	rnd := rand.New(rand.NewSource(params.Seed))
	month := params.Month
	if month < 1 || month > model.MonthsPerYear {
		month = 1
	}
	maxStayNights := min(max(params.MaxStayNights, 0), model.DaysPerMonth-1)

	var requests []model.ReservationRequest
	for customerIndex := range params.CustomersCount {
		customer := model.CustomerRef(fmt.Sprintf("customer-%v@load.test", customerIndex))
		for requestIndex := range params.RequestsPerCustomer {
			nights := rnd.Intn(maxStayNights + 1)
			firstDay := 1 + rnd.Intn(model.DaysPerMonth-nights)
			checkIn := model.CalendarDate{Month: month, Day: firstDay}
			checkOut := model.CalendarDate{Month: month, Day: firstDay + nights}

			roomType := ""
			if len(params.RoomTypes) > 0 {
				roomType = params.RoomTypes[rnd.Intn(len(params.RoomTypes))]
			}

			requests = append(requests, model.ReservationRequest{
				RequestId:   fmt.Sprintf("%v#%v", customer, requestIndex),
				Operation:   model.MakeReservation,
				CustomerRef: customer,
				RoomType:    roomType,
				CheckIn:     &checkIn,
				CheckOut:    &checkOut,
			})
		}
	}

	return requests
}

type Dispatcher interface {
	Dispatch(request model.ReservationRequest) model.ReservationResponse
}

// DispatcherSender runs the load in process, against a locally built service.
type DispatcherSender struct {
	dispatcher Dispatcher
}

func NewDispatcherSender(dispatcher Dispatcher) *DispatcherSender {
	return &DispatcherSender{dispatcher: dispatcher}
}

func (s *DispatcherSender) Send(request model.ReservationRequest) (model.ReservationResponse, error) {
	return s.dispatcher.Dispatch(request), nil
}

type LambdaReservationSender struct {
	lambdaClient *lambda.Client
}

func NewLambdaReservationSender(lambdaClient *lambda.Client) *LambdaReservationSender {
	return &LambdaReservationSender{lambdaClient: lambdaClient}
}

func (lrs *LambdaReservationSender) Send(request model.ReservationRequest) (model.ReservationResponse, error) {
	return lambdautils.InvokeReservationServiceSync(lrs.lambdaClient, request)
}
