package lambdautils

import (
	"testing"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReservationResponse(t *testing.T) {
	payload := []byte(`{"RequestId":"req-1","Success":false,"FailureReason":"no availability","ErrorCode":"NO_AVAILABILITY"}`)

	response, err := DecodeReservationResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, "req-1", response.RequestId)
	assert.False(t, response.Success)
	assert.Equal(t, model.CodeNoAvailability, response.ErrorCode)

	_, err = DecodeReservationResponse([]byte("not json"))
	assert.Error(t, err)
}
