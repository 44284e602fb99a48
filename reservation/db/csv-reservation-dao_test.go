package db

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservation(id model.ReservationId, roomType string, checkIn, checkOut model.CalendarDate) model.Reservation {
	return model.Reservation{
		Id:          id,
		CustomerRef: "guest@hotel.com",
		RoomType:    roomType,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      model.ACTIVE,
	}
}

func TestCsvDaoOnMissingFile(t *testing.T) {
	dao := NewCsvReservationDao(filepath.Join(t.TempDir(), "reservations.csv"))

	reservations, err := dao.LoadReservations()
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestCsvDaoSaveCancelLoad(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "reservations.csv")
	dao := NewCsvReservationDao(filePath)

	first := reservation("R0001", "Single Room", model.CalendarDate{Month: 1, Day: 29}, model.CalendarDate{Month: 2, Day: 2})
	second := reservation("R0002", "VIP Suite", model.CalendarDate{Month: 3, Day: 3}, model.CalendarDate{Month: 3, Day: 3})
	require.NoError(t, dao.SaveReservation(first))
	require.NoError(t, dao.SaveReservation(second))

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t,
		"reservation_id,customer_email,room_type,check_in,check_out,status\n"+
			"R0001,guest@hotel.com,Single Room,01-29,02-02,ACTIVE\n"+
			"R0002,guest@hotel.com,VIP Suite,03-03,03-03,ACTIVE\n",
		string(content))

	cancelled := first
	cancelled.Status = model.CANCELLED
	require.NoError(t, dao.MarkCancelled(cancelled))

	reservations, err := dao.LoadReservations()
	require.NoError(t, err)
	assert.Equal(t, []model.Reservation{cancelled, second}, reservations)

	err = dao.MarkCancelled(cancelled)
	assert.True(t, errors.Is(err, model.ErrReservationNotFound))
}

func TestCsvDaoReadsLegacyLogs(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "reservations.csv")
	legacy := "reservation_id,customer_email,room_type,check_in,check_out\n" +
		"R0001,ana@mail.com,Double Room,07-10,07-12\n" +
		"R0004,bob@mail.com,Family Room,11-30,12-02\n"
	require.NoError(t, os.WriteFile(filePath, []byte(legacy), 0644))

	reservations, err := NewCsvReservationDao(filePath).LoadReservations()
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	assert.Equal(t, model.ReservationId("R0004"), reservations[1].Id)
	assert.Equal(t, model.CustomerRef("bob@mail.com"), reservations[1].CustomerRef)
	assert.Equal(t, model.CalendarDate{Month: 11, Day: 30}, reservations[1].CheckIn)
	assert.Equal(t, model.ACTIVE, reservations[1].Status)
}

func TestCsvDaoRejectsMalformedRows(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "reservations.csv")
	content := "reservation_id,customer_email,room_type,check_in,check_out\n" +
		"R0001,ana@mail.com,Double Room,07-31,08-02\n"
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))

	_, err := NewCsvReservationDao(filePath).LoadReservations()
	assert.True(t, errors.Is(err, model.ErrInvalidDate))

	content = "reservation_id,room_type\nR0001,Double Room\n"
	require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))

	_, err = NewCsvReservationDao(filePath).LoadReservations()
	assert.True(t, errors.Is(err, model.ErrInvalidReservation))
}
