package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
)

var csvHeader = []string{"reservation_id", "customer_email", "room_type", "check_in", "check_out", "status"}

// CsvReservationDao keeps the reservation log readable by the desktop tools:
// one row per reservation with MM-DD dates. Logs written without the status
// column are read as all active.
type CsvReservationDao struct {
	mu       sync.Mutex
	filePath string
}

func NewCsvReservationDao(filePath string) *CsvReservationDao {
	return &CsvReservationDao{filePath: filePath}
}

func (dao *CsvReservationDao) SaveReservation(reservation model.Reservation) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	writeHeader := false
	info, err := os.Stat(dao.filePath)
	if errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0) {
		writeHeader = true
	} else if err != nil {
		return err
	}

	file, err := os.OpenFile(dao.filePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err = writer.Write(csvHeader); err != nil {
			return err
		}
	}
	if err = writer.Write(toCsvRecord(reservation)); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// MarkCancelled rewrites the whole log with the reservation flagged as cancelled.
func (dao *CsvReservationDao) MarkCancelled(reservation model.Reservation) error {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	reservations, err := dao.readAll()
	if err != nil {
		return err
	}

	found := false
	for i := range reservations {
		if reservations[i].Id == reservation.Id && reservations[i].Status == model.ACTIVE {
			reservations[i].Status = model.CANCELLED
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %v is not active in %v", model.ErrReservationNotFound, reservation.Id, dao.filePath)
	}

	return dao.rewrite(reservations)
}

func (dao *CsvReservationDao) LoadReservations() ([]model.Reservation, error) {
	dao.mu.Lock()
	defer dao.mu.Unlock()

	return dao.readAll()
}

func (dao *CsvReservationDao) readAll() ([]model.Reservation, error) {
	file, err := os.Open(dao.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var reservations []model.Reservation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		reservation, err := fromCsvRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%v line %v: %w", dao.filePath, line, err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

func (dao *CsvReservationDao) rewrite(reservations []model.Reservation) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dao.filePath), filepath.Base(dao.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	writer := csv.NewWriter(tmpFile)
	records := [][]string{csvHeader}
	for _, reservation := range reservations {
		records = append(records, toCsvRecord(reservation))
	}
	if err = writer.WriteAll(records); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpFile.Name(), dao.filePath)
}

func toCsvRecord(reservation model.Reservation) []string {
	return []string{
		reservation.Id.String(),
		string(reservation.CustomerRef),
		reservation.RoomType,
		reservation.CheckIn.String(),
		reservation.CheckOut.String(),
		string(reservation.Status),
	}
}

func fromCsvRecord(record []string, columns map[string]int) (model.Reservation, error) {
	field := func(name string) (string, bool) {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return "", false
		}
		return record[index], true
	}

	for _, name := range csvHeader[:5] {
		if _, ok := field(name); !ok {
			return model.Reservation{}, fmt.Errorf("%w: missing column %v", model.ErrInvalidReservation, name)
		}
	}

	id, _ := field("reservation_id")
	customer, _ := field("customer_email")
	roomType, _ := field("room_type")
	rawCheckIn, _ := field("check_in")
	rawCheckOut, _ := field("check_out")

	checkIn, err := model.ParseCalendarDate(rawCheckIn)
	if err != nil {
		return model.Reservation{}, err
	}
	checkOut, err := model.ParseCalendarDate(rawCheckOut)
	if err != nil {
		return model.Reservation{}, err
	}

	reservation := model.Reservation{
		Id:          model.ReservationId(id),
		CustomerRef: model.CustomerRef(customer),
		RoomType:    roomType,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      model.ACTIVE,
	}
	if status, ok := field("status"); ok && status != "" {
		reservation.Status = model.ReservationStatus(status)
	}
	return reservation, nil
}
