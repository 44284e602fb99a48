package services

import (
	"fmt"

	"github.com/Oscar-GGV/ATOMreservations/reservation/catalog"
	"github.com/Oscar-GGV/ATOMreservations/reservation/model"
	"github.com/Oscar-GGV/ATOMreservations/utils"
)

type ReportService struct {
	catalog  *catalog.RoomCatalog
	registry *ReservationRegistry
}

func NewReportService(roomCatalog *catalog.RoomCatalog, registry *ReservationRegistry) *ReportService {
	return &ReportService{catalog: roomCatalog, registry: registry}
}

// OccupancyReport lists, for every room type, the booked units and the
// occupancy rate (percent) of each day of the month.
func (rs *ReportService) OccupancyReport(month int) (model.OccupancyReport, error) {
	if month < 1 || month > model.MonthsPerYear {
		return model.OccupancyReport{}, fmt.Errorf("%w: month %v is outside 1..%v", model.ErrInvalidDate, month, model.MonthsPerYear)
	}

	report := model.OccupancyReport{
		Month:       month,
		ByRoomType:  make(map[string][]model.DayOccupancy),
		RoomTypes:   rs.catalog.Names(),
		DaysInMonth: model.DaysPerMonth,
	}

	for _, roomTypeName := range report.RoomTypes {
		roomType, err := rs.catalog.Get(roomTypeName)
		if err != nil {
			return model.OccupancyReport{}, err
		}

		days := make([]model.DayOccupancy, 0, model.DaysPerMonth)
		for day := 1; day <= model.DaysPerMonth; day++ {
			booked := rs.registry.BookedCount(model.CalendarDate{Month: month, Day: day}, roomTypeName)
			days = append(days, model.DayOccupancy{
				Day:           day,
				BookedRooms:   booked,
				OccupancyRate: occupancyRate(booked, roomType.TotalUnits),
			})
		}
		report.ByRoomType[roomTypeName] = days
	}

	return report, nil
}

// TotalRevenue charges every active reservation its nightly price times its nights.
func (rs *ReportService) TotalRevenue() float64 {
	return rs.revenueOf(rs.registry.List())
}

func (rs *ReportService) GenerateReport(month int) (model.ManagerReport, error) {
	occupancy, err := rs.OccupancyReport(month)
	if err != nil {
		return model.ManagerReport{}, err
	}

	reservations := rs.registry.List()
	customers := utils.NewMapSet[model.CustomerRef]()
	for _, reservation := range reservations {
		customers.Add(reservation.CustomerRef)
	}

	return model.ManagerReport{
		Occupancy:          occupancy,
		TotalReservations:  len(reservations),
		TotalCustomers:     customers.GetSize(),
		TotalRevenue:       rs.revenueOf(reservations),
		ReservationSummary: reservations,
	}, nil
}

func (rs *ReportService) revenueOf(reservations []model.Reservation) float64 {
	revenue := 0.0
	for _, reservation := range reservations {
		roomType, err := rs.catalog.Get(reservation.RoomType)
		if err != nil {
			continue
		}
		revenue += roomType.PricePerNight * float64(reservation.Nights())
	}
	return revenue
}

func occupancyRate(booked int, totalUnits int) float64 {
	if totalUnits == 0 {
		return 0
	}
	return float64(booked*100) / float64(totalUnits)
}
