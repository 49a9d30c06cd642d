package service

import (
	"context"
	"time"

	"frota/internal/apperr"
	"frota/internal/repository"

	"github.com/shopspring/decimal"
)

type ReportQuery struct {
	Start    time.Time
	End      time.Time
	ClientID uint
}

// DailyTotal aggregates the rides of one calendar day.
type DailyTotal struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type RideReport struct {
	Start      string          `json:"start"`
	End        string          `json:"end"`
	ClientID   uint            `json:"client_id,omitempty"`
	Rides      []RideResponse  `json:"rides"`
	TotalRides int             `json:"total_rides"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ByDate     []DailyTotal    `json:"by_date"`
}

type ReportService interface {
	RideReport(ctx context.Context, query ReportQuery) (*RideReport, error)
}

type reportService struct {
	rides repository.RideRepository
	now   func() time.Time
}

func NewReportService(rides repository.RideRepository) ReportService {
	return &reportService{rides: rides, now: time.Now}
}

// RideReport lists rides in the period ordered by scheduled time, with totals
// per day and for the whole period. The default period is the last month up to today.
func (s *reportService) RideReport(ctx context.Context, query ReportQuery) (*RideReport, error) {
	now := s.now()
	start, end := query.Start, query.End
	if start.IsZero() {
		start = startOfDay(now.AddDate(0, -1, 0))
	}
	if end.IsZero() {
		end = endOfDay(now)
	}
	if end.Before(start) {
		return nil, apperr.Validation("end date must not be before start date")
	}

	rides, err := s.rides.ListForReport(ctx, start, end, query.ClientID)
	if err != nil {
		return nil, err
	}

	report := &RideReport{
		Start:      start.Format(timeLayout),
		End:        end.Format(timeLayout),
		ClientID:   query.ClientID,
		Rides:      make([]RideResponse, 0, len(rides)),
		TotalRides: len(rides),
		GrandTotal: decimal.Zero,
		ByDate:     []DailyTotal{},
	}

	index := make(map[string]int)
	for i := range rides {
		ride := &rides[i]
		report.Rides = append(report.Rides, toRideResponse(ride))
		report.GrandTotal = report.GrandTotal.Add(ride.Price)

		day := ride.ScheduledAt.Format("2006-01-02")
		pos, ok := index[day]
		if !ok {
			pos = len(report.ByDate)
			index[day] = pos
			report.ByDate = append(report.ByDate, DailyTotal{Date: day, Total: decimal.Zero})
		}
		report.ByDate[pos].Count++
		report.ByDate[pos].Total = report.ByDate[pos].Total.Add(ride.Price)
	}

	return report, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
