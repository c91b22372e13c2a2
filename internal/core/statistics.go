package core

import (
	"context"

	"payroll.service/internal/core/model"
	"payroll.service/internal/ports/repository"
)

// StatisticsService derives per-employee statistics from stored
// entries. All figures include unapproved entries; the dashboard shows
// pending hours as if final, matching the reporting views this service
// replaces.
type StatisticsService struct {
	repo  repository.WorkHoursRepository
	clock Clock
}

// NewStatisticsService wires the aggregator over a store and a clock.
// The clock resolves which week "offset 0" refers to.
func NewStatisticsService(repo repository.WorkHoursRepository, clock Clock) *StatisticsService {
	return &StatisticsService{repo: repo, clock: clock}
}

// WeeklyStatistics aggregates one employee's entries for the week
// window at the given offset from the current week.
func (s *StatisticsService) WeeklyStatistics(ctx context.Context, employeeID int64, weekOffset int) (*model.WeeklyStatistics, error) {
	window := model.WeekWindowFor(s.clock.Now(), weekOffset)
	entries, err := s.repo.ListByEmployeeAndDateRange(ctx, employeeID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	stats := AggregateWeek(employeeID, window, entries)
	return &stats, nil
}

// CumulativeStatistics returns the all-time projection for an employee.
// An employee with no entries gets a zero-valued record.
func (s *StatisticsService) CumulativeStatistics(ctx context.Context, employeeID int64) (*model.EmployeeStatistics, error) {
	stats, err := s.repo.EmployeeStatistics(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if stats.WeeksCount > 0 {
		stats.AverageWeeklyHours = stats.TotalHours / float64(stats.WeeksCount)
	}
	return stats, nil
}

// AggregateWeek sums the durations of the entries that fall inside the
// window. An entry missing either time contributes zero hours and does
// not count as an active day, so it cannot distort the average.
func AggregateWeek(employeeID int64, window model.WeekWindow, entries []model.WorkHoursEntry) model.WeeklyStatistics {
	stats := model.WeeklyStatistics{EmployeeID: employeeID, Window: window}

	activeDays := make(map[string]struct{})
	for _, entry := range entries {
		if !window.Contains(entry.Date) || !entry.HasDuration() {
			continue
		}
		stats.TotalHours += entry.Hours()
		activeDays[entry.Date.Format("2006-01-02")] = struct{}{}
	}

	stats.DaysWorked = len(activeDays)
	if stats.DaysWorked > 0 {
		stats.DailyAverage = stats.TotalHours / float64(stats.DaysWorked)
	}
	return stats
}
