package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll.service/internal/core/model"
)

func entryOn(day time.Time, startHour, endHour int) model.WorkHoursEntry {
	start := time.Date(0, time.January, 1, startHour, 0, 0, 0, time.UTC)
	end := time.Date(0, time.January, 1, endHour, 0, 0, 0, time.UTC)
	return model.WorkHoursEntry{EmployeeID: 7, Date: day, WorkTypeID: 1, StartTime: &start, EndTime: &end}
}

func TestAggregateWeek(t *testing.T) {
	window := model.WeekWindowFor(time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC), 0)
	monday := window.Start
	tuesday := monday.AddDate(0, 0, 1)

	t.Run("sums hours and distinct days", func(t *testing.T) {
		stats := AggregateWeek(7, window, []model.WorkHoursEntry{
			entryOn(monday, 9, 17),
			entryOn(tuesday, 9, 13),
		})
		assert.InDelta(t, 12, stats.TotalHours, 1e-9)
		assert.Equal(t, 2, stats.DaysWorked)
		assert.InDelta(t, 6, stats.DailyAverage, 1e-9)
	})

	t.Run("two sessions on one day count a single day", func(t *testing.T) {
		stats := AggregateWeek(7, window, []model.WorkHoursEntry{
			entryOn(monday, 9, 13),
			entryOn(monday, 14, 18),
		})
		assert.InDelta(t, 8, stats.TotalHours, 1e-9)
		assert.Equal(t, 1, stats.DaysWorked)
		assert.InDelta(t, 8, stats.DailyAverage, 1e-9)
	})

	t.Run("entry without times contributes nothing", func(t *testing.T) {
		open := model.WorkHoursEntry{EmployeeID: 7, Date: monday, WorkTypeID: 1}
		stats := AggregateWeek(7, window, []model.WorkHoursEntry{
			open,
			entryOn(tuesday, 9, 17),
		})
		assert.InDelta(t, 8, stats.TotalHours, 1e-9)
		assert.Equal(t, 1, stats.DaysWorked, "a day with no computable duration is not an active day")
	})

	t.Run("entry outside the window is ignored", func(t *testing.T) {
		stats := AggregateWeek(7, window, []model.WorkHoursEntry{
			entryOn(monday.AddDate(0, 0, -1), 9, 17),
			entryOn(monday, 9, 17),
		})
		assert.InDelta(t, 8, stats.TotalHours, 1e-9)
		assert.Equal(t, 1, stats.DaysWorked)
	})

	t.Run("empty week yields zeros without dividing", func(t *testing.T) {
		stats := AggregateWeek(7, window, nil)
		assert.Zero(t, stats.TotalHours)
		assert.Zero(t, stats.DaysWorked)
		assert.Zero(t, stats.DailyAverage)
		assert.Equal(t, window, stats.Window)
	})
}

func TestWeeklyStatisticsUsesClockWindow(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)
	svc := NewStatisticsService(repo, fixedClock{t: now})

	monday := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	repo.Create(context.Background(), entryOn(monday, 9, 17))

	stats, err := svc.WeeklyStatistics(context.Background(), 7, 0)
	require.NoError(t, err)

	assert.Equal(t, monday, repo.lastFrom)
	assert.Equal(t, monday.AddDate(0, 0, 6), repo.lastTo)
	assert.InDelta(t, 8, stats.TotalHours, 1e-9)
	assert.Equal(t, int64(7), stats.EmployeeID)
}

func TestWeeklyStatisticsOffset(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)
	svc := NewStatisticsService(repo, fixedClock{t: now})

	_, err := svc.WeeklyStatistics(context.Background(), 7, -1)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), repo.lastFrom)
	assert.Equal(t, time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC), repo.lastTo)
}

func TestCumulativeStatistics(t *testing.T) {
	repo := newFakeRepo()
	svc := NewStatisticsService(repo, fixedClock{t: time.Now()})

	t.Run("average over recorded weeks", func(t *testing.T) {
		repo.stats = model.EmployeeStatistics{TotalHours: 90, WeeksCount: 3}

		stats, err := svc.CumulativeStatistics(context.Background(), 7)
		require.NoError(t, err)
		assert.InDelta(t, 90, stats.TotalHours, 1e-9)
		assert.Equal(t, 3, stats.WeeksCount)
		assert.InDelta(t, 30, stats.AverageWeeklyHours, 1e-9)
	})

	t.Run("employee with no entries gets zero record", func(t *testing.T) {
		repo.stats = model.EmployeeStatistics{}

		stats, err := svc.CumulativeStatistics(context.Background(), 9)
		require.NoError(t, err)
		assert.Equal(t, int64(9), stats.EmployeeID)
		assert.Zero(t, stats.TotalHours)
		assert.Zero(t, stats.WeeksCount)
		assert.Zero(t, stats.AverageWeeklyHours)
	})
}
