package model

import (
	"fmt"
	"time"
)

// PayoutRunStatus is the terminal outcome of one Payroll Engine invocation.
type PayoutRunStatus string

const (
	PayoutRunCompleted PayoutRunStatus = "COMPLETED"
	PayoutRunFailed    PayoutRunStatus = "FAILED"
)

// NotifyStatus tracks delivery of the accounting summary email for a payout run.
type NotifyStatus string

const (
	NotifyPending   NotifyStatus = "PENDING"
	NotifyCompleted NotifyStatus = "COMPLETED"
	NotifyFailed    NotifyStatus = "FAILED"
)

// WorkHoursEntry is one recorded work session for an employee.
// Start and end times are times of day on Date; both must be present
// for the entry to have a computable duration.
type WorkHoursEntry struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employeeId"`
	Date       time.Time  `json:"date"`
	ProjectID  *int64     `json:"projectId,omitempty"`
	WorkTypeID int64      `json:"workTypeId"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	Approved   bool       `json:"approved"`
}

// HasDuration reports whether both start and end times are recorded.
func (e WorkHoursEntry) HasDuration() bool {
	return e.StartTime != nil && e.EndTime != nil
}

// Duration returns the length of the work session, or zero when either
// time is missing.
func (e WorkHoursEntry) Duration() time.Duration {
	if !e.HasDuration() {
		return 0
	}
	return e.EndTime.Sub(*e.StartTime)
}

// Hours returns the duration expressed in fractional hours.
func (e WorkHoursEntry) Hours() float64 {
	return e.Duration().Hours()
}

// DayOfWeek is the display label for the entry's calendar date.
func (e WorkHoursEntry) DayOfWeek() string {
	return e.Date.Weekday().String()
}

// WorkedTime renders the duration as "8h 30m" for display, empty when
// the duration is not computable.
func (e WorkHoursEntry) WorkedTime() string {
	if !e.HasDuration() {
		return ""
	}
	d := e.Duration()
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

// Week returns the Monday-Sunday window the entry's date falls in.
func (e WorkHoursEntry) Week() WeekWindow {
	return WeekWindowFor(e.Date, 0)
}

// EmployeeStatistics is the cumulative, all-time projection for one
// employee. An employee with no entries yields the zero-valued record.
type EmployeeStatistics struct {
	EmployeeID         int64   `json:"employeeId"`
	TotalHours         float64 `json:"totalHours"`
	WeeksCount         int     `json:"weeksCount"`
	AverageWeeklyHours float64 `json:"averageWeeklyHours"`
}

// WeeklyStatistics aggregates one employee's entries inside a single
// week window.
type WeeklyStatistics struct {
	EmployeeID   int64      `json:"employeeId"`
	Window       WeekWindow `json:"window"`
	TotalHours   float64    `json:"totalHours"`
	DaysWorked   int        `json:"daysWorked"`
	DailyAverage float64    `json:"dailyAverage"`
}

// PayoutRun records one invocation of the external Payroll Engine for a
// closed previous-month period. Runs are an audit trail; they do not
// deduplicate scheduler triggers.
type PayoutRun struct {
	ID               string          `json:"id"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	Status           PayoutRunStatus `json:"status"`
	Error            string          `json:"error,omitempty"`
	TriggeredAt      time.Time       `json:"triggeredAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
	NotifyStatus     NotifyStatus    `json:"notifyStatus"`
	NotifyRetryCount int             `json:"notifyRetryCount"`
}
