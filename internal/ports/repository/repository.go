package repository

import (
	"context"
	"time"

	"payroll.service/internal/core/model"
)

// WorkHoursRepository is the persistence contract for time-entry records.
// All list operations return ordered slices, empty when nothing matches.
type WorkHoursRepository interface {
	Create(ctx context.Context, entry model.WorkHoursEntry) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.WorkHoursEntry, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]model.WorkHoursEntry, error)
	ListAll(ctx context.Context) ([]model.WorkHoursEntry, error)
	ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]model.WorkHoursEntry, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.WorkHoursEntry, error)
	// Edit overwrites the mutable fields and unconditionally resets the
	// approved flag.
	Edit(ctx context.Context, id int64, date time.Time, workTypeID int64, start, end *time.Time, comment string) error
	Delete(ctx context.Context, id int64) error
	// Approve marks the entry payroll-ready. Approving an already
	// approved entry is a no-op.
	Approve(ctx context.Context, id int64) error
	// EmployeeStatistics aggregates all of an employee's entries. An
	// employee with no entries yields a zero-valued record, not an error.
	EmployeeStatistics(ctx context.Context, employeeID int64) (*model.EmployeeStatistics, error)
}

// PayoutRunRepository stores the audit trail of Payroll Engine invocations.
type PayoutRunRepository interface {
	Record(ctx context.Context, run model.PayoutRun) error
	GetByID(ctx context.Context, id string) (*model.PayoutRun, error)
	UpdateNotifyStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error
}
