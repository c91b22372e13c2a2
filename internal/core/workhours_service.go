package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"payroll.service/internal/core/model"
	"payroll.service/internal/ports/repository"
)

// WorkHoursService enforces the entry approval workflow on top of the
// store: entries are created unapproved, any edit drops an approval,
// and approval itself is an explicit administrative action.
type WorkHoursService struct {
	repo repository.WorkHoursRepository
}

// NewWorkHoursService wires the workflow over a work-hours store.
func NewWorkHoursService(repo repository.WorkHoursRepository) *WorkHoursService {
	return &WorkHoursService{repo: repo}
}

// CreateEntryInput carries the fields for a new work session.
type CreateEntryInput struct {
	EmployeeID int64
	Date       time.Time
	WorkTypeID int64
	ProjectID  *int64
	StartTime  *time.Time
	EndTime    *time.Time
	Comment    string
}

// EditEntryInput carries the mutable fields of an existing entry.
// The project association is not editable through this path.
type EditEntryInput struct {
	Date       time.Time
	WorkTypeID int64
	StartTime  *time.Time
	EndTime    *time.Time
	Comment    string
}

// Create validates the input and inserts a new unapproved entry.
func (s *WorkHoursService) Create(ctx context.Context, in CreateEntryInput) (int64, error) {
	if in.EmployeeID <= 0 {
		return 0, model.NewValidationError("employeeId", "required")
	}
	if err := validateEntryFields(in.Date, in.WorkTypeID, in.StartTime, in.EndTime); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, model.WorkHoursEntry{
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		WorkTypeID: in.WorkTypeID,
		ProjectID:  in.ProjectID,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Comment:    in.Comment,
	})
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().Int64("entry_id", id).Int64("employee_id", in.EmployeeID).Msg("Work hours entry created")
	return id, nil
}

// Edit validates the input and overwrites the entry's mutable fields.
// The store resets the approval flag regardless of its prior state, so
// a changed entry always re-enters review.
func (s *WorkHoursService) Edit(ctx context.Context, id int64, in EditEntryInput) error {
	if err := validateEntryFields(in.Date, in.WorkTypeID, in.StartTime, in.EndTime); err != nil {
		return err
	}
	if err := s.repo.Edit(ctx, id, in.Date, in.WorkTypeID, in.StartTime, in.EndTime, in.Comment); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("entry_id", id).Msg("Work hours entry edited, approval reset")
	return nil
}

// Approve marks an entry payroll-ready. Approving an already approved
// entry succeeds without effect.
func (s *WorkHoursService) Approve(ctx context.Context, id int64) error {
	if err := s.repo.Approve(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("entry_id", id).Msg("Work hours entry approved")
	return nil
}

// Delete permanently removes an entry in either approval state.
func (s *WorkHoursService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Int64("entry_id", id).Msg("Work hours entry deleted")
	return nil
}

// Get fetches one entry by id.
func (s *WorkHoursService) Get(ctx context.Context, id int64) (*model.WorkHoursEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByEmployee returns an employee's full history.
func (s *WorkHoursService) ListByEmployee(ctx context.Context, employeeID int64) ([]model.WorkHoursEntry, error) {
	return s.repo.ListByEmployee(ctx, employeeID)
}

// ListAll returns every entry in the system.
func (s *WorkHoursService) ListAll(ctx context.Context) ([]model.WorkHoursEntry, error) {
	return s.repo.ListAll(ctx)
}

// ListByEmployeeAndDateRange returns one employee's entries in a closed
// date range.
func (s *WorkHoursService) ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]model.WorkHoursEntry, error) {
	return s.repo.ListByEmployeeAndDateRange(ctx, employeeID, from, to)
}

// ListByDateRange returns all entries in a closed date range, used for
// organization-wide payroll-period reports.
func (s *WorkHoursService) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.WorkHoursEntry, error) {
	return s.repo.ListByDateRange(ctx, from, to)
}

// validateEntryFields rejects malformed input before it reaches the
// store: the work type is required, the times come in pairs, and a
// session cannot end before it starts.
func validateEntryFields(date time.Time, workTypeID int64, start, end *time.Time) error {
	if date.IsZero() {
		return model.NewValidationError("date", "required")
	}
	if workTypeID <= 0 {
		return model.NewValidationError("workTypeId", "required")
	}
	if (start == nil) != (end == nil) {
		return model.NewValidationError("startTime", "start and end time must both be set or both be empty")
	}
	if start != nil && end.Before(*start) {
		return model.NewValidationError("endTime", "end time before start time")
	}
	return nil
}
