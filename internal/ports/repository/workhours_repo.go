package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"payroll.service/internal/core/model"
)

// PostgresWorkHoursRepository is the WorkHoursRepository implementation
// for PostgreSQL.
type PostgresWorkHoursRepository struct {
	DB *sql.DB
}

// NewWorkHoursRepository creates the Postgres-backed store.
func NewWorkHoursRepository(db *sql.DB) WorkHoursRepository {
	return &PostgresWorkHoursRepository{DB: db}
}

const (
	insertEntrySQL = `INSERT INTO work_hours (employee_id, work_date, work_type_id, project_id, start_time, end_time, comment, approved)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, false) RETURNING id`

	selectEntryColumns = `id, employee_id, work_date, work_type_id, project_id, start_time, end_time, comment, approved`

	// Per-employee history is newest-first; range queries used for
	// timesheets and payroll reports are oldest-first, matching the
	// reporting views this replaces.
	findByIDSQL = `SELECT ` + selectEntryColumns + ` FROM work_hours WHERE id = $1`

	findByEmployeeSQL = `SELECT ` + selectEntryColumns + ` FROM work_hours
	          WHERE employee_id = $1 ORDER BY work_date DESC, id DESC`

	findAllSQL = `SELECT ` + selectEntryColumns + ` FROM work_hours ORDER BY work_date DESC, id DESC`

	findByEmployeeAndRangeSQL = `SELECT ` + selectEntryColumns + ` FROM work_hours
	          WHERE employee_id = $1 AND work_date >= $2 AND work_date <= $3 ORDER BY work_date ASC, id ASC`

	findByRangeSQL = `SELECT ` + selectEntryColumns + ` FROM work_hours
	          WHERE work_date >= $1 AND work_date <= $2 ORDER BY work_date ASC, id ASC`

	// Editing resets the approval flag no matter what state the entry
	// was in.
	editEntrySQL = `UPDATE work_hours
	          SET work_date = $1, work_type_id = $2, start_time = $3, end_time = $4, comment = $5, approved = false
	          WHERE id = $6`

	deleteEntrySQL = `DELETE FROM work_hours WHERE id = $1`

	approveEntrySQL = `UPDATE work_hours SET approved = true WHERE id = $1`

	// Entries missing either time contribute zero hours but still count
	// toward active weeks.
	employeeStatsSQL = `SELECT
	          COALESCE(SUM(CASE WHEN start_time IS NOT NULL AND end_time IS NOT NULL
	                            THEN EXTRACT(EPOCH FROM (end_time - start_time)) / 3600.0
	                            ELSE 0 END), 0) AS total_hours,
	          COUNT(DISTINCT date_trunc('week', work_date)) AS weeks_count
	          FROM work_hours WHERE employee_id = $1`
)

// Create inserts a new entry with approved = false and returns its id.
// A missing employee, work type or project surfaces as ErrNotFound.
func (r *PostgresWorkHoursRepository) Create(ctx context.Context, entry model.WorkHoursEntry) (int64, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int64("app.employee_id", entry.EmployeeID))

	var id int64
	err := r.DB.QueryRowContext(ctx, insertEntrySQL,
		entry.EmployeeID, entry.Date, entry.WorkTypeID, entry.ProjectID,
		nullableTime(entry.StartTime), nullableTime(entry.EndTime), nullableString(entry.Comment),
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("referenced entity missing: %w", model.ErrNotFound)
		}
		return 0, fmt.Errorf("inserting work hours entry: %w", err)
	}
	return id, nil
}

// GetByID fetches a single entry.
func (r *PostgresWorkHoursRepository) GetByID(ctx context.Context, id int64) (*model.WorkHoursEntry, error) {
	row := r.DB.QueryRowContext(ctx, findByIDSQL, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching work hours entry %d: %w", id, err)
	}
	return entry, nil
}

// ListByEmployee returns the full history for one employee, newest first.
func (r *PostgresWorkHoursRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]model.WorkHoursEntry, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))
	return r.queryEntries(ctx, findByEmployeeSQL, employeeID)
}

// ListAll returns every entry in the system, newest first.
func (r *PostgresWorkHoursRepository) ListAll(ctx context.Context) ([]model.WorkHoursEntry, error) {
	return r.queryEntries(ctx, findAllSQL)
}

// ListByEmployeeAndDateRange returns one employee's entries inside the
// closed date range, oldest first.
func (r *PostgresWorkHoursRepository) ListByEmployeeAndDateRange(ctx context.Context, employeeID int64, from, to time.Time) ([]model.WorkHoursEntry, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))
	return r.queryEntries(ctx, findByEmployeeAndRangeSQL, employeeID, from, to)
}

// ListByDateRange returns all entries inside the closed date range,
// oldest first. Used for organization-wide payroll-period reporting.
func (r *PostgresWorkHoursRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.WorkHoursEntry, error) {
	return r.queryEntries(ctx, findByRangeSQL, from, to)
}

// Edit overwrites the mutable fields and forces approved back to false.
func (r *PostgresWorkHoursRepository) Edit(ctx context.Context, id int64, date time.Time, workTypeID int64, start, end *time.Time, comment string) error {
	res, err := r.DB.ExecContext(ctx, editEntrySQL,
		date, workTypeID, nullableTime(start), nullableTime(end), nullableString(comment), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("referenced entity missing: %w", model.ErrNotFound)
		}
		return fmt.Errorf("editing work hours entry %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// Delete permanently removes the entry. Approved entries are deleted
// without protection.
func (r *PostgresWorkHoursRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, deleteEntrySQL, id)
	if err != nil {
		return fmt.Errorf("deleting work hours entry %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// Approve marks the entry approved. Re-approving is a no-op.
func (r *PostgresWorkHoursRepository) Approve(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, approveEntrySQL, id)
	if err != nil {
		return fmt.Errorf("approving work hours entry %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// EmployeeStatistics aggregates every entry for an employee. The query
// always yields a row, so an unknown employee produces the zero record.
func (r *PostgresWorkHoursRepository) EmployeeStatistics(ctx context.Context, employeeID int64) (*model.EmployeeStatistics, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))

	stats := &model.EmployeeStatistics{EmployeeID: employeeID}
	err := r.DB.QueryRowContext(ctx, employeeStatsSQL, employeeID).Scan(&stats.TotalHours, &stats.WeeksCount)
	if err != nil {
		return nil, fmt.Errorf("aggregating statistics for employee %d: %w", employeeID, err)
	}
	return stats, nil
}

func (r *PostgresWorkHoursRepository) queryEntries(ctx context.Context, query string, args ...any) ([]model.WorkHoursEntry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying work hours: %w", err)
	}
	defer rows.Close()

	entries := make([]model.WorkHoursEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work hours row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work hours rows: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*model.WorkHoursEntry, error) {
	var (
		entry      model.WorkHoursEntry
		projectID  sql.NullInt64
		start, end sql.NullTime
		comment    sql.NullString
	)
	err := row.Scan(&entry.ID, &entry.EmployeeID, &entry.Date, &entry.WorkTypeID,
		&projectID, &start, &end, &comment, &entry.Approved)
	if err != nil {
		return nil, err
	}
	if projectID.Valid {
		entry.ProjectID = &projectID.Int64
	}
	if start.Valid {
		t := start.Time
		entry.StartTime = &t
	}
	if end.Valid {
		t := end.Time
		entry.EndTime = &t
	}
	entry.Comment = comment.String
	return &entry, nil
}

func requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows for entry %d: %w", id, err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
