package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"payroll.service/internal/core/model"
)

// PostgresPayoutRunRepository stores payout run records in PostgreSQL.
type PostgresPayoutRunRepository struct {
	DB *sql.DB
}

// NewPayoutRunRepository creates the Postgres-backed payout run store.
func NewPayoutRunRepository(db *sql.DB) PayoutRunRepository {
	return &PostgresPayoutRunRepository{DB: db}
}

const (
	insertRunSQL = `INSERT INTO payout_runs (id, period_start, period_end, status, error, triggered_at, completed_at, notify_status, notify_retry_count)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	findRunSQL = `SELECT id, period_start, period_end, status, error, triggered_at, completed_at, notify_status, notify_retry_count
	          FROM payout_runs WHERE id = $1`

	updateNotifySQL = `UPDATE payout_runs SET notify_status = $1, notify_retry_count = $2 WHERE id = $3`
)

// Record writes the final state of one Payroll Engine invocation.
func (r *PostgresPayoutRunRepository) Record(ctx context.Context, run model.PayoutRun) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.payout_run_id", run.ID))

	_, err := r.DB.ExecContext(ctx, insertRunSQL,
		run.ID, run.PeriodStart, run.PeriodEnd, run.Status, nullableString(run.Error),
		run.TriggeredAt, nullableTime(run.CompletedAt), run.NotifyStatus, run.NotifyRetryCount)
	if err != nil {
		return fmt.Errorf("recording payout run %s: %w", run.ID, err)
	}
	return nil
}

// GetByID fetches one payout run record.
func (r *PostgresPayoutRunRepository) GetByID(ctx context.Context, id string) (*model.PayoutRun, error) {
	var (
		run         model.PayoutRun
		errText     sql.NullString
		completedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, findRunSQL, id).Scan(
		&run.ID, &run.PeriodStart, &run.PeriodEnd, &run.Status, &errText,
		&run.TriggeredAt, &completedAt, &run.NotifyStatus, &run.NotifyRetryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching payout run %s: %w", id, err)
	}
	run.Error = errText.String
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

// UpdateNotifyStatus records the outcome of a notification attempt.
func (r *PostgresPayoutRunRepository) UpdateNotifyStatus(ctx context.Context, id string, status model.NotifyStatus, retryCount int) error {
	res, err := r.DB.ExecContext(ctx, updateNotifySQL, status, retryCount, id)
	if err != nil {
		return fmt.Errorf("updating notify status for payout run %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows for payout run %s: %w", id, err)
	}
	if affected == 0 {
		return model.ErrNotFound
	}
	return nil
}
