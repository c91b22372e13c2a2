package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll.service/internal/core/model"
	"payroll.service/internal/ports/messaging"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type enginePeriod struct {
	start time.Time
	end   time.Time
}

type fakeEngine struct {
	mu    sync.Mutex
	err   error
	calls []enginePeriod
}

func (e *fakeEngine) GeneratePayouts(_ context.Context, periodStart, periodEnd time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, enginePeriod{start: periodStart, end: periodEnd})
	return e.err
}

type fakeRunRepo struct {
	mu        sync.Mutex
	recordErr error
	recorded  []model.PayoutRun
}

func (r *fakeRunRepo) Record(_ context.Context, run model.PayoutRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, run)
	return r.recordErr
}

func (r *fakeRunRepo) GetByID(_ context.Context, id string) (*model.PayoutRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.recorded {
		if run.ID == id {
			return &run, nil
		}
	}
	return nil, model.ErrNotFound
}

func (r *fakeRunRepo) UpdateNotifyStatus(_ context.Context, _ string, _ model.NotifyStatus, _ int) error {
	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	err    error
	events []messaging.PayoutCompletedEvent
}

func (p *fakeProducer) PublishPayoutCompleted(_ context.Context, event messaging.PayoutCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func TestRunOnceTriggersPreviousMonth(t *testing.T) {
	engine := &fakeEngine{}
	runs := &fakeRunRepo{}
	producer := &fakeProducer{}
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	s := New(engine, runs, producer, fixedClock{t: now})
	s.RunOnce(context.Background())

	require.Len(t, engine.calls, 1)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), engine.calls[0].start)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), engine.calls[0].end)

	require.Len(t, runs.recorded, 1)
	run := runs.recorded[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.PayoutRunCompleted, run.Status)
	assert.Equal(t, model.NotifyPending, run.NotifyStatus)
	require.NotNil(t, run.CompletedAt)

	require.Len(t, producer.events, 1)
	assert.Equal(t, run.ID, producer.events[0].PayoutRunID)
	assert.Equal(t, engine.calls[0].start, producer.events[0].PeriodStart)
	assert.Equal(t, engine.calls[0].end, producer.events[0].PeriodEnd)
}

func TestRunOnceEngineFailureIsContained(t *testing.T) {
	engine := &fakeEngine{err: errors.New("engine unavailable")}
	runs := &fakeRunRepo{}
	producer := &fakeProducer{}
	now := time.Date(2024, time.March, 1, 1, 0, 0, 0, time.UTC)

	s := New(engine, runs, producer, fixedClock{t: now})
	s.RunOnce(context.Background())

	require.Len(t, runs.recorded, 1)
	run := runs.recorded[0]
	assert.Equal(t, model.PayoutRunFailed, run.Status)
	assert.Contains(t, run.Error, "engine unavailable")
	assert.Nil(t, run.CompletedAt)

	assert.Empty(t, producer.events, "failed runs must not notify accounting")
}

func TestRunOnceRecordFailureStillPublishes(t *testing.T) {
	engine := &fakeEngine{}
	runs := &fakeRunRepo{recordErr: errors.New("db down")}
	producer := &fakeProducer{}
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	s := New(engine, runs, producer, fixedClock{t: now})
	s.RunOnce(context.Background())

	assert.Len(t, producer.events, 1, "the audit record is best-effort")
}

func TestRunOncePublishFailureIsContained(t *testing.T) {
	engine := &fakeEngine{}
	runs := &fakeRunRepo{}
	producer := &fakeProducer{err: errors.New("queue unavailable")}
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	s := New(engine, runs, producer, fixedClock{t: now})
	s.RunOnce(context.Background())

	require.Len(t, runs.recorded, 1)
	assert.Equal(t, model.PayoutRunCompleted, runs.recorded[0].Status)
}

func TestStartRunsImmediately(t *testing.T) {
	engine := &fakeEngine{}
	runs := &fakeRunRepo{}
	producer := &fakeProducer{}
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

	s := New(engine, runs, producer, fixedClock{t: now})
	s.Start()
	s.Stop()

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Len(t, engine.calls, 1, "a startup run covers a tick missed while the process was down")
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(&fakeEngine{}, &fakeRunRepo{}, &fakeProducer{}, fixedClock{t: time.Now()})
	s.Start()
	s.Stop()
	s.Stop()
}

func TestNextTrigger(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "mid-month waits for next first",
			now:  time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.July, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "first of month before the tick",
			now:  time.Date(2024, time.July, 1, 0, 30, 0, 0, time.UTC),
			want: time.Date(2024, time.July, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at the tick rolls to next month",
			now:  time.Date(2024, time.July, 1, 1, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.August, 1, 1, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls into next year",
			now:  time.Date(2024, time.December, 20, 12, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextTrigger(tt.now))
		})
	}
}
