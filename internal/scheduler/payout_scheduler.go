package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"payroll.service/internal/core"
	"payroll.service/internal/core/model"
	"payroll.service/internal/payroll"
	"payroll.service/internal/ports/messaging"
	"payroll.service/internal/ports/repository"
)

// PayoutScheduler drives the external Payroll Engine: once immediately
// when the process starts, then at 01:00 on the first day of every
// month, it computes the previous-month period and triggers payout
// generation. A failed invocation is logged and dropped; it is retried
// only by the next scheduled tick or a process restart. Startup and
// scheduled triggers are deliberately not deduplicated, so the engine
// must tolerate repeat calls for the same period.
type PayoutScheduler struct {
	engine   payroll.Engine
	runs     repository.PayoutRunRepository
	producer messaging.QueueProducer
	clock    core.Clock

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New builds a scheduler over the engine boundary, the payout run
// audit store and the notify event producer.
func New(engine payroll.Engine, runs repository.PayoutRunRepository, producer messaging.QueueProducer, clock core.Clock) *PayoutScheduler {
	return &PayoutScheduler{
		engine:   engine,
		runs:     runs,
		producer: producer,
		clock:    clock,
		stop:     make(chan struct{}),
	}
}

// Start launches the scheduling loop in the background.
func (s *PayoutScheduler) Start() {
	s.wg.Add(1)
	go s.run()
	log.Info().Msg("Payout scheduler started")
}

// Stop shuts the loop down and waits for an in-flight run to finish.
func (s *PayoutScheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	log.Info().Msg("Payout scheduler stopped")
}

func (s *PayoutScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start so a period is not missed when the
	// process was down during the scheduled tick.
	s.RunOnce(context.Background())

	for {
		next := nextTrigger(s.clock.Now())
		timer := time.NewTimer(next.Sub(s.clock.Now()))

		select {
		case <-timer.C:
			s.RunOnce(context.Background())
		case <-s.stop:
			timer.Stop()
			return
		}
	}
}

// RunOnce performs a single payout trigger: it computes the previous
// calendar month, invokes the engine, records the outcome and, on
// success, publishes a payout-completed event. It never returns an
// error; every failure is contained here so the loop stays alive.
func (s *PayoutScheduler) RunOnce(ctx context.Context) {
	today := s.clock.Now()
	periodStart, periodEnd := model.PreviousMonth(today)

	log.Ctx(ctx).Info().
		Str("period_start", periodStart.Format("2006-01-02")).
		Str("period_end", periodEnd.Format("2006-01-02")).
		Msg("Triggering monthly payout generation")

	run := model.PayoutRun{
		ID:           uuid.NewString(),
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		Status:       model.PayoutRunCompleted,
		TriggeredAt:  today,
		NotifyStatus: model.NotifyPending,
	}

	if err := s.engine.GeneratePayouts(ctx, periodStart, periodEnd); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Payout generation failed; will retry on next scheduled tick")
		run.Status = model.PayoutRunFailed
		run.Error = err.Error()
	} else {
		completed := s.clock.Now()
		run.CompletedAt = &completed
		log.Ctx(ctx).Info().Str("payout_run_id", run.ID).Msg("Payout generation completed")
	}

	if err := s.runs.Record(ctx, run); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to record payout run")
	}

	if run.Status != model.PayoutRunCompleted {
		return
	}

	event := messaging.PayoutCompletedEvent{
		PayoutRunID: run.ID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		OccurredAt:  s.clock.Now(),
	}
	if err := s.producer.PublishPayoutCompleted(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("payout_run_id", run.ID).Msg("Failed to publish payout completed event")
	}
}

// nextTrigger returns the next 01:00 on the first day of a month
// strictly after now.
func nextTrigger(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), 1, 1, 0, 0, 0, now.Location())
	if candidate.After(now) {
		return candidate
	}
	return candidate.AddDate(0, 1, 0)
}
