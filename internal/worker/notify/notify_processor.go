package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"payroll.service/internal/core"
	"payroll.service/internal/core/model"
	"payroll.service/internal/ports/messaging"
	"payroll.service/internal/ports/repository"
)

// Processor handles payout-completed events: it emails the accounting
// inbox a summary of the finished payroll run. Delivery state lives on
// the payout run record so a redelivered event is not mailed twice.
type Processor struct {
	emails    core.EmailService
	runs      repository.PayoutRunRepository
	recipient string
}

// NewProcessor wires the notification processor.
func NewProcessor(emails core.EmailService, runs repository.PayoutRunRepository, recipient string) *Processor {
	return &Processor{emails: emails, runs: runs, recipient: recipient}
}

// Process handles one message from the notify queue.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.PayoutCompletedEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payout event")
		return false, 0, err // malformed message, never retry
	}

	run, err := p.runs.GetByID(ctx, event.PayoutRunID)
	if errors.Is(err, model.ErrNotFound) {
		log.Ctx(ctx).Error().Str("payout_run_id", event.PayoutRunID).Msg("Payout run not found, dropping event")
		return false, 0, err
	}
	if err != nil {
		return true, 10, fmt.Errorf("failed to load payout run: %w", err)
	}

	if run.NotifyStatus == model.NotifyCompleted {
		log.Ctx(ctx).Info().Str("payout_run_id", run.ID).Msg("Notification already sent, skipping")
		return false, 0, nil
	}

	if err := p.emails.SendPayoutSummary(ctx, p.recipient, event.PeriodStart, event.PeriodEnd); err != nil {
		newCount := run.NotifyRetryCount + 1
		p.runs.UpdateNotifyStatus(ctx, run.ID, model.NotifyPending, newCount)
		return true, calculateBackoff(newCount), err
	}

	err = p.runs.UpdateNotifyStatus(ctx, run.ID, model.NotifyCompleted, 0)
	return false, 0, err
}

// calculateBackoff grows the retry delay exponentially, capped at one
// hour.
func calculateBackoff(retryCount int) int32 {
	backoff := int32(math.Pow(2, float64(retryCount)) * 10)
	if backoff > 3600 {
		return 3600
	}
	return backoff
}
