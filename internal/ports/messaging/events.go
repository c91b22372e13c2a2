package messaging

import "time"

// PayoutCompletedEvent is the JSON payload published to the notify
// queue after a payout run finishes successfully.
type PayoutCompletedEvent struct {
	PayoutRunID string    `json:"payoutRunId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	OccurredAt  time.Time `json:"occurredAt"`
}
