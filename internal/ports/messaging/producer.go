package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes domain events through a MessageSender.
type Producer struct {
	sender         MessageSender
	notifyQueueURL string
}

func NewProducer(sender MessageSender, notifyQueueURL string) *Producer {
	return &Producer{sender: sender, notifyQueueURL: notifyQueueURL}
}

// NewSQSProducer builds a Producer backed by AWS SQS.
func NewSQSProducer(client SQSClient, notifyQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, notifyQueueURL)
}

// PublishPayoutCompleted announces a finished payout run to the notify
// queue.
func (p *Producer) PublishPayoutCompleted(ctx context.Context, event PayoutCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payout event: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.String("app.payout_run_id", event.PayoutRunID))
	}

	if err := p.sender.SendMessage(ctx, p.notifyQueueURL, body); err != nil {
		return fmt.Errorf("failed to send payout event: %w", err)
	}
	return nil
}
