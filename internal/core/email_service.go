package core

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"payroll.service/pkg/telemetry"
)

// EmailService sends the payout summary to accounting once a payroll
// run has completed.
type EmailService interface {
	SendPayoutSummary(ctx context.Context, to string, periodStart, periodEnd time.Time) error
}

// SESEmailService delivers summaries through AWS SES.
type SESEmailService struct {
	client *ses.Client
	sender string
}

func NewSESEmailService(client *ses.Client, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendPayoutSummary(ctx context.Context, to string, periodStart, periodEnd time.Time) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if runID := telemetry.GetPayoutRunIDFromContext(ctx); runID != "" {
		span.SetAttributes(attribute.String("app.payout_run_id", runID))
	}

	body := fmt.Sprintf(
		"Hello,\n\nPayroll generation for the period %s to %s has completed. The payouts are ready for review.",
		periodStart.Format("2006-01-02"), periodEnd.Format("2006-01-02"))

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Monthly Payroll Run Completed"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
