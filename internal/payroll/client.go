package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Engine is the boundary to the external Payroll Engine. The engine
// computes salaries for a closed date period; this core never inspects
// what it produces. Calls for the same period must be tolerated by the
// engine, since the scheduler does not deduplicate triggers.
type Engine interface {
	GeneratePayouts(ctx context.Context, periodStart, periodEnd time.Time) error
}

type generatePayoutsRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

// HTTPEngine invokes the Payroll Engine over HTTP. A circuit breaker
// keeps a struggling engine from being hammered by repeated triggers.
type HTTPEngine struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker
}

// NewHTTPEngine builds an engine client for the given base URL.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	settings := gobreaker.Settings{
		Name:        "Payroll-Engine",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}

	return &HTTPEngine{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// GeneratePayouts asks the engine to compute payouts for the period.
func (e *HTTPEngine) GeneratePayouts(ctx context.Context, periodStart, periodEnd time.Time) error {
	_, err := e.cb.Execute(func() (interface{}, error) {
		return nil, e.post(ctx, periodStart, periodEnd)
	})
	if errors.Is(err, gobreaker.ErrOpenState) {
		log.Ctx(ctx).Warn().Msg("Circuit breaker is OPEN; skipping Payroll Engine call")
	}
	return err
}

func (e *HTTPEngine) post(ctx context.Context, periodStart, periodEnd time.Time) error {
	payload, err := json.Marshal(generatePayoutsRequest{
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodEnd.Format("2006-01-02"),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payroll engine payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create payroll engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call payroll engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("payroll engine returned non-successful status code: %d", resp.StatusCode)
	}
	return nil
}
