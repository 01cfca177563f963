// Package delivery runs one notification: collect recent commits, send
// them, and report the outcome.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/commit-notifier/internal/changelog"
	"github.com/sungwon/commit-notifier/internal/logger"
	"github.com/sungwon/commit-notifier/internal/metrics"
	"github.com/sungwon/commit-notifier/internal/wecom"
)

// Exit codes returned by ExitCode.
const (
	ExitOK             = 0
	ExitDeliveryFailed = 1
	ExitCollectFailed  = 2
)

// Collector supplies recent change records, newest first.
type Collector interface {
	Recent(ctx context.Context, count int) ([]changelog.ChangeRecord, error)
}

// Request contains the parameters of one notification run.
type Request struct {
	Count     int
	Label     string
	Recipient wecom.Recipient
}

// Service wires a Collector to a wecom.Sender.
type Service struct {
	collector Collector
	sender    wecom.Sender
	log       zerolog.Logger
}

// NewService creates a Service.
func NewService(collector Collector, sender wecom.Sender, log zerolog.Logger) *Service {
	return &Service{
		collector: collector,
		sender:    sender,
		log:       log,
	}
}

// Run collects records and sends them. The returned error is non-nil only
// when the records could not be collected; delivery failures are reported
// in the result.
func (s *Service) Run(ctx context.Context, req *Request) (*wecom.DeliveryResult, error) {
	start := time.Now()
	defer func() { metrics.DeliveryDuration.Observe(time.Since(start).Seconds()) }()

	if logger.CorrelationIDFromContext(ctx) == "" {
		ctx = logger.WithCorrelationID(ctx, logger.NewCorrelationID())
	}
	log := s.log.With().
		Str("correlation_id", logger.CorrelationIDFromContext(ctx)).
		Str("label", req.Label).
		Logger()

	records, err := s.collector.Recent(ctx, req.Count)
	if err != nil {
		log.Error().Err(err).Msg("failed to collect commits")
		metrics.DeliveriesTotal.WithLabelValues("failed", "collect").Inc()
		return nil, fmt.Errorf("collect commits: %w", err)
	}
	metrics.RecordsCollected.Set(float64(len(records)))

	result := s.sender.Send(ctx, records, req.Recipient, req.Label)

	kind := "none"
	if result.Err != nil {
		kind = string(result.Err.Kind)
	}
	metrics.DeliveriesTotal.WithLabelValues(string(result.Status), kind).Inc()

	switch result.Status {
	case wecom.StatusSent:
		log.Info().Int("records", len(records)).Msg("commit notification sent")
	case wecom.StatusSkipped:
		log.Info().Msg("no commits found, nothing to send")
	default:
		ev := log.Error().Str("kind", kind)
		if result.Err != nil {
			ev = ev.Err(result.Err)
			if result.Err.Code != 0 {
				ev = ev.Int("errcode", result.Err.Code)
			}
		}
		ev.Msg("commit notification failed")
	}

	return result, nil
}

// ExitCode maps the outcome of Run to a process exit code.
func ExitCode(result *wecom.DeliveryResult, err error) int {
	switch {
	case err != nil:
		return ExitCollectFailed
	case result == nil:
		return ExitDeliveryFailed
	case result.Succeeded(), result.Skipped():
		return ExitOK
	default:
		return ExitDeliveryFailed
	}
}
