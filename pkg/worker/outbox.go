package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/pkg/messaging"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

const maxRetries = 3

// OutboxProcessor drains pending outbox events to the message broker.
// Events exhausting their retries are marked FAILED and left for inspection.
type OutboxProcessor struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	channel  string
	batch    int
	interval time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewOutboxProcessor(repo repository.OutboxRepository, broker messaging.Broker, channel string, batch int, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) *OutboxProcessor {
	if batch <= 0 {
		batch = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxProcessor{
		repo:     repo,
		broker:   broker,
		channel:  channel,
		batch:    batch,
		interval: interval,
		metrics:  m,
		logger:   logger.With().Str("component", "outbox").Logger(),
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.processBatch(ctx)
			}
		}
	}()
	p.logger.Info().Dur("interval", p.interval).Int("batch", p.batch).Msg("outbox processor started")
}

func (p *OutboxProcessor) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info().Msg("outbox processor stopped")
}

func (p *OutboxProcessor) processBatch(ctx context.Context) {
	start := time.Now()
	events, err := p.repo.GetPendingEvents(ctx, p.batch)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to fetch pending events")
		return
	}
	if len(events) == 0 {
		return
	}

	for _, event := range events {
		p.processEvent(ctx, event)
	}
	p.metrics.OutboxProcessingLatency.Observe(time.Since(start).Seconds())
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) {
	msg := messaging.Message{
		Type:    event.EventType,
		Payload: json.RawMessage(event.Payload),
	}

	if err := p.broker.Publish(ctx, p.channel, msg); err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		errMsg := err.Error()

		// Keep retrying until maxRetries is hit, then park the event.
		status := model.OutboxStatusPending
		if event.RetryCount+1 >= maxRetries {
			status = model.OutboxStatusFailed
		}
		if uerr := p.repo.UpdateStatus(ctx, event.ID, status, &errMsg); uerr != nil {
			p.logger.Error().Err(uerr).Str("event_id", event.ID.String()).Msg("failed to record event failure")
		}
		p.logger.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", event.EventType).
			Msg("failed to publish event")
		return
	}

	if err := p.repo.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil); err != nil {
		p.logger.Error().Err(err).Str("event_id", event.ID.String()).Msg("failed to mark event processed")
		return
	}
	p.metrics.OutboxEventsProcessed.Inc()
}
