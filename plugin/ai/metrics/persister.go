package metrics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hrygo/smartrouter/plugin/ai/router"
	"github.com/hrygo/smartrouter/store"
)

// Writer is the subset of store.Store the persister needs.
type Writer interface {
	CreateRequestMetric(ctx context.Context, create *store.RequestMetric) (*store.RequestMetric, error)
	DeleteRequestMetrics(ctx context.Context, delete *store.DeleteRequestMetric) error
}

// Persister writes recorded metrics to the database in the background.
// It implements Sink; routes never wait on the database.
type Persister struct {
	writer Writer
	queue  chan *RequestMetric
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool

	dropped atomic.Int64

	batchSize       int
	flushInterval   time.Duration
	retentionPeriod time.Duration
	cleanupInterval time.Duration
}

// PersisterConfig configures the metrics persister.
type PersisterConfig struct {
	QueueSize       int           // Buffered metrics before new ones are dropped (default: 1000)
	BatchSize       int           // Flush as soon as this many metrics are pending (default: 100)
	FlushInterval   time.Duration // How often to flush pending metrics (default: 5 seconds)
	RetentionPeriod time.Duration // How long to keep metrics (default: 30 days)
	CleanupInterval time.Duration // How often to run cleanup (default: 24 hours)
}

// DefaultPersisterConfig returns default persister configuration.
func DefaultPersisterConfig() PersisterConfig {
	return PersisterConfig{
		QueueSize:       1000,
		BatchSize:       100,
		FlushInterval:   5 * time.Second,
		RetentionPeriod: 30 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
	}
}

// NewPersister creates a new metrics persister. Zero config fields take their defaults.
func NewPersister(w Writer, cfg PersisterConfig) *Persister {
	defaults := DefaultPersisterConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaults.FlushInterval
	}
	if cfg.RetentionPeriod <= 0 {
		cfg.RetentionPeriod = defaults.RetentionPeriod
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Persister{
		writer:          w,
		queue:           make(chan *RequestMetric, cfg.QueueSize),
		logger:          slog.With("component", "metrics_persister"),
		ctx:             ctx,
		cancel:          cancel,
		batchSize:       cfg.BatchSize,
		flushInterval:   cfg.FlushInterval,
		retentionPeriod: cfg.RetentionPeriod,
		cleanupInterval: cfg.CleanupInterval,
	}
}

// Start begins the background persistence and cleanup tasks.
func (p *Persister) Start() {
	p.wg.Add(2)
	go p.flushLoop()
	go p.cleanupLoop()
}

// Close stops the persister, flushing whatever is still queued.
func (p *Persister) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.cancel()
	p.wg.Wait()
}

// Enqueue implements Sink. A full queue drops the metric.
func (p *Persister) Enqueue(m *RequestMetric) {
	if m == nil || p.closed.Load() {
		return
	}
	select {
	case p.queue <- m:
	default:
		p.dropped.Add(1)
		p.logger.Warn("metrics queue full, dropping metric",
			"metric_id", m.ID,
			"queue_size", cap(p.queue),
		)
	}
}

// Dropped returns how many metrics were discarded because the queue was full.
func (p *Persister) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Persister) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]*RequestMetric, 0, p.batchSize)
	for {
		select {
		case <-p.ctx.Done():
			// Final flush before shutdown
			for {
				select {
				case m := <-p.queue:
					batch = append(batch, m)
				default:
					p.flush(context.Background(), batch)
					return
				}
			}
		case m := <-p.queue:
			batch = append(batch, m)
			if len(batch) >= p.batchSize {
				p.flush(p.ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			p.flush(p.ctx, batch)
			batch = batch[:0]
		}
	}
}

// flush writes batch row by row. Failed rows are logged and skipped.
func (p *Persister) flush(ctx context.Context, batch []*RequestMetric) {
	if len(batch) == 0 {
		return
	}
	failed := 0
	for _, m := range batch {
		if _, err := p.writer.CreateRequestMetric(ctx, ToStore(m)); err != nil {
			failed++
			p.logger.Error("failed to persist request metric",
				"metric_id", m.ID,
				"model", m.ModelUsed,
				"error", err,
			)
		}
	}
	p.logger.Debug("metrics flushed", "count", len(batch), "failed", failed)
}

func (p *Persister) cleanupLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.cleanup()
		}
	}
}

func (p *Persister) cleanup() {
	cutoff := time.Now().Add(-p.retentionPeriod)

	if err := p.writer.DeleteRequestMetrics(p.ctx, &store.DeleteRequestMetric{
		BeforeTime: &cutoff,
	}); err != nil {
		p.logger.Error("failed to cleanup old request metrics", "error", err)
		return
	}

	p.logger.Debug("metrics cleanup completed", "cutoff", cutoff)
}

// ToStore converts a metric to its persisted form.
func ToStore(m *RequestMetric) *store.RequestMetric {
	return &store.RequestMetric{
		ID:                       m.ID,
		CreatedMs:                m.Timestamp.UnixMilli(),
		QueryLength:              m.QueryLength,
		Complexity:               m.Complexity.String(),
		ClassifierUsed:           m.ClassifierUsed,
		ClassificationConfidence: m.ClassificationConfidence,
		ModelUsed:                m.ModelUsed,
		LatencyMs:                m.LatencyMs,
		PromptTokens:             m.PromptTokens,
		CompletionTokens:         m.CompletionTokens,
		TotalTokens:              m.TotalTokens,
		EstimatedCostUSD:         m.EstimatedCostUSD,
	}
}

// FromStore converts a persisted row back to a metric.
// Unknown complexity values decode as the fast tier.
func FromStore(row *store.RequestMetric) *RequestMetric {
	complexity, _ := router.ParseComplexity(row.Complexity)
	return &RequestMetric{
		ID:                       row.ID,
		Timestamp:                time.UnixMilli(row.CreatedMs).UTC(),
		QueryLength:              row.QueryLength,
		Complexity:               complexity,
		ClassifierUsed:           row.ClassifierUsed,
		ClassificationConfidence: row.ClassificationConfidence,
		ModelUsed:                row.ModelUsed,
		LatencyMs:                row.LatencyMs,
		PromptTokens:             row.PromptTokens,
		CompletionTokens:         row.CompletionTokens,
		TotalTokens:              row.TotalTokens,
		EstimatedCostUSD:         row.EstimatedCostUSD,
	}
}

var _ Sink = (*Persister)(nil)
