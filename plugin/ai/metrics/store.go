package metrics

import (
	"math"
	"sync"
)

// Sink receives a copy of every recorded metric, e.g. for persistence.
// Enqueue must not block.
type Sink interface {
	Enqueue(m *RequestMetric)
}

// Store is the in-memory metric log shared by all requests.
type Store struct {
	mu      sync.Mutex
	metrics []*RequestMetric

	sink Sink
}

// Option configures a Store.
type Option func(*Store)

// WithSink forwards every recorded metric to sink.
func WithSink(sink Sink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements Recorder.
func (s *Store) Record(m *RequestMetric) {
	if m == nil {
		return
	}
	s.mu.Lock()
	s.metrics = append(s.metrics, m)
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Enqueue(m)
	}
}

// Summary aggregates the current log.
func (s *Store) Summary() *Summary {
	return Summarize(s.All())
}

// Recent returns the last n metrics in insertion order.
func (s *Store) Recent(n int) []*RequestMetric {
	if n <= 0 {
		return []*RequestMetric{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	start := len(s.metrics) - n
	if start < 0 {
		start = 0
	}
	out := make([]*RequestMetric, len(s.metrics)-start)
	copy(out, s.metrics[start:])
	return out
}

// Len returns the number of recorded metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.metrics)
}

// Clear empties the log. Metrics already handed to the sink are unaffected.
func (s *Store) Clear() {
	s.mu.Lock()
	s.metrics = nil
	s.mu.Unlock()
}

// All returns a copy of the log in insertion order.
func (s *Store) All() []*RequestMetric {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*RequestMetric, len(s.metrics))
	copy(out, s.metrics)
	return out
}

// Summarize aggregates metrics. An empty log yields zero values and empty maps.
func Summarize(metrics []*RequestMetric) *Summary {
	summary := &Summary{
		RequestsByComplexity:   make(map[string]int),
		RequestsByModel:        make(map[string]int),
		ClassifierDistribution: make(map[string]int),
	}
	if len(metrics) == 0 {
		return summary
	}

	var latencySum, costSum float64
	for _, m := range metrics {
		summary.RequestsByComplexity[m.Complexity.String()]++
		summary.RequestsByModel[m.ModelUsed]++
		summary.ClassifierDistribution[m.ClassifierUsed]++
		summary.TotalTokensUsed += m.TotalTokens
		latencySum += m.LatencyMs
		costSum += m.EstimatedCostUSD
	}

	n := float64(len(metrics))
	summary.TotalRequests = len(metrics)
	summary.AvgLatencyMs = round(latencySum/n, 2)
	summary.TotalEstimatedCostUSD = round(costSum, 6)
	summary.AvgCostPerRequestUSD = round(costSum/n, 6)
	return summary
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

var _ Recorder = (*Store)(nil)
