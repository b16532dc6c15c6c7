package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	triageStartedTotal   atomic.Uint64
	triageCompletedTotal atomic.Uint64
	triageFallbackTotal  atomic.Uint64
	blockedAttemptsTotal atomic.Uint64

	triageDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncTriageStarted increments the started counter.
func IncTriageStarted() {
	triageStartedTotal.Add(1)
}

// IncTriageCompleted increments the completed counter.
func IncTriageCompleted() {
	triageCompletedTotal.Add(1)
}

// IncTriageFallback increments the counter of analyses resolved by the
// deterministic heuristic instead of a provider.
func IncTriageFallback() {
	triageFallbackTotal.Add(1)
}

// IncBlockedAttempt increments the blocked-attempt counter.
func IncBlockedAttempt() {
	blockedAttemptsTotal.Add(1)
}

// ObserveTriageDurationMs records a full-ladder analysis duration in milliseconds.
func ObserveTriageDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	triageDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "triage_started_total", "Total symptom analyses started", triageStartedTotal.Load())
	writeCounter(&buf, "triage_completed_total", "Total symptom analyses completed", triageCompletedTotal.Load())
	writeCounter(&buf, "triage_fallback_total", "Total analyses resolved by the deterministic heuristic", triageFallbackTotal.Load())
	writeCounter(&buf, "blocked_attempts_total", "Total blocked or unparseable provider attempts recorded", blockedAttemptsTotal.Load())
	writeHistogram(&buf, "triage_duration_ms", "Symptom analysis duration in milliseconds", triageDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
