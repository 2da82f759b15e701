package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultFull     = "full"
	ResultEmpty    = "empty"
	ResultInvalid  = "invalid"
	ResultFault    = "fault"
	ResultRejected = "rejected"

	ResultHandled = "handled"
	ResultUnknown = "unknown"
	ResultError   = "error"

	ResultQueued  = "queued"
	ResultDropped = "dropped"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmdfifo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	fifoWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "fifo",
			Name:      "writes_total",
			Help:      "Fifo write attempts by result.",
		},
		[]string{"node", "result"},
	)
	fifoReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "fifo",
			Name:      "reads_total",
			Help:      "Fifo read attempts by result.",
		},
		[]string{"node", "result"},
	)
	fifoLifecycle = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "fifo",
			Name:      "lifecycle_total",
			Help:      "Fifo init/teardown transitions by result.",
		},
		[]string{"node", "op", "result"},
	)
	fifoDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cmdfifo",
			Subsystem: "fifo",
			Name:      "depth",
			Help:      "Queued messages at the last sample.",
		},
		[]string{"node"},
	)
	dispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Dequeued messages by dispatch result.",
		},
		[]string{"node", "result"},
	)
	interrupts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdfifo",
			Subsystem: "producer",
			Name:      "interrupts_total",
			Help:      "Simulated interrupts by enqueue result.",
		},
		[]string{"node", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			fifoWrites, fifoReads, fifoLifecycle, fifoDepth,
			dispatched, interrupts,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func SetFifoDepth(node string, depth int) {
	RegisterMetrics()
	fifoDepth.WithLabelValues(node).Set(float64(depth))
}

func RecordDispatch(node, result string) {
	RegisterMetrics()
	dispatched.WithLabelValues(node, result).Inc()
}

func RecordInterrupt(node string, queued bool) {
	RegisterMetrics()
	result := ResultDropped
	if queued {
		result = ResultQueued
	}
	interrupts.WithLabelValues(node, result).Inc()
}

// FifoRecorder implements fifo.Recorder with label children resolved up
// front, so recording on the write path is a single atomic add.
type FifoRecorder struct {
	node   string
	writes map[string]prometheus.Counter
	reads  map[string]prometheus.Counter
}

var _ fifo.Recorder = (*FifoRecorder)(nil)

func NewFifoRecorder(node string) *FifoRecorder {
	RegisterMetrics()
	r := &FifoRecorder{
		node:   node,
		writes: make(map[string]prometheus.Counter),
		reads:  make(map[string]prometheus.Counter),
	}
	for _, result := range []string{ResultOK, ResultFull, ResultInvalid, ResultFault} {
		r.writes[result] = fifoWrites.WithLabelValues(node, result)
	}
	for _, result := range []string{ResultOK, ResultEmpty, ResultInvalid, ResultFault} {
		r.reads[result] = fifoReads.WithLabelValues(node, result)
	}
	return r
}

func (r *FifoRecorder) RecordWrite(err error) {
	r.writes[Classify(err)].Inc()
}

func (r *FifoRecorder) RecordRead(err error) {
	r.reads[Classify(err)].Inc()
}

func (r *FifoRecorder) RecordLifecycle(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultRejected
	}
	fifoLifecycle.WithLabelValues(r.node, op, result).Inc()
}

// Classify maps a fifo error to its metric result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, fifo.ErrQueueFull):
		return ResultFull
	case errors.Is(err, fifo.ErrQueueEmpty):
		return ResultEmpty
	case fifo.IsUnusable(err):
		return ResultInvalid
	default:
		return ResultFault
	}
}
