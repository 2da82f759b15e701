package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/danmuck/cmdfifo/internal/fifo"
	"github.com/danmuck/cmdfifo/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("node-a", "GET", "/status", 200, 12*time.Millisecond)
	RecordDispatch("node-a", ResultHandled)
	RecordInterrupt("node-a", true)
	RecordInterrupt("node-a", false)
	SetFifoDepth("node-a", 3)

	if got := testutil.ToFloat64(interrupts.WithLabelValues("node-a", ResultDropped)); got != 1 {
		t.Fatalf("dropped interrupts=%v", got)
	}
	if got := testutil.ToFloat64(fifoDepth.WithLabelValues("node-a")); got != 3 {
		t.Fatalf("depth=%v", got)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ResultOK},
		{fifo.ErrQueueFull, ResultFull},
		{fifo.ErrQueueEmpty, ResultEmpty},
		{fifo.ErrInvalidHandle, ResultInvalid},
		{fifo.ErrNotInitialized, ResultInvalid},
		{fifo.ErrInvariant, ResultFault},
		{errors.New("other"), ResultFault},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v)=%q want %q", tc.err, got, tc.want)
		}
	}
}

func TestFifoRecorderCountsOutcomes(t *testing.T) {
	testlog.Start(t)
	rec := NewFifoRecorder("node-rec")
	f := fifo.New(fifo.Options{Recorder: rec})

	h, err := f.Init()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	for i := 0; i <= fifo.Capacity; i++ {
		_ = f.Write(h, int32(i), nil)
	}
	_, _ = f.Read(fifo.NullHandle)
	_, _ = f.Init()

	if got := testutil.ToFloat64(fifoWrites.WithLabelValues("node-rec", ResultOK)); got != fifo.Capacity {
		t.Fatalf("ok writes=%v", got)
	}
	if got := testutil.ToFloat64(fifoWrites.WithLabelValues("node-rec", ResultFull)); got != 1 {
		t.Fatalf("full writes=%v", got)
	}
	if got := testutil.ToFloat64(fifoReads.WithLabelValues("node-rec", ResultInvalid)); got != 1 {
		t.Fatalf("invalid reads=%v", got)
	}
	if got := testutil.ToFloat64(fifoLifecycle.WithLabelValues("node-rec", fifo.OpInit, ResultRejected)); got != 1 {
		t.Fatalf("rejected inits=%v", got)
	}
}
