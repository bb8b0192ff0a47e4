package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsIdempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()
}

func TestRecorders(t *testing.T) {
	decodedBefore := testutil.ToFloat64(recordsDecoded)
	storedBefore := testutil.ToFloat64(recordsStored)

	RecordDecoded()
	RecordStored()
	RecordRunFailure("stream")

	if got := testutil.ToFloat64(recordsDecoded); got != decodedBefore+1 {
		t.Fatalf("decoded counter: got=%v want=%v", got, decodedBefore+1)
	}
	if got := testutil.ToFloat64(recordsStored); got != storedBefore+1 {
		t.Fatalf("stored counter: got=%v want=%v", got, storedBefore+1)
	}
	if got := testutil.ToFloat64(runFailures.WithLabelValues("stream")); got < 1 {
		t.Fatalf("failure counter: got=%v", got)
	}
}
