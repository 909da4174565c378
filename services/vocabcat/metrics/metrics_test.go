package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSessionStartedIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(sessionsStartedTotal)
	RecordSessionStarted()
	after := testutil.ToFloat64(sessionsStartedTotal)
	if after != before+1 {
		t.Fatalf("sessions_started_total = %v, want %v", after, before+1)
	}
}

func TestRecordSessionTerminatedLabelsByReason(t *testing.T) {
	before := testutil.ToFloat64(sessionsTerminatedTotal.WithLabelValues("hard_cap"))
	RecordSessionTerminated("hard_cap", 40, 120.5)
	after := testutil.ToFloat64(sessionsTerminatedTotal.WithLabelValues("hard_cap"))
	if after != before+1 {
		t.Fatalf("sessions_terminated_total{hard_cap} = %v, want %v", after, before+1)
	}
}

func TestRecordResponseRejectedLabelsByKind(t *testing.T) {
	before := testutil.ToFloat64(responsesRejectedTotal.WithLabelValues("bad_request"))
	RecordResponseRejected("bad_request")
	after := testutil.ToFloat64(responsesRejectedTotal.WithLabelValues("bad_request"))
	if after != before+1 {
		t.Fatalf("responses_rejected_total{bad_request} = %v, want %v", after, before+1)
	}
}

func TestSetActiveSessionsSetsGauge(t *testing.T) {
	SetActiveSessions(7)
	if got := testutil.ToFloat64(activeSessions); got != 7 {
		t.Fatalf("active_sessions = %v, want 7", got)
	}
}

func TestSetBankSizeSetsGauge(t *testing.T) {
	SetBankSize(1500)
	if got := testutil.ToFloat64(bankSize); got != 1500 {
		t.Fatalf("bank_size = %v, want 1500", got)
	}
}

func TestTracerSpanNamesAreStable(t *testing.T) {
	names := []string{
		SpanSelectNextItem, SpanUpdatePosterior, SpanTerminateSession,
		SpanLearnNextCard, SpanLearnSM2Update,
	}
	for _, n := range names {
		if n == "" {
			t.Fatal("span name constant must not be empty")
		}
	}
}
