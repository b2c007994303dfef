package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAnalysis(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.RecordAnalysis("Shortlist", 90, 2*time.Millisecond)
	m.RecordAnalysis("Reject", 10, time.Millisecond)
	m.RecordAnalysis("Reject", 0, time.Millisecond)

	if got := testutil.ToFloat64(m.analyses.WithLabelValues("Reject")); got != 2 {
		t.Fatalf("expected 2 rejects, got %v", got)
	}
	if got := testutil.ToFloat64(m.analyses.WithLabelValues("Shortlist")); got != 1 {
		t.Fatalf("expected 1 shortlist, got %v", got)
	}
	if got := testutil.CollectAndCount(m.scores); got != 1 {
		t.Fatalf("expected one score histogram, got %d", got)
	}
}

func TestRecordDocumentAndFailures(t *testing.T) {
	t.Parallel()

	m := NewManager()
	m.RecordDocument("application/pdf")
	m.RecordDocument("application/pdf")
	m.RecordExtractionFailure()

	if got := testutil.ToFloat64(m.documents.WithLabelValues("application/pdf")); got != 2 {
		t.Fatalf("expected 2 pdf documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.extractionFailures); got != 1 {
		t.Fatalf("expected 1 extraction failure, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewManager(WithRegistry(registry))
	if m.Registry() != registry {
		t.Fatal("expected the provided registry to be used")
	}

	m.RecordHTTPRequest("analyze", http.MethodPost, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `resume_screener_http_requests_total{endpoint="analyze",method="POST",status_code="200"} 1`) {
		t.Fatalf("expected request counter in output:\n%s", body)
	}
}
