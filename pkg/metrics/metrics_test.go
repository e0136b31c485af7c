package metrics

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)
	m.IncGrant(OutcomeSuccess)
	m.IncGrant(OutcomeAlreadyReported)
	m.IncGrant(OutcomeAlreadyReported)
	m.ObserveRedeem(OutcomeOutOfStock, 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "voucher_grants_total", "outcome", OutcomeAlreadyReported); err != nil {
		t.Fatalf("fetch grants: %v", err)
	} else if got != 2 {
		t.Fatalf("expected already_reported=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "voucher_redemptions_total", "outcome", OutcomeOutOfStock); err != nil {
		t.Fatalf("fetch redemptions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected out_of_stock=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "voucher_redeem_duration_seconds", "outcome", OutcomeOutOfStock); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRecordersAreNoOps(t *testing.T) {
	var ledger *LedgerMetrics
	ledger.IncGrant(OutcomeSuccess)
	ledger.ObserveRedeem(OutcomeSuccess, time.Second)

	NewLedgerMetrics(nil).IncGrant(OutcomeError)
	NewHTTPMetrics(nil).Observe(http.MethodGet, "/", 200, time.Millisecond)
	NewOutboxMetrics(nil).IncPublished("voucher_granted")
}

func TestHTTPMetricsUsesRouteLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/api/v1/vouchers/{voucherId}/redeem", http.StatusConflict, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "409"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected one 409, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/vouchers/{voucherId}/redeem"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.ObserveBatch("outbox-publisher", 30*time.Millisecond)
	m.IncPublished("voucher_redeemed")
	m.IncFailed("voucher_redeemed")
	m.IncDeadLettered("max_attempts")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_published_total", "event_type", "voucher_redeemed"); err != nil || got != 1 {
		t.Fatalf("expected published=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "outbox_dead_lettered_total", "reason", "max_attempts"); err != nil || got != 1 {
		t.Fatalf("expected dead lettered=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "outbox_batch_duration_seconds", "publisher", "outbox-publisher"); err != nil || got <= 0 {
		t.Fatalf("expected batch duration > 0, got %f (%v)", got, err)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestJobMetricsSplitsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewJobMetrics(reg)
	m.Observe("outbox-retention", true, 40*time.Millisecond)
	m.Observe("outbox-retention", false, 10*time.Millisecond)
	m.Observe("outbox-retention", false, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "job_runs_total", "outcome", OutcomeError); err != nil || got != 2 {
		t.Fatalf("expected two failed runs, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "job_duration_seconds", "job", "outbox-retention"); err != nil || got <= 0 {
		t.Fatalf("expected job duration > 0, got %f (%v)", got, err)
	}

	var nilMetrics *JobMetrics
	nilMetrics.Observe("noop", true, time.Second)
}
