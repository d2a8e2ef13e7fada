package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStorefront(reg)
	metrics.IncCartMutation("add")
	metrics.IncCartMutation("add")
	metrics.IncCheckoutAttempt("rejected")
	metrics.IncStorageFailure("durable", "set")
	metrics.IncOrderCommitted()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_mutations_total", "op", "add"); err != nil {
		t.Fatalf("fetch cart mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected cart mutations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "checkout_attempts_total", "outcome", "rejected"); err != nil {
		t.Fatalf("fetch checkout attempts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected checkout attempts=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "storage_failures_total", "lifetime", "durable"); err != nil {
		t.Fatalf("fetch storage failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected storage failures=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "orders_committed_total")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("orders_committed_total not exported")
	}
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected orders committed=1, got %f", got)
	}
}

func TestStorefrontMetricsNilSafe(t *testing.T) {
	var metrics *Storefront
	metrics.IncCartMutation("add")
	metrics.IncOrderCommitted()

	unregistered := NewStorefront(nil)
	unregistered.IncStorageFailure("", "")
	unregistered.IncCheckoutAttempt("committed")
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
