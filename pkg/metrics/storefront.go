package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart, checkout and storage activity for one process.
type Storefront struct {
	cartMutations    *prometheus.CounterVec
	checkoutAttempts *prometheus.CounterVec
	storageFailures  *prometheus.CounterVec
	ordersCommitted  prometheus.Counter
}

// NewStorefront registers the storefront metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	checkoutAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout validation attempts, by outcome.",
	}, []string{"outcome"})
	storageFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_failures_total",
		Help: "Failed storage operations, by lifetime and operation.",
	}, []string{"lifetime", "op"})
	ordersCommitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_committed_total",
		Help: "Orders staged for confirmation.",
	})
	reg.MustRegister(cartMutations, checkoutAttempts, storageFailures, ordersCommitted)
	return &Storefront{
		cartMutations:    cartMutations,
		checkoutAttempts: checkoutAttempts,
		storageFailures:  storageFailures,
		ordersCommitted:  ordersCommitted,
	}
}

// IncCartMutation counts one applied cart mutation.
func (s *Storefront) IncCartMutation(op string) {
	if s == nil || s.cartMutations == nil {
		return
	}
	s.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCheckoutAttempt counts one checkout attempt with its outcome.
func (s *Storefront) IncCheckoutAttempt(outcome string) {
	if s == nil || s.checkoutAttempts == nil {
		return
	}
	s.checkoutAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncStorageFailure counts a failed storage call.
func (s *Storefront) IncStorageFailure(lifetime, op string) {
	if s == nil || s.storageFailures == nil {
		return
	}
	s.storageFailures.WithLabelValues(normalizeLabel(lifetime), normalizeLabel(op)).Inc()
}

// IncOrderCommitted counts one staged order.
func (s *Storefront) IncOrderCommitted() {
	if s == nil || s.ordersCommitted == nil {
		return
	}
	s.ordersCommitted.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
