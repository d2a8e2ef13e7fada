package shopper

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/checkout"
	"github.com/angelmondragon/storefront/internal/orders"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

type Options struct {
	Logger           *logger.Logger
	Metrics          *metrics.Storefront
	StrictValidation bool
}

// Session wires one shopper's cart, checkout and order lifecycle over a
// shared storage adapter. A checkout orchestrator is single use; Confirm
// starts a fresh one so the shopper can keep buying.
type Session struct {
	mu       sync.Mutex
	kv       *storage.Adapter
	opts     Options
	cart     *cart.Store
	orders   *orders.Lifecycle
	checkout *checkout.Orchestrator
}

func New(ctx context.Context, kv *storage.Adapter, opts Options) *Session {
	cartStore := cart.New(ctx, kv, cart.Options{Logger: opts.Logger.Named("cart"), Metrics: opts.Metrics})
	lifecycle := orders.NewLifecycle(kv, cartStore, orders.Options{Logger: opts.Logger.Named("orders"), Metrics: opts.Metrics})
	s := &Session{kv: kv, opts: opts, cart: cartStore, orders: lifecycle}
	s.checkout = s.newCheckout(ctx)
	return s
}

func (s *Session) Cart() *cart.Store { return s.cart }

func (s *Session) Orders() *orders.Lifecycle { return s.orders }

// Checkout returns the active orchestrator.
func (s *Session) Checkout() *checkout.Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout
}

// Confirm activates the confirmation view and, once the order is shown,
// replaces a committed orchestrator with a new one seeded from the stored
// profile.
func (s *Session) Confirm(ctx context.Context) (*orders.Order, error) {
	order, err := s.orders.ActivateConfirmation(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.checkout.State() == checkout.StateCommitted {
		s.checkout = s.newCheckout(ctx)
	}
	s.mu.Unlock()
	return order, nil
}

func (s *Session) newCheckout(ctx context.Context) *checkout.Orchestrator {
	return checkout.New(ctx, s.kv, s.cart, s.orders, checkout.Options{
		Logger:           s.opts.Logger.Named("checkout"),
		Metrics:          s.opts.Metrics,
		StrictValidation: s.opts.StrictValidation,
	})
}
