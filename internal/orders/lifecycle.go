package orders

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/cart"
	"github.com/angelmondragon/storefront/internal/storage"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/types"
	"github.com/google/uuid"
)

// State tracks where the current order is in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateStaged    State = "staged"
	StateConfirmed State = "confirmed"
)

type kvStore interface {
	Get(ctx context.Context, lifetime storage.Lifetime, key string) (string, bool, error)
	Set(ctx context.Context, lifetime storage.Lifetime, key, value string) error
}

type cartReplacer interface {
	ReplaceAll(ctx context.Context, lines []cart.Line) error
}

type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.Storefront
	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to uuid.New.
	NewID func() uuid.UUID
}

// Lifecycle stages an order at commit and clears the cart once the
// confirmation view is activated. The steps are separate:
// abandoning between them leaves the cart intact and the order staged.
type Lifecycle struct {
	mu      sync.Mutex
	kv      kvStore
	cart    cartReplacer
	logg    *logger.Logger
	metrics *metrics.Storefront
	now     func() time.Time
	newID   func() uuid.UUID
	state   State
	staged  *Order
}

func NewLifecycle(kv kvStore, cartStore cartReplacer, opts Options) *Lifecycle {
	l := &Lifecycle{
		kv:      kv,
		cart:    cartStore,
		logg:    opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Clock,
		newID:   opts.NewID,
		state:   StateIdle,
	}
	if l.logg == nil {
		l.logg = logger.Nop()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.New
	}
	return l
}

// State reports the lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Commit mints identifiers, snapshots lines and stages the order. The profile
// goes to durable storage, the order to session storage. Storage failures are
// logged and the order stays available from memory. The cart is not cleared.
func (l *Lifecycle) Commit(ctx context.Context, profile types.ShopperProfile, lines []cart.Line) (*Order, error) {
	order := Order{
		DateCreated:   l.now().UTC(),
		ID:            l.newID().String(),
		TransactionID: newTransactionID(l.newID()),
		Cart:          lines,
	}
	staged := order.clone()
	ctx = l.logg.WithOrderID(ctx, staged.ID)

	profilePayload, err := json.Marshal(profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode shopper profile")
	}
	orderPayload, err := json.Marshal(staged)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order")
	}

	if err := l.kv.Set(ctx, storage.Durable, storage.KeyUser, string(profilePayload)); err != nil {
		l.logg.Warn(l.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "shopper profile not persisted")
	}
	if err := l.kv.Set(ctx, storage.Session, storage.KeyOrder, string(orderPayload)); err != nil {
		l.logg.Warn(l.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "order kept in memory only")
	}

	l.mu.Lock()
	l.staged = staged
	l.state = StateStaged
	l.mu.Unlock()

	l.metrics.IncOrderCommitted()
	l.logg.Info(l.logg.WithFields(ctx, map[string]any{"transaction_id": staged.TransactionID, "lines": len(staged.Cart)}), "order staged")
	return staged.clone(), nil
}

// ReadStagedOrder returns the order staged by this process. Session storage
// is consulted only when nothing is staged in memory, since a failed session
// write can leave an older order there. NOT_FOUND when neither has one.
func (l *Lifecycle) ReadStagedOrder(ctx context.Context) (*Order, error) {
	l.mu.Lock()
	staged := l.staged
	l.mu.Unlock()
	if staged != nil {
		return staged.clone(), nil
	}

	raw, found, err := l.kv.Get(ctx, storage.Session, storage.KeyOrder)
	if err != nil || !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order staged")
	}
	var order Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		malformed := pkgerrors.Wrap(pkgerrors.CodeMalformedState, err, "staged order is not valid JSON")
		l.logg.Warn(l.logg.WithFields(ctx, pkgerrors.Dump(malformed).Fields()), "ignoring staged order")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order staged")
	}
	return &order, nil
}

// ActivateConfirmation reads the staged order and then empties the cart.
// Without a staged order the cart is left alone. Repeating it is harmless.
func (l *Lifecycle) ActivateConfirmation(ctx context.Context) (*Order, error) {
	order, err := l.ReadStagedOrder(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.cart.ReplaceAll(ctx, nil); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.state = StateConfirmed
	l.mu.Unlock()

	l.logg.Info(l.logg.WithOrderID(ctx, order.ID), "order confirmation shown")
	return order, nil
}

// StoredProfile reads back the shopper profile saved at commit.
func (l *Lifecycle) StoredProfile(ctx context.Context) (*types.ShopperProfile, error) {
	raw, found, err := l.kv.Get(ctx, storage.Durable, storage.KeyUser)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no stored shopper profile")
	}
	var profile types.ShopperProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedState, err, "stored shopper profile is not valid JSON")
	}
	return &profile, nil
}
