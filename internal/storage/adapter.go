package storage

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"go.uber.org/multierr"
)

// Adapter routes key/value calls to the durable or session backend. It does no
// serialization. Backend failures come back as STORAGE_UNAVAILABLE errors,
// already logged and counted; callers decide whether to carry on.
type Adapter struct {
	durable Store
	session Store
	logg    *logger.Logger
	metrics *metrics.Storefront
}

type AdapterOptions struct {
	Logger  *logger.Logger
	Metrics *metrics.Storefront
}

func NewAdapter(durable, session Store, opts AdapterOptions) *Adapter {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Adapter{durable: durable, session: session, logg: logg, metrics: opts.Metrics}
}

// NewMemoryAdapter backs both lifetimes with unbounded in-memory stores.
func NewMemoryAdapter() *Adapter {
	return NewAdapter(NewMemoryStore(0), NewMemoryStore(0), AdapterOptions{})
}

func (a *Adapter) Get(ctx context.Context, lifetime Lifetime, key string) (string, bool, error) {
	store, err := a.storeFor(lifetime)
	if err != nil {
		return "", false, err
	}
	value, found, err := store.Get(ctx, key)
	if err != nil {
		return "", false, a.fail(ctx, lifetime, "get", key, err)
	}
	return value, found, nil
}

func (a *Adapter) Set(ctx context.Context, lifetime Lifetime, key, value string) error {
	store, err := a.storeFor(lifetime)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, value); err != nil {
		return a.fail(ctx, lifetime, "set", key, err)
	}
	return nil
}

func (a *Adapter) Remove(ctx context.Context, lifetime Lifetime, key string) error {
	store, err := a.storeFor(lifetime)
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, key); err != nil {
		return a.fail(ctx, lifetime, "remove", key, err)
	}
	return nil
}

// Close closes both backends and reports every failure.
func (a *Adapter) Close() error {
	var err error
	if a.durable != nil {
		err = multierr.Append(err, a.durable.Close())
	}
	if a.session != nil {
		err = multierr.Append(err, a.session.Close())
	}
	return err
}

func (a *Adapter) storeFor(lifetime Lifetime) (Store, error) {
	var store Store
	switch lifetime {
	case Durable:
		store = a.durable
	case Session:
		store = a.session
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStorageUnavailable, fmt.Sprintf("no %s backend configured", lifetime))
	}
	return store, nil
}

func (a *Adapter) fail(ctx context.Context, lifetime Lifetime, op, key string, err error) error {
	wrapped := err
	if !pkgerrors.HasCode(err, pkgerrors.CodeStorageUnavailable) {
		wrapped = pkgerrors.Wrap(pkgerrors.CodeStorageUnavailable, err, fmt.Sprintf("%s %s failed", op, key))
	}
	a.metrics.IncStorageFailure(lifetime.String(), op)

	fields := pkgerrors.Dump(wrapped).Fields()
	fields["op"] = op
	ctx = a.logg.WithStorageKey(ctx, lifetime.String(), key)
	a.logg.Warn(a.logg.WithFields(ctx, fields), "storage operation failed")
	return wrapped
}
