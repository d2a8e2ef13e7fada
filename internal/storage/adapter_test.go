package storage

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingStore struct {
	err      error
	closeErr error
}

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error         { return f.err }
func (f failingStore) Remove(context.Context, string) error              { return f.err }
func (f failingStore) Close() error                                      { return f.closeErr }

func TestAdapterRoutesByLifetime(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryStore(0)
	session := NewMemoryStore(0)
	adapter := NewAdapter(durable, session, AdapterOptions{Logger: logger.Nop()})

	require.NoError(t, adapter.Set(ctx, Durable, KeyUser, "durable"))
	require.NoError(t, adapter.Set(ctx, Session, KeyOrder, "session"))

	_, found, _ := durable.Get(ctx, KeyOrder)
	assert.False(t, found, "session key must not leak into durable store")

	value, found, err := adapter.Get(ctx, Session, KeyOrder)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "session", value)

	require.NoError(t, adapter.Remove(ctx, Durable, KeyUser))
	_, found, _ = adapter.Get(ctx, Durable, KeyUser)
	assert.False(t, found)
}

func TestAdapterWrapsFailuresAndCountsThem(t *testing.T) {
	reg := prometheus.NewRegistry()
	adapter := NewAdapter(failingStore{err: errors.New("disk full")}, NewMemoryStore(0), AdapterOptions{
		Logger:  logger.Nop(),
		Metrics: metrics.NewStorefront(reg),
	})

	err := adapter.Set(context.Background(), Durable, KeyItems, "[]")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStorageUnavailable))
	assert.ErrorContains(t, err, "disk full")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "storage_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), total)
}

func TestAdapterKeepsQuotaErrorCode(t *testing.T) {
	adapter := NewAdapter(NewMemoryStore(1), NewMemoryStore(0), AdapterOptions{})
	err := adapter.Set(context.Background(), Durable, KeyItems, "[]")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "quota exceeded", typed.Message())
}

func TestAdapterMissingBackend(t *testing.T) {
	adapter := NewAdapter(NewMemoryStore(0), nil, AdapterOptions{})
	_, _, err := adapter.Get(context.Background(), Session, KeyOrder)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStorageUnavailable))
}

func TestAdapterCloseCombinesErrors(t *testing.T) {
	adapter := NewAdapter(
		failingStore{closeErr: errors.New("durable close")},
		failingStore{closeErr: errors.New("session close")},
		AdapterOptions{},
	)
	err := adapter.Close()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}
