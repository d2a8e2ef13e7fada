package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront/internal/storage"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/shopspring/decimal"
)

// MsgNotDeleted is returned when Remove finds no matching line.
const MsgNotDeleted = "Product not deleted."

// RemovedMessage is the confirmation shown after a successful Remove.
func RemovedMessage(title string) string {
	return fmt.Sprintf("Product %s was deleted.", title)
}

type kvStore interface {
	Get(ctx context.Context, lifetime storage.Lifetime, key string) (string, bool, error)
	Set(ctx context.Context, lifetime storage.Lifetime, key, value string) error
}

type Options struct {
	Logger  *logger.Logger
	Metrics *metrics.Storefront
}

// Store owns the shopper's cart lines. Every mutation goes through a single
// whole-collection write of the durable items key. The mutex guards memory
// only: a caller that edits a stale Current() snapshot and passes it to
// ReplaceAll overwrites any write made in between.
type Store struct {
	mu        sync.Mutex
	lines     []Line
	kv        kvStore
	logg      *logger.Logger
	metrics   *metrics.Storefront
	subs      map[int]func([]Line)
	nextSub   int
	degraded  bool
	recovered error
}

// New loads the persisted items once. A missing, unreadable or malformed
// value starts the cart empty; Recovered reports why.
func New(ctx context.Context, kv kvStore, opts Options) *Store {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{
		kv:      kv,
		logg:    logg,
		metrics: opts.Metrics,
		subs:    map[int]func([]Line){},
		lines:   []Line{},
	}

	raw, found, err := kv.Get(ctx, storage.Durable, storage.KeyItems)
	if err != nil {
		s.recovered = err
		return s
	}
	if !found {
		return s
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.recovered = pkgerrors.Wrap(pkgerrors.CodeMalformedState, err, "persisted cart items are not valid JSON")
		logg.Warn(logg.WithFields(ctx, pkgerrors.Dump(s.recovered).Fields()), "starting with an empty cart")
		return s
	}
	if err := checkLines(lines); err != nil {
		s.recovered = pkgerrors.Wrap(pkgerrors.CodeMalformedState, err, "persisted cart items are inconsistent")
		logg.Warn(logg.WithFields(ctx, pkgerrors.Dump(s.recovered).Fields()), "starting with an empty cart")
		return s
	}
	if lines != nil {
		s.lines = lines
	}
	return s
}

// Current returns a deep copy of the lines in display order.
func (s *Store) Current() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// SubTotal is the cart total rounded to cents. It is derived, never stored.
func (s *Store) SubTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SubTotal(s.lines)
}

// Count is the number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, l := range s.lines {
		count += l.Qty
	}
	return count
}

// Degraded reports whether any write since construction failed to persist.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Recovered returns the diagnostic recorded while loading, if any.
func (s *Store) Recovered() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recovered
}

// Subscribe registers fn to receive a copy of the lines after every write.
func (s *Store) Subscribe(fn func([]Line)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// ReplaceAll swaps the whole collection and persists it. Persistence failures
// are logged and leave the in-memory collection authoritative.
func (s *Store) ReplaceAll(ctx context.Context, lines []Line) error {
	if err := checkLines(lines); err != nil {
		return err
	}
	s.mu.Lock()
	notify := s.replaceLocked(ctx, lines, "replace")
	s.mu.Unlock()
	notify()
	return nil
}

// AddOrMerge adds qty units of candidate. An existing line with the same id
// gains qty; otherwise candidate is appended with exactly qty.
func (s *Store) AddOrMerge(ctx context.Context, candidate Line, qty int) (Line, error) {
	if qty < 1 {
		return Line{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"qty": qty})
	}

	s.mu.Lock()
	next := make([]Line, 0, len(s.lines)+1)
	merged := false
	var result Line
	for _, l := range s.lines {
		if l.ID == candidate.ID {
			l.Qty += qty
			merged = true
			result = l
		}
		next = append(next, l)
	}
	if !merged {
		result = candidate.clone()
		result.Qty = qty
		next = append(next, result)
	}
	notify := s.replaceLocked(ctx, next, "add")
	s.mu.Unlock()

	notify()
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"product_id": candidate.ID, "qty": result.Qty, "merged": merged}), "cart line added")
	return result.clone(), nil
}

// SetQty replaces the quantity of line id. A missing id is a no-op and
// reports found=false.
func (s *Store) SetQty(ctx context.Context, id, qty int) (found bool, err error) {
	if qty < 1 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"qty": qty})
	}

	s.mu.Lock()
	next := cloneLines(s.lines)
	for i := range next {
		if next[i].ID == id {
			next[i].Qty = qty
			found = true
		}
	}
	if !found {
		s.mu.Unlock()
		return false, nil
	}
	notify := s.replaceLocked(ctx, next, "set_qty")
	s.mu.Unlock()

	notify()
	return true, nil
}

// Remove drops line id and returns its title. A missing id is NOT_FOUND and
// nothing is written.
func (s *Store) Remove(ctx context.Context, id int) (string, error) {
	s.mu.Lock()
	next := make([]Line, 0, len(s.lines))
	var title string
	found := false
	for _, l := range s.lines {
		if l.ID == id {
			title = l.Title
			found = true
			continue
		}
		next = append(next, l)
	}
	if !found {
		s.mu.Unlock()
		return "", pkgerrors.New(pkgerrors.CodeNotFound, MsgNotDeleted)
	}
	notify := s.replaceLocked(ctx, next, "remove")
	s.mu.Unlock()

	notify()
	s.logg.Debug(s.logg.WithField(ctx, "product_id", id), "cart line removed")
	return title, nil
}

// replaceLocked must run with s.mu held. The returned func delivers the
// change to subscribers and must be called after unlocking.
func (s *Store) replaceLocked(ctx context.Context, lines []Line, op string) func() {
	s.lines = cloneLines(lines)
	s.metrics.IncCartMutation(op)

	payload, err := json.Marshal(s.lines)
	if err == nil {
		err = s.kv.Set(ctx, storage.Durable, storage.KeyItems, string(payload))
	}
	if err != nil {
		s.degraded = true
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "cart kept in memory only")
	}

	subs := make([]func([]Line), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	snapshot := s.lines
	return func() {
		for _, fn := range subs {
			fn(cloneLines(snapshot))
		}
	}
}

func checkLines(lines []Line) error {
	seen := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate cart line").
				WithDetails(map[string]any{"id": l.ID})
		}
		seen[l.ID] = struct{}{}
		if l.Qty < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"id": l.ID, "qty": l.Qty})
		}
		if l.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
				WithDetails(map[string]any{"id": l.ID})
		}
	}
	return nil
}
