package cart

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestCartProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("AddOrMerge on an existing id sums quantities", prop.ForAll(
		func(first, second int) bool {
			ctx := context.Background()
			store := New(ctx, newKV(0), Options{})
			if _, err := store.AddOrMerge(ctx, line(1, "1", 0), first); err != nil {
				return false
			}
			if _, err := store.AddOrMerge(ctx, line(1, "1", 0), second); err != nil {
				return false
			}
			current := store.Current()
			return len(current) == 1 && current[0].Qty == first+second
		},
		gen.IntRange(1, 1000),
		gen.IntRange(1, 1000),
	))

	properties.Property("SetQty replaces rather than adds", prop.ForAll(
		func(initial, next int) bool {
			ctx := context.Background()
			store := New(ctx, newKV(0), Options{})
			if _, err := store.AddOrMerge(ctx, line(1, "1", 0), initial); err != nil {
				return false
			}
			found, err := store.SetQty(ctx, 1, next)
			return err == nil && found && store.Current()[0].Qty == next
		},
		gen.IntRange(1, 1000),
		gen.IntRange(1, 1000),
	))

	properties.Property("ids stay unique across mixed adds", prop.ForAll(
		func(ids []int) bool {
			ctx := context.Background()
			store := New(ctx, newKV(0), Options{})
			for _, id := range ids {
				if _, err := store.AddOrMerge(ctx, line(id, "1", 0), 1); err != nil {
					return false
				}
			}
			seen := map[int]bool{}
			units := 0
			for _, l := range store.Current() {
				if seen[l.ID] {
					return false
				}
				seen[l.ID] = true
				units += l.Qty
			}
			return units == len(ids)
		},
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.Property("subtotal equals the rounded sum of line totals", prop.ForAll(
		func(cents []int) bool {
			ctx := context.Background()
			store := New(ctx, newKV(0), Options{})
			lines := make([]Line, 0, len(cents))
			want := decimal.Zero
			for i, c := range cents {
				price := decimal.New(int64(c), -3)
				lines = append(lines, Line{ID: i + 1, Price: price, Qty: 2})
				want = want.Add(price.Mul(decimal.NewFromInt(2)))
			}
			if err := store.ReplaceAll(ctx, lines); err != nil {
				return false
			}
			return store.SubTotal().Equal(want.Round(2))
		},
		gen.SliceOf(gen.IntRange(0, 100000)),
	))

	properties.TestingRun(t)
}
