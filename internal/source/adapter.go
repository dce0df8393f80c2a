package source

import (
	"context"
	"slices"
)

// Adapter is the capability every source has: search.
type Adapter interface {
	// ID returns the unique identifier the registry stores the adapter under.
	ID() string

	Family() Family

	Search(ctx context.Context, q SearchQuery) ([]Item, error)
}

// Detailer fetches a single item. A nil item with a nil error means the
// upstream has no such item.
type Detailer interface {
	Detail(ctx context.Context, id string) (*Item, error)
}

type TrendingLister interface {
	Trending(ctx context.Context, limit int) ([]Item, error)
}

// RandomPicker returns up to count randomly chosen items. Partial results are
// acceptable when some upstream calls fail.
type RandomPicker interface {
	Random(ctx context.Context, count int, filters map[string]string) ([]Item, error)
}

type SeasonalLister interface {
	Seasonal(ctx context.Context, year int, season string, limit int) ([]Item, error)
}

// Operation names as advertised by Capabilities.
const (
	OpSearch   = "search"
	OpDetail   = "detail"
	OpTrending = "trending"
	OpRandom   = "random"
	OpSeasonal = "seasonal"
)

// Capabilities lists the operations an adapter implements, in a stable order.
func Capabilities(a Adapter) []string {
	ops := []string{OpSearch}
	if _, ok := a.(Detailer); ok {
		ops = append(ops, OpDetail)
	}
	if _, ok := a.(TrendingLister); ok {
		ops = append(ops, OpTrending)
	}
	if _, ok := a.(RandomPicker); ok {
		ops = append(ops, OpRandom)
	}
	if _, ok := a.(SeasonalLister); ok {
		ops = append(ops, OpSeasonal)
	}
	return ops
}

// Supports reports whether a implements op.
func Supports(a Adapter, op string) bool {
	return slices.Contains(Capabilities(a), op)
}
