package aggregate

import (
	"context"
	"maps"
	"slices"
	"strconv"

	"contentgw/internal/cache"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/source"
)

// Query types used as the cache key prefix.
const (
	querySearch   = "search"
	queryDetail   = "detail"
	queryTrending = "trending"
	queryRandom   = "random"
	querySeasonal = "seasonal"
)

// filterPrefix namespaces adapter filters inside the key parameters so a
// filter named "page" can never collide with the page number.
const filterPrefix = "f."

func itemsEmpty(items []source.Item) bool { return len(items) == 0 }

func itemEmpty(item *source.Item) bool { return item == nil }

// Search runs a free-text query against one source. Page is 1-based; values
// below 1 mean the first page.
func (s *Service) Search(ctx context.Context, identity, sourceID string, q source.SearchQuery) Result[[]source.Item] {
	a, err := s.adapter(sourceID)
	if err != nil {
		return reject[[]source.Item](ctx, s, querySearch, sourceID, err)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	params := cache.Params{}.
		Set("source", a.ID()).
		Set("query", q.Query).
		SetInt("page", q.Page)
	if q.Limit > 0 {
		params.SetInt("limit", q.Limit)
	}
	for name, value := range q.Filters {
		params.Set(filterPrefix+name, value)
	}
	return execute(ctx, s, s.catalogCall(querySearch, a, params, identity),
		func(ctx context.Context) ([]source.Item, error) {
			return a.Search(ctx, q)
		}, itemsEmpty)
}

// Detail fetches one item. An upstream with no such item yields an empty
// outcome with nil data, which is cached like any other result.
func (s *Service) Detail(ctx context.Context, identity, sourceID, id string) Result[*source.Item] {
	a, err := s.adapter(sourceID)
	if err != nil {
		return reject[*source.Item](ctx, s, queryDetail, sourceID, err)
	}
	d, ok := a.(source.Detailer)
	if !ok {
		return reject[*source.Item](ctx, s, queryDetail, a.ID(), source.NotSupported(a.ID(), source.OpDetail))
	}
	if id == "" {
		return reject[*source.Item](ctx, s, queryDetail, a.ID(), source.InvalidInput(a.ID(), "id is required"))
	}
	params := cache.Params{}.Set("source", a.ID()).Set("id", id)
	return execute(ctx, s, s.catalogCall(queryDetail, a, params, identity),
		func(ctx context.Context) (*source.Item, error) {
			return d.Detail(ctx, id)
		}, itemEmpty)
}

func (s *Service) Trending(ctx context.Context, identity, sourceID string, limit int) Result[[]source.Item] {
	a, err := s.adapter(sourceID)
	if err != nil {
		return reject[[]source.Item](ctx, s, queryTrending, sourceID, err)
	}
	t, ok := a.(source.TrendingLister)
	if !ok {
		return reject[[]source.Item](ctx, s, queryTrending, a.ID(), source.NotSupported(a.ID(), source.OpTrending))
	}
	params := cache.Params{}.Set("source", a.ID())
	if limit > 0 {
		params.SetInt("limit", limit)
	}
	return execute(ctx, s, s.catalogCall(queryTrending, a, params, identity),
		func(ctx context.Context) ([]source.Item, error) {
			return t.Trending(ctx, limit)
		}, itemsEmpty)
}

// Random picks up to count items. Results are cached like every other query,
// so repeated calls within the catalog TTL return the same picks.
func (s *Service) Random(ctx context.Context, identity, sourceID string, count int, filters map[string]string) Result[[]source.Item] {
	a, err := s.adapter(sourceID)
	if err != nil {
		return reject[[]source.Item](ctx, s, queryRandom, sourceID, err)
	}
	r, ok := a.(source.RandomPicker)
	if !ok {
		return reject[[]source.Item](ctx, s, queryRandom, a.ID(), source.NotSupported(a.ID(), source.OpRandom))
	}
	params := cache.Params{}.Set("source", a.ID())
	if count > 0 {
		params.SetInt("count", count)
	}
	for name, value := range filters {
		params.Set(filterPrefix+name, value)
	}
	return execute(ctx, s, s.catalogCall(queryRandom, a, params, identity),
		func(ctx context.Context) ([]source.Item, error) {
			return r.Random(ctx, count, filters)
		}, itemsEmpty)
}

func (s *Service) Seasonal(ctx context.Context, identity, sourceID string, year int, season string, limit int) Result[[]source.Item] {
	a, err := s.adapter(sourceID)
	if err != nil {
		return reject[[]source.Item](ctx, s, querySeasonal, sourceID, err)
	}
	l, ok := a.(source.SeasonalLister)
	if !ok {
		return reject[[]source.Item](ctx, s, querySeasonal, a.ID(), source.NotSupported(a.ID(), source.OpSeasonal))
	}
	params := cache.Params{}.
		Set("source", a.ID()).
		SetInt("year", year).
		Set("season", season)
	if limit > 0 {
		params.SetInt("limit", limit)
	}
	return execute(ctx, s, s.catalogCall(querySeasonal, a, params, identity),
		func(ctx context.Context) ([]source.Item, error) {
			return l.Seasonal(ctx, year, season, limit)
		}, itemsEmpty)
}

func (s *Service) catalogCall(operation string, a source.Adapter, params cache.Params, identity string) call {
	return call{
		operation: operation,
		source:    a.ID(),
		key:       cache.NewKey(operation, params),
		identity:  identity,
		policy:    models.PolicyScrape,
		admitter:  s.admitterFor(models.PolicyScrape),
		ttl:       s.catalogTTL,
	}
}

// SourceInfo describes a registered adapter.
type SourceInfo struct {
	ID           string        `json:"id"`
	Family       source.Family `json:"family"`
	Capabilities []string      `json:"capabilities"`
}

// Sources lists every registered adapter and what it can do.
func (s *Service) Sources() []SourceInfo {
	all := s.sources.All()
	out := make([]SourceInfo, 0, len(all))
	for _, a := range all {
		out = append(out, SourceInfo{ID: a.ID(), Family: a.Family(), Capabilities: source.Capabilities(a)})
	}
	return out
}

// Query is the transport-neutral form of a catalog request.
type Query struct {
	Operation string
	Source    string
	Params    cache.Params
	Identity  string
}

// reservedParams are consumed by Execute; everything else is a filter.
var reservedParams = []string{"q", "query", "page", "limit", "id", "count", "year", "season"}

// Execute dispatches q to the matching catalog operation.
func (s *Service) Execute(ctx context.Context, q Query) Result[any] {
	p := q.Params
	if p == nil {
		p = cache.Params{}
	}
	switch q.Operation {
	case source.OpSearch:
		text := p.Get("q")
		if text == "" {
			text = p.Get("query")
		}
		return s.Search(ctx, q.Identity, q.Source, source.SearchQuery{
			Query:   text,
			Page:    p.Int("page", 1),
			Limit:   p.Int("limit", 0),
			Filters: filterParams(p),
		}).Any()
	case source.OpDetail:
		return s.Detail(ctx, q.Identity, q.Source, p.Get("id")).Any()
	case source.OpTrending:
		return s.Trending(ctx, q.Identity, q.Source, p.Int("limit", 0)).Any()
	case source.OpRandom:
		return s.Random(ctx, q.Identity, q.Source, p.Int("count", 0), filterParams(p)).Any()
	case source.OpSeasonal:
		year, err := strconv.Atoi(p.Get("year"))
		if err != nil {
			return reject[any](ctx, s, querySeasonal, q.Source, source.InvalidInput(q.Source, "year must be a number"))
		}
		return s.Seasonal(ctx, q.Identity, q.Source, year, p.Get("season"), p.Int("limit", 0)).Any()
	default:
		return reject[any](ctx, s, q.Operation, q.Source, source.InvalidInput(q.Source, "unknown operation "+q.Operation))
	}
}

func filterParams(p cache.Params) map[string]string {
	out := make(map[string]string)
	for _, name := range slices.Sorted(maps.Keys(p)) {
		if slices.Contains(reservedParams, name) {
			continue
		}
		if v := p.Get(name); v != "" {
			out[name] = v
		}
	}
	return out
}
