// Package jikan adapts the Jikan REST API (an unofficial MyAnimeList mirror)
// to the normalized item shape.
package jikan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"contentgw/internal/source"
	"contentgw/internal/source/fetch"
)

const (
	ID = "jikan"

	defaultLimit = 20
	maxLimit     = 25
	// randomFanOut bounds concurrent calls to the single-item random endpoint.
	randomFanOut = 4
	maxRandom    = 10
)

// searchFilters maps caller filter names onto upstream query parameters.
// Both the short names and the upstream names are accepted; when a caller
// sends both, the upstream name wins because it is listed later. "year" is
// expanded to a start/end date range separately.
var searchFilters = []filterName{
	{"genre", "genres"},
	{"genres", "genres"},
	{"score", "min_score"},
	{"min_score", "min_score"},
	{"sort", "order_by"},
	{"order_by", "order_by"},
	{"type", "type"},
	{"status", "status"},
	{"rating", "rating"},
}

var randomFilters = []filterName{
	{"genre", "genres"},
	{"genres", "genres"},
	{"type", "type"},
}

type filterName struct {
	caller   string
	upstream string
}

func applyFilters(params url.Values, filters map[string]string, names []filterName) {
	for _, n := range names {
		if v := strings.TrimSpace(filters[n.caller]); v != "" {
			params.Set(n.upstream, v)
		}
	}
}

var validSeasons = map[string]bool{"winter": true, "spring": true, "summer": true, "fall": true}

type Adapter struct {
	baseURL string
	client  *fetch.Client
	logger  *slog.Logger
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(baseURL string, client *fetch.Client, opts ...Option) (*Adapter, error) {
	if baseURL == "" {
		return nil, errors.New("jikan base url is required")
	}
	if client == nil {
		return nil, errors.New("fetch client is required")
	}
	a := &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) ID() string            { return ID }
func (a *Adapter) Family() source.Family { return source.FamilyAPI }

func (a *Adapter) Search(ctx context.Context, q source.SearchQuery) ([]source.Item, error) {
	params := url.Values{}
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	params.Set("page", strconv.Itoa(max(q.Page, 1)))
	params.Set("limit", strconv.Itoa(clampLimit(q.Limit)))
	applyFilters(params, q.Filters, searchFilters)
	if year := strings.TrimSpace(q.Filters["year"]); year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			return nil, source.InvalidInput(ID, "year filter must be numeric")
		}
		params.Set("start_date", year+"-01-01")
		params.Set("end_date", year+"-12-31")
	}

	var page listResponse
	if err := a.getJSON(ctx, "/anime", params, &page); err != nil {
		return nil, err
	}
	return normalizeAll(page.Data), nil
}

// Detail returns nil, nil when the upstream has no anime with id.
func (a *Adapter) Detail(ctx context.Context, id string) (*source.Item, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, nil
	}
	var one singleResponse
	err := a.getJSON(ctx, "/anime/"+id+"/full", nil, &one)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if one.Data.MalID == 0 {
		return nil, nil
	}
	item := normalize(one.Data)
	return &item, nil
}

func (a *Adapter) Trending(ctx context.Context, limit int) ([]source.Item, error) {
	params := url.Values{}
	params.Set("filter", "bypopularity")
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var page listResponse
	if err := a.getJSON(ctx, "/top/anime", params, &page); err != nil {
		return nil, err
	}
	return normalizeAll(page.Data), nil
}

// Random calls the single-item random endpoint count times. Individual
// failures are dropped; an error is returned only when every call failed.
func (a *Adapter) Random(ctx context.Context, count int, filters map[string]string) ([]source.Item, error) {
	count = min(max(count, 1), maxRandom)
	params := url.Values{}
	applyFilters(params, filters, randomFilters)

	results := make([]*source.Item, count)
	errs := make([]error, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(randomFanOut)
	for i := range count {
		g.Go(func() error {
			var one singleResponse
			if err := a.getJSON(gctx, "/random/anime", params, &one); err != nil {
				errs[i] = err
				return nil
			}
			if one.Data.MalID == 0 {
				return nil
			}
			item := normalize(one.Data)
			results[i] = &item
			return nil
		})
	}
	_ = g.Wait()

	items := make([]source.Item, 0, count)
	seen := make(map[string]struct{}, count)
	var firstErr error
	for i, r := range results {
		if r == nil {
			if firstErr == nil && errs[i] != nil {
				firstErr = errs[i]
			}
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		items = append(items, *r)
	}
	if len(items) == 0 && firstErr != nil {
		return nil, firstErr
	}
	if firstErr != nil {
		a.logger.WarnContext(ctx, "random anime partially failed",
			"source", ID,
			"requested", count,
			"returned", len(items),
			"error", firstErr,
		)
	}
	return items, nil
}

func (a *Adapter) Seasonal(ctx context.Context, year int, season string, limit int) ([]source.Item, error) {
	season = strings.ToLower(strings.TrimSpace(season))
	if !validSeasons[season] {
		return nil, source.InvalidInput(ID, fmt.Sprintf("unknown season %q", season))
	}
	if year < 1917 {
		return nil, source.InvalidInput(ID, fmt.Sprintf("year %d out of range", year))
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var page listResponse
	if err := a.getJSON(ctx, fmt.Sprintf("/seasons/%d/%s", year, season), params, &page); err != nil {
		return nil, err
	}
	return normalizeAll(page.Data), nil
}

func (a *Adapter) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	u := a.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := a.client.Get(ctx, u, nil)
	if err != nil {
		return fetch.Classify(ID, err)
	}
	return fetch.DecodeJSON(ID, resp, v)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
