// Package listing scrapes HTML listing pages (search results and browse
// pages of video sites) into normalized items. Sites are configured with URL
// templates and CSS selectors; nothing about a particular host is built in.
package listing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"contentgw/internal/source"
	"contentgw/internal/source/fetch"
)

const (
	defaultLimit = 10
	maxLimit     = 50
	randomLimit  = 5
	randomPages  = 10
)

var randomQueries = []string{"", "popular", "latest", "top"}

// Config describes one site. SearchPath and BrowsePath are templates
// relative to BaseURL: {query} is the escaped search text, {page} the
// 1-based page and {page0} the zero-based page.
type Config struct {
	ID         string
	Name       string
	BaseURL    string
	SearchPath string
	BrowsePath string
}

type Adapter struct {
	cfg       Config
	base      *url.URL
	client    *fetch.Client
	extractor Extractor
	logger    *slog.Logger
	intN      func(n int) int
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithRand replaces the random source used by Random.
func WithRand(intN func(n int) int) Option {
	return func(a *Adapter) {
		a.intN = intN
	}
}

func New(cfg Config, extractor Extractor, client *fetch.Client, opts ...Option) (*Adapter, error) {
	if cfg.ID == "" {
		return nil, errors.New("listing id is required")
	}
	if cfg.SearchPath == "" || cfg.BrowsePath == "" {
		return nil, errors.New("listing search and browse paths are required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if client == nil {
		return nil, errors.New("fetch client is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, errors.New("listing base url must be absolute")
	}
	cfg.ID = strings.ToLower(cfg.ID)
	a := &Adapter{
		cfg:       cfg,
		base:      base,
		client:    client,
		extractor: extractor,
		logger:    slog.Default(),
		intN:      rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) ID() string            { return a.cfg.ID }
func (a *Adapter) Family() source.Family { return source.FamilyScrape }

// Search uses the search template when a query is given and the browse
// template otherwise.
func (a *Adapter) Search(ctx context.Context, q source.SearchQuery) ([]source.Item, error) {
	limit := defaultLimit
	if q.Limit > 0 {
		limit = min(q.Limit, maxLimit)
	}
	return a.scrape(ctx, strings.TrimSpace(q.Query), max(q.Page, 1), limit)
}

// Random scrapes a random page of a random broad query.
func (a *Adapter) Random(ctx context.Context, count int, _ map[string]string) ([]source.Item, error) {
	if count <= 0 {
		count = randomLimit
	}
	query := randomQueries[a.intN(len(randomQueries))]
	return a.scrape(ctx, query, a.intN(randomPages)+1, min(count, maxLimit))
}

func (a *Adapter) scrape(ctx context.Context, query string, page, limit int) ([]source.Item, error) {
	tpl := a.cfg.BrowsePath
	if query != "" {
		tpl = a.cfg.SearchPath
	}
	pageURL, err := a.base.Parse(a.base.Path + expand(tpl, query, page))
	if err != nil {
		return nil, source.NewError(source.KindInternal, a.cfg.ID, "bad page template", err)
	}

	header := http.Header{
		"Accept":  {"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Referer": {a.base.String() + "/"},
	}
	resp, err := a.client.Get(ctx, pageURL.String(), header)
	if err != nil {
		return nil, fetch.Classify(a.cfg.ID, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, source.NewError(source.KindSchemaMismatch, a.cfg.ID, "unparseable page", err)
	}

	entries := a.extractor.Extract(doc, pageURL, limit)
	if len(entries) == 0 {
		a.logger.DebugContext(ctx, "listing page yielded no entries",
			"source", a.cfg.ID,
			"url", pageURL.String(),
		)
	}
	items := make([]source.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, a.normalize(e))
	}
	return items, nil
}

func (a *Adapter) normalize(e Entry) source.Item {
	item := source.NewItem(a.cfg.ID, e.ID)
	item.Title = e.Title
	item.URL = e.Link
	item.AddMedia(source.MediaThumbnail, e.Thumb)
	item.SetExtra("media_type", source.MediaVideo)
	item.SetExtra("duration", e.Duration)
	item.SetExtra("additional_info", e.Meta)
	item.SetExtra("requires_age_verification", true)
	if a.cfg.Name != "" {
		item.SetExtra("site", a.cfg.Name)
	}
	return item
}

func expand(tpl, query string, page int) string {
	pathPart, queryPart, hasQuery := strings.Cut(tpl, "?")
	pathPart = strings.NewReplacer(
		"{query}", url.PathEscape(query),
		"{page}", strconv.Itoa(page),
		"{page0}", strconv.Itoa(page-1),
	).Replace(pathPart)
	if !hasQuery {
		return pathPart
	}
	queryPart = strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{page}", strconv.Itoa(page),
		"{page0}", strconv.Itoa(page-1),
	).Replace(queryPart)
	return pathPart + "?" + queryPart
}
