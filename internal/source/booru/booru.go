// Package booru adapts "dapi" style post APIs (the index.php?page=dapi
// family of image boards) to the normalized item shape. Each configured host
// is its own adapter instance.
package booru

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"contentgw/internal/source"
	"contentgw/internal/source/fetch"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	randomLimit  = 5
	// randomPages bounds the page drawn by Random; deep pages are often empty.
	randomPages = 10
)

var randomQueries = []string{"", "popular", "latest", "top"}

type Config struct {
	ID      string
	Name    string
	BaseURL string
	// SiteURL is where post pages live; defaults to BaseURL.
	SiteURL string
}

type Adapter struct {
	cfg    Config
	client *fetch.Client
	intN   func(n int) int
}

type Option func(*Adapter)

// WithRand replaces the random source used to pick pages and queries.
func WithRand(intN func(n int) int) Option {
	return func(a *Adapter) {
		a.intN = intN
	}
}

func New(cfg Config, client *fetch.Client, opts ...Option) (*Adapter, error) {
	if cfg.ID == "" {
		return nil, errors.New("booru id is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("booru base url is required")
	}
	if client == nil {
		return nil, errors.New("fetch client is required")
	}
	cfg.ID = strings.ToLower(cfg.ID)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.SiteURL == "" {
		cfg.SiteURL = cfg.BaseURL
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	a := &Adapter{cfg: cfg, client: client, intN: rand.IntN}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) ID() string            { return a.cfg.ID }
func (a *Adapter) Family() source.Family { return source.FamilyAPI }

// Search queries posts by tag. The free-text query is passed as the tag
// expression; a "rating" filter becomes a rating: tag.
func (a *Adapter) Search(ctx context.Context, q source.SearchQuery) ([]source.Item, error) {
	tags := strings.TrimSpace(q.Query)
	if r := strings.TrimSpace(q.Filters["rating"]); r != "" {
		tags = strings.TrimSpace(tags + " rating:" + r)
	}
	return a.posts(ctx, tags, clampLimit(q.Limit), max(q.Page, 1)-1)
}

// Detail looks a post up through the id: meta tag.
func (a *Adapter) Detail(ctx context.Context, id string) (*source.Item, error) {
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return nil, nil
	}
	items, err := a.posts(ctx, "id:"+id, 1, 0)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Random draws a page in [0, 10) and one of a few broad queries. A "tags"
// filter replaces the drawn query.
func (a *Adapter) Random(ctx context.Context, count int, filters map[string]string) ([]source.Item, error) {
	if count <= 0 {
		count = randomLimit
	}
	query := randomQueries[a.intN(len(randomQueries))]
	if t := strings.TrimSpace(filters["tags"]); t != "" {
		query = t
	}
	return a.posts(ctx, query, min(count, maxLimit), a.intN(randomPages))
}

func (a *Adapter) posts(ctx context.Context, tags string, limit, pid int) ([]source.Item, error) {
	params := url.Values{}
	params.Set("page", "dapi")
	params.Set("s", "post")
	params.Set("q", "index")
	params.Set("json", "1")
	params.Set("tags", tags)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("pid", strconv.Itoa(pid))

	resp, err := a.client.Get(ctx, a.cfg.BaseURL+"/index.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fetch.Classify(a.cfg.ID, err)
	}
	posts, err := decodePosts(resp.Body)
	if err != nil {
		return nil, source.NewError(source.KindSchemaMismatch, a.cfg.ID, "undecodable post list", err)
	}

	items := make([]source.Item, 0, len(posts))
	for _, p := range posts {
		if p.ID == 0 {
			continue
		}
		items = append(items, a.normalize(p))
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
