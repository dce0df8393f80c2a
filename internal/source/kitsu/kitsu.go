// Package kitsu adapts the Kitsu JSON:API catalog to the normalized item shape.
package kitsu

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"contentgw/internal/source"
	"contentgw/internal/source/fetch"
)

const (
	ID = "kitsu"

	mediaType    = "application/vnd.api+json"
	defaultLimit = 20
	// Kitsu rejects page[limit] above 20.
	maxLimit = 20
)

var jsonAPIHeader = http.Header{"Accept": {mediaType}}

type Adapter struct {
	baseURL string
	client  *fetch.Client
}

func New(baseURL string, client *fetch.Client) (*Adapter, error) {
	if baseURL == "" {
		return nil, errors.New("kitsu base url is required")
	}
	if client == nil {
		return nil, errors.New("fetch client is required")
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

func (a *Adapter) ID() string            { return ID }
func (a *Adapter) Family() source.Family { return source.FamilyAPI }

// Search maps the 1-based page onto Kitsu's offset pagination.
func (a *Adapter) Search(ctx context.Context, q source.SearchQuery) ([]source.Item, error) {
	limit := clampLimit(q.Limit)
	params := url.Values{}
	if q.Query != "" {
		params.Set("filter[text]", q.Query)
	}
	if v := strings.TrimSpace(q.Filters["status"]); v != "" {
		params.Set("filter[status]", v)
	}
	if v := strings.TrimSpace(q.Filters["subtype"]); v != "" {
		params.Set("filter[subtype]", v)
	}
	params.Set("page[limit]", strconv.Itoa(limit))
	params.Set("page[offset]", strconv.Itoa((max(q.Page, 1)-1)*limit))
	params.Set("include", "categories")

	var doc listDocument
	if err := a.getJSON(ctx, "/anime", params, &doc); err != nil {
		return nil, err
	}
	return normalizeAll(doc.Data, doc.Included), nil
}

// Detail returns nil, nil when Kitsu has no anime with id.
func (a *Adapter) Detail(ctx context.Context, id string) (*source.Item, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return nil, nil
	}
	params := url.Values{}
	params.Set("include", "categories")

	var doc singleDocument
	err := a.getJSON(ctx, "/anime/"+id, params, &doc)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.Data.ID == "" {
		return nil, nil
	}
	item := normalize(doc.Data, indexIncluded(doc.Included))
	return &item, nil
}

func (a *Adapter) Trending(ctx context.Context, limit int) ([]source.Item, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	var doc listDocument
	if err := a.getJSON(ctx, "/trending/anime", params, &doc); err != nil {
		return nil, err
	}
	items := normalizeAll(doc.Data, doc.Included)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (a *Adapter) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	u := a.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	resp, err := a.client.Get(ctx, u, jsonAPIHeader)
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
