package kitsu

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/internal/source"
	"contentgw/internal/source/contract"
	"contentgw/internal/source/fetch"
)

const animeResource = `{
	"id": "1",
	"type": "anime",
	"attributes": {
		"slug": "cowboy-bebop",
		"titles": {"en": "", "en_jp": "Cowboy Bebop", "ja_jp": "カウボーイビバップ"},
		"canonicalTitle": "Cowboy Bebop",
		"synopsis": "In the year 2071, humanity has colonized the solar system.",
		"averageRating": "82.27",
		"ratingRank": 72,
		"popularityRank": 29,
		"startDate": "1998-04-03",
		"endDate": "1999-04-24",
		"status": "finished",
		"subtype": "TV",
		"episodeCount": 26,
		"episodeLength": 25,
		"ageRating": "R",
		"posterImage": {"medium": "https://media.test/poster/1/medium.jpg", "large": "https://media.test/poster/1/large.jpg"},
		"coverImage": null
	},
	"relationships": {"categories": {"data": [{"type": "categories", "id": "10"}, {"type": "categories", "id": "99"}]}}
}`

const includedCategories = `[{"id": "10", "type": "categories", "attributes": {"title": "Space"}}]`

func newAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := fetch.New(ID, fetch.Config{
		UserAgents:              []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"},
		Timeout:                 2 * time.Second,
		BreakerFailureThreshold: 100,
	}, fetch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	a, err := New(srv.URL, client)
	require.NoError(t, err)
	return a
}

func TestSearch(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mediaType, r.Header.Get("Accept"))
		assert.Equal(t, "/anime", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bebop", q.Get("filter[text]"))
		assert.Equal(t, "10", q.Get("page[limit]"))
		assert.Equal(t, "20", q.Get("page[offset]"), "page 3 of 10 starts at offset 20")
		_, _ = io.WriteString(w, `{"data": [`+animeResource+`], "included": `+includedCategories+`}`)
	})

	st := &contract.SearchTest{
		Name:     "normalizes JSON:API resources",
		Adapter:  a,
		Query:    source.SearchQuery{Query: "bebop", Page: 3, Limit: 10},
		MinItems: 1,
		Validate: func(t *testing.T, items []source.Item) {
			bebop := items[0]
			assert.Equal(t, "1", bebop.ID)
			assert.Equal(t, "Cowboy Bebop", bebop.Title, "empty english title falls back to en_jp")
			assert.Equal(t, "https://kitsu.io/anime/cowboy-bebop", bebop.URL)
			require.NotNil(t, bebop.Score)
			assert.InDelta(t, 82.27, *bebop.Score, 0.001)
			assert.Equal(t, []string{"Space"}, bebop.Tags, "unresolved category refs are dropped")
			assert.Equal(t, []source.MediaRef{{Kind: source.MediaPoster, URL: "https://media.test/poster/1/large.jpg"}}, bebop.MediaRefs)
			assert.Equal(t, 650, bebop.Extra["total_length"])
			assert.Equal(t, "R", bebop.Extra["age_rating"])
		},
	}
	st.Run(t)
}

func TestPreferredTitle(t *testing.T) {
	assert.Equal(t, "English", preferredTitle(attributes{Titles: map[string]string{"en": "English", "en_jp": "Romaji"}}))
	assert.Equal(t, "Romaji", preferredTitle(attributes{Titles: map[string]string{"en_jp": "Romaji"}, CanonicalTitle: "Canon"}))
	assert.Equal(t, "Canon", preferredTitle(attributes{CanonicalTitle: "Canon"}))
	assert.Empty(t, preferredTitle(attributes{}))
}

func TestDetail(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anime/1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errors": [{"status": "404"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"data": `+animeResource+`, "included": `+includedCategories+`}`)
	})

	item, err := a.Detail(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, []string{"Space"}, item.Tags)

	item, err = a.Detail(context.Background(), "2")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestTrending(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trending/anime", r.URL.Path)
		_, _ = io.WriteString(w, `{"data": [`+animeResource+`, `+animeResource+`, {"id": ""}]}`)
	})

	items, err := a.Trending(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1, "trending honors the limit even when upstream ignores it")
	contract.CheckItems(t, ID, items)

	items, err = a.Trending(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestErrors(t *testing.T) {
	tests := []contract.ErrorTest{
		{
			Name: "server error",
			Call: func(ctx context.Context) error {
				a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusServiceUnavailable)
				})
				_, err := a.Search(ctx, source.SearchQuery{Query: "x"})
				return err
			},
			ExpectedKind:  source.KindUnavailable,
			ExpectedRetry: true,
		},
		{
			Name: "html instead of json",
			Call: func(ctx context.Context) error {
				a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = io.WriteString(w, `<html>maintenance</html>`)
				})
				_, err := a.Trending(ctx, 5)
				return err
			},
			ExpectedKind: source.KindSchemaMismatch,
		},
	}
	for i := range tests {
		tests[i].Run(t)
	}
}
