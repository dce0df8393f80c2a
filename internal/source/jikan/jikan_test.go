package jikan

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/internal/source"
	"contentgw/internal/source/contract"
	"contentgw/internal/source/fetch"
)

const animeJSON = `{
	"mal_id": 5114,
	"url": "https://myanimelist.net/anime/5114",
	"title": "Fullmetal Alchemist: Brotherhood",
	"title_english": "Fullmetal Alchemist: Brotherhood",
	"synopsis": "Two brothers search for a Philosopher's Stone.",
	"type": "TV",
	"episodes": 64,
	"duration": "24 min per ep",
	"rating": "R - 17+ (violence & profanity)",
	"score": 9.1,
	"rank": 1,
	"popularity": 3,
	"status": "Finished Airing",
	"season": "spring",
	"year": 2009,
	"images": {"jpg": {"image_url": "https://cdn.test/5114.jpg", "small_image_url": "https://cdn.test/5114t.jpg", "large_image_url": "https://cdn.test/5114l.jpg"}},
	"trailer": {"url": "https://youtube.test/watch?v=abc"},
	"genres": [{"mal_id": 1, "name": "Action"}, {"mal_id": 2, "name": "Adventure"}],
	"themes": [{"mal_id": 38, "name": "Military"}],
	"demographics": [{"mal_id": 27, "name": "Shounen"}],
	"studios": [{"mal_id": 4, "name": "Bones"}]
}`

const sparseJSON = `{"mal_id": 42, "title": "", "title_english": "Only English"}`

func newClient(t *testing.T) *fetch.Client {
	t.Helper()
	c, err := fetch.New(ID, fetch.Config{
		UserAgents:              []string{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		Timeout:                 2 * time.Second,
		BreakerFailureThreshold: 100,
		BreakerOpenTimeout:      time.Minute,
	}, fetch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return c
}

func newAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	a, err := New(srv.URL, newClient(t), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	_, err := New("", newClient(t))
	assert.Error(t, err)
	_, err = New("http://jikan.test", nil)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	var gotQuery atomic.Value
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		gotQuery.Store(r.URL.Query())
		_, _ = io.WriteString(w, `{"data": [`+animeJSON+`, `+sparseJSON+`, {"mal_id": 0}]}`)
	})

	st := &contract.SearchTest{
		Name:    "normalizes upstream anime",
		Adapter: a,
		Query: source.SearchQuery{
			Query: "alchemist",
			Page:  2,
			Limit: 50,
			Filters: map[string]string{
				"genres":   "1",
				"year":     "2009",
				"order_by": "score",
				"unknown":  "dropped",
			},
		},
		MinItems: 2,
		Validate: func(t *testing.T, items []source.Item) {
			require.Len(t, items, 2, "entries without an id are skipped")
			fma := items[0]
			assert.Equal(t, "5114", fma.ID)
			assert.Equal(t, "Fullmetal Alchemist: Brotherhood", fma.Title)
			assert.Equal(t, "Finished Airing", fma.Status)
			require.NotNil(t, fma.Score)
			assert.InDelta(t, 9.1, *fma.Score, 0.001)
			assert.Equal(t, []string{"Action", "Adventure", "Military", "Shounen"}, fma.Tags)
			assert.Contains(t, fma.MediaRefs, source.MediaRef{Kind: source.MediaCover, URL: "https://cdn.test/5114l.jpg"})
			assert.Contains(t, fma.MediaRefs, source.MediaRef{Kind: source.MediaTrailer, URL: "https://youtube.test/watch?v=abc"})
			assert.Equal(t, 64, fma.Extra["episodes"])
			assert.Equal(t, 2009, fma.Extra["year"])
			assert.Equal(t, []string{"Bones"}, fma.Extra["studios"])

			sparse := items[1]
			assert.Equal(t, "Only English", sparse.Title)
			assert.Nil(t, sparse.Score)
			assert.Empty(t, sparse.MediaRefs)
			assert.NotContains(t, sparse.Extra, "episodes")
		},
	}
	st.Run(t)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"alchemist"}, q["q"])
	assert.Equal(t, []string{"2"}, q["page"])
	assert.Equal(t, []string{"25"}, q["limit"], "limit is capped by the upstream maximum")
	assert.Equal(t, []string{"1"}, q["genres"])
	assert.Equal(t, []string{"score"}, q["order_by"])
	assert.Equal(t, []string{"2009-01-01"}, q["start_date"])
	assert.Equal(t, []string{"2009-12-31"}, q["end_date"])
	assert.NotContains(t, q, "unknown")
}

func TestSearchFilterNames(t *testing.T) {
	tests := []struct {
		name    string
		filters map[string]string
		param   string
		want    string
	}{
		{name: "genre maps to genres", filters: map[string]string{"genre": "1"}, param: "genres", want: "1"},
		{name: "score maps to min_score", filters: map[string]string{"score": "8"}, param: "min_score", want: "8"},
		{name: "sort maps to order_by", filters: map[string]string{"sort": "popularity"}, param: "order_by", want: "popularity"},
		{name: "upstream name still accepted", filters: map[string]string{"min_score": "7.5"}, param: "min_score", want: "7.5"},
		{name: "upstream name wins over short name", filters: map[string]string{"genre": "1", "genres": "2"}, param: "genres", want: "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery atomic.Value
			a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery.Store(r.URL.Query())
				_, _ = io.WriteString(w, `{"data": []}`)
			})

			_, err := a.Search(context.Background(), source.SearchQuery{Filters: tt.filters})
			require.NoError(t, err)

			q := gotQuery.Load().(url.Values)
			assert.Equal(t, []string{tt.want}, q[tt.param])
			assert.NotContains(t, q, "genre")
			assert.NotContains(t, q, "score")
			assert.NotContains(t, q, "sort")
		})
	}
}

func TestSearchRejectsBadYear(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("upstream must not be called")
	})
	_, err := a.Search(context.Background(), source.SearchQuery{Filters: map[string]string{"year": "soon"}})
	assert.Equal(t, source.KindInvalidInput, source.KindOf(err))
}

func TestDetail(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/anime/5114/full":
			_, _ = io.WriteString(w, `{"data": `+animeJSON+`}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	item, err := a.Detail(context.Background(), "5114")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", item.Title)

	item, err = a.Detail(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, item, "404 means no such item")

	item, err = a.Detail(context.Background(), "../etc")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestTrendingAndSeasonal(t *testing.T) {
	a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/top/anime":
			assert.Equal(t, "bypopularity", r.URL.Query().Get("filter"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
		case "/seasons/2009/spring":
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"data": [`+animeJSON+`]}`)
	})

	items, err := a.Trending(context.Background(), 5)
	require.NoError(t, err)
	contract.CheckItems(t, ID, items)
	assert.Len(t, items, 1)

	items, err = a.Seasonal(context.Background(), 2009, "Spring", 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = a.Seasonal(context.Background(), 2009, "monsoon", 0)
	assert.Equal(t, source.KindInvalidInput, source.KindOf(err))
}

func TestRandom(t *testing.T) {
	t.Run("swallows partial failures", func(t *testing.T) {
		var calls atomic.Int32
		a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/random/anime", r.URL.Path)
			assert.Equal(t, "TV", r.URL.Query().Get("type"))
			n := calls.Add(1)
			if n%2 == 0 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = io.WriteString(w, `{"data": {"mal_id": `+strconv.Itoa(int(n))+`, "title": "Random"}}`)
		})

		items, err := a.Random(context.Background(), 6, map[string]string{"type": "TV"})
		require.NoError(t, err)
		assert.Equal(t, int32(6), calls.Load())
		assert.Len(t, items, 3)
		contract.CheckItems(t, ID, items)
	})

	t.Run("genre filter maps to genres", func(t *testing.T) {
		var gotQuery atomic.Value
		a := newAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery.Store(r.URL.Query())
			_, _ = io.WriteString(w, `{"data": {"mal_id": 7, "title": "Random"}}`)
		})

		items, err := a.Random(context.Background(), 1, map[string]string{"genre": "1"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		q := gotQuery.Load().(url.Values)
		assert.Equal(t, []string{"1"}, q["genres"])
	})

	t.Run("fails when every call fails", func(t *testing.T) {
		a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		et := &contract.ErrorTest{
			Name: "all upstream calls failed",
			Call: func(ctx context.Context) error {
				_, err := a.Random(ctx, 3, nil)
				return err
			},
			ExpectedKind:  source.KindUnavailable,
			ExpectedRetry: true,
		}
		et.Run(t)
	})

	t.Run("count is bounded", func(t *testing.T) {
		var calls atomic.Int32
		a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			_, _ = io.WriteString(w, `{"data": {"mal_id": 1}}`)
		})
		items, err := a.Random(context.Background(), 50, nil)
		require.NoError(t, err)
		assert.Equal(t, int32(maxRandom), calls.Load())
		assert.Len(t, items, 1, "duplicates collapse")
	})
}

func TestErrors(t *testing.T) {
	tests := []contract.ErrorTest{
		{
			Name: "upstream rate limit",
			Call: func(ctx context.Context) error {
				a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusTooManyRequests)
				})
				_, err := a.Trending(ctx, 10)
				return err
			},
			ExpectedKind:  source.KindRateLimited,
			ExpectedRetry: true,
		},
		{
			Name: "payload drift",
			Call: func(ctx context.Context) error {
				a := newAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
					_, _ = io.WriteString(w, `{"data": "not a list"}`)
				})
				_, err := a.Search(ctx, source.SearchQuery{Query: "x"})
				return err
			},
			ExpectedKind:  source.KindSchemaMismatch,
			ExpectedRetry: false,
		},
	}
	for i := range tests {
		tests[i].Run(t)
	}
}
