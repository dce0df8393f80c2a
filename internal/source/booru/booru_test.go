package booru

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/internal/source"
	"contentgw/internal/source/contract"
	"contentgw/internal/source/fetch"
)

const arrayPayload = `[
	{"id": 101, "tags": "landscape  sky sky", "score": 12, "rating": "general", "width": 1920, "height": 1080,
	 "file_url": "https://img.test/101.jpg", "sample_url": "https://img.test/s101.jpg", "preview_url": "https://img.test/t101.jpg"},
	{"id": "102", "tags": "", "score": null, "rating": "questionable", "file_url": "https://img.test/102.webm?x=1", "preview_url": "https://img.test/t102.jpg"},
	{"id": 0}
]`

const wrappedPayload = `{"@attributes": {"limit": 1, "offset": 0, "count": 1},
	"post": [{"id": 7, "tags": "cat", "score": 3, "owner": "mod", "file_url": "https://img.test/7.png", "created_at": "Mon Jan 01 00:00:00 -0500 2024"}]}`

type recorder struct {
	mu    sync.Mutex
	calls []url.Values
}

func (r *recorder) add(q url.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, q)
}

func (r *recorder) last() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func newAdapter(t *testing.T, body string, opts ...Option) (*Adapter, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/index.php", r.URL.Path)
		rec.add(r.URL.Query())
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := fetch.New("demo", fetch.Config{
		UserAgents:              []string{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		Timeout:                 2 * time.Second,
		BreakerFailureThreshold: 100,
	}, fetch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	a, err := New(Config{ID: "Demo", Name: "Demo Board", BaseURL: srv.URL + "/", SiteURL: "https://board.test"}, client, opts...)
	require.NoError(t, err)
	return a, rec
}

func TestNew(t *testing.T) {
	client, err := fetch.New("x", fetch.Config{UserAgents: []string{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"}})
	require.NoError(t, err)
	_, err = New(Config{BaseURL: "https://a.test"}, client)
	assert.Error(t, err)
	_, err = New(Config{ID: "a"}, client)
	assert.Error(t, err)
	_, err = New(Config{ID: "a", BaseURL: "https://a.test"}, nil)
	assert.Error(t, err)

	a, err := New(Config{ID: "Mixed", BaseURL: "https://a.test/"}, client)
	require.NoError(t, err)
	assert.Equal(t, "mixed", a.ID())
	assert.Equal(t, "https://a.test", a.cfg.SiteURL)
}

func TestSearchArrayPayload(t *testing.T) {
	a, rec := newAdapter(t, arrayPayload)

	st := &contract.SearchTest{
		Name:     "bare array",
		Adapter:  a,
		Query:    source.SearchQuery{Query: "landscape", Page: 3, Limit: 500, Filters: map[string]string{"rating": "general"}},
		MinItems: 2,
		Validate: func(t *testing.T, items []source.Item) {
			require.Len(t, items, 2)
			first := items[0]
			assert.Equal(t, "101", first.ID)
			assert.Equal(t, "demo", first.Source)
			assert.Empty(t, first.Title, "posts have no title and none is invented")
			assert.Equal(t, "https://board.test/index.php?page=post&s=view&id=101", first.URL)
			assert.Equal(t, []string{"landscape", "sky"}, first.Tags)
			require.NotNil(t, first.Score)
			assert.Equal(t, 12.0, *first.Score)
			assert.Equal(t, []source.MediaRef{
				{Kind: source.MediaImage, URL: "https://img.test/101.jpg"},
				{Kind: source.MediaSample, URL: "https://img.test/s101.jpg"},
				{Kind: source.MediaThumbnail, URL: "https://img.test/t101.jpg"},
			}, first.MediaRefs)
			assert.Equal(t, 1920, first.Extra["width"])
			assert.Equal(t, "Demo Board", first.Extra["site"])

			video := items[1]
			assert.Equal(t, "102", video.ID)
			assert.Equal(t, source.MediaVideo, video.MediaRefs[0].Kind)
			assert.Equal(t, source.MediaVideo, video.Extra["media_type"])
			assert.NotContains(t, video.Extra, "width")
		},
	}
	st.Run(t)

	q := rec.last()
	assert.Equal(t, "dapi", q.Get("page"))
	assert.Equal(t, "post", q.Get("s"))
	assert.Equal(t, "index", q.Get("q"))
	assert.Equal(t, "1", q.Get("json"))
	assert.Equal(t, "landscape rating:general", q.Get("tags"))
	assert.Equal(t, "100", q.Get("limit"), "limit is capped")
	assert.Equal(t, "2", q.Get("pid"), "pid is zero-based")
}

func TestSearchWrappedAndEmpty(t *testing.T) {
	a, _ := newAdapter(t, wrappedPayload)
	items, err := a.Search(context.Background(), source.SearchQuery{Query: "cat"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, "mod", items[0].Extra["owner"])

	for _, body := range []string{"", "  \n", `{"@attributes": {"count": 0}}`, `[]`} {
		a, _ := newAdapter(t, body)
		items, err := a.Search(context.Background(), source.SearchQuery{Query: "nothing"})
		require.NoError(t, err, "body %q", body)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
}

func TestSearchSchemaDrift(t *testing.T) {
	for _, body := range []string{`<?xml version="1.0"?><posts/>`, `[{"id": "abc"}]`, `{"post": 5}`} {
		a, _ := newAdapter(t, body)
		_, err := a.Search(context.Background(), source.SearchQuery{})
		assert.Equal(t, source.KindSchemaMismatch, source.KindOf(err), "body %q", body)
	}
}

func TestDetail(t *testing.T) {
	a, rec := newAdapter(t, wrappedPayload)

	item, err := a.Detail(context.Background(), "7")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "id:7", rec.last().Get("tags"))
	assert.Equal(t, "1", rec.last().Get("limit"))

	item, err = a.Detail(context.Background(), "8")
	require.NoError(t, err)
	assert.Nil(t, item, "a post with a different id is not a match")

	item, err = a.Detail(context.Background(), "7 rating:explicit")
	require.NoError(t, err)
	assert.Nil(t, item, "non-numeric ids never reach the upstream")
	assert.Len(t, rec.calls, 2)
}

func TestRandom(t *testing.T) {
	draws := []int{2, 7}
	a, rec := newAdapter(t, arrayPayload, WithRand(func(n int) int {
		d := draws[0]
		draws = draws[1:]
		require.Less(t, d, n)
		return d
	}))

	items, err := a.Random(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	q := rec.last()
	assert.Equal(t, "latest", q.Get("tags"))
	assert.Equal(t, "7", q.Get("pid"))
	assert.Equal(t, "5", q.Get("limit"))

	draws = []int{0, 3}
	_, err = a.Random(context.Background(), 1, map[string]string{"tags": "sky"})
	require.NoError(t, err)
	q = rec.last()
	assert.Equal(t, "sky", q.Get("tags"))
	assert.Equal(t, "1", q.Get("limit"))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, isVideo("https://x.test/a.WEBM"))
	assert.True(t, isVideo("https://x.test/a.mp4?download=1"))
	assert.False(t, isVideo("https://x.test/a.gif"))
	assert.False(t, isVideo(""))
}
