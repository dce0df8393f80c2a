package listing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/internal/source"
	"contentgw/internal/source/contract"
	"contentgw/internal/source/fetch"
)

const listingPage = `<!doctype html>
<html><body>
<div class="thumb-block">
  <a href="/video-abc123/first_clip"><img data-src="https://thumbs.test/1.jpg" src="/lazy.gif"></a>
  <p class="title">First <b>clip</b> &amp; more<script>alert(1)</script></p>
  <span class="duration"> 10 min </span>
  <p class="metadata">1.2M views</p>
</div>
<div class="thumb-block">
  <a href="/video-def456/second?ref=home" title="Second from attribute"><img src="/t/2.jpg"></a>
  <span class="duration">5 min</span>
</div>
<div class="thumb-block">
  <a href="javascript:void(0)">broken</a>
</div>
<div class="thumb-block">
  <p class="title">no link at all</p>
</div>
<div class="thumb-block">
  <a href="/video-ghi789/third"><img src="/t/3.jpg"></a>
  <p class="title">Third</p>
</div>
</body></html>`

var testSelectors = Selectors{
	Block:    ".thumb-block",
	Link:     "a",
	Title:    ".title",
	Duration: ".duration",
	Thumb:    "img",
	Meta:     ".metadata",
}

type pathRecorder struct {
	mu   sync.Mutex
	last string
}

func newAdapter(t *testing.T, body string, opts ...Option) (*Adapter, *pathRecorder) {
	t.Helper()
	rec := &pathRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.last = r.URL.RequestURI()
		rec.mu.Unlock()
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		assert.NotEmpty(t, r.Header.Get("Referer"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := fetch.New("clips", fetch.Config{
		UserAgents:              []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		Timeout:                 2 * time.Second,
		BreakerFailureThreshold: 100,
	}, fetch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	a, err := New(Config{
		ID:         "Clips",
		Name:       "Clip Site",
		BaseURL:    srv.URL,
		SearchPath: "/search/{query}/{page0}",
		BrowsePath: "/?page={page0}",
	}, NewSelectorExtractor(testSelectors), client, opts...)
	require.NoError(t, err)
	return a, rec
}

func (r *pathRecorder) path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestSearch(t *testing.T) {
	a, rec := newAdapter(t, listingPage)

	st := &contract.SearchTest{
		Name:     "extracts listing blocks",
		Adapter:  a,
		Query:    source.SearchQuery{Query: "funny cats", Page: 2},
		MinItems: 3,
		Validate: func(t *testing.T, items []source.Item) {
			require.Len(t, items, 3, "blocks without a usable link are skipped")

			first := items[0]
			assert.Equal(t, "first_clip", first.ID)
			assert.Equal(t, "clips", first.Source)
			assert.Equal(t, "First clip & more", first.Title, "markup and scripts are stripped")
			assert.True(t, strings.HasSuffix(first.URL, "/video-abc123/first_clip"))
			assert.Equal(t, []source.MediaRef{{Kind: source.MediaThumbnail, URL: "https://thumbs.test/1.jpg"}}, first.MediaRefs)
			assert.Equal(t, "10 min", first.Extra["duration"])
			assert.Equal(t, "1.2M views", first.Extra["additional_info"])
			assert.Equal(t, true, first.Extra["requires_age_verification"])
			assert.Equal(t, "Clip Site", first.Extra["site"])

			second := items[1]
			assert.Equal(t, "second", second.ID, "query strings are not part of the id")
			assert.Equal(t, "Second from attribute", second.Title)
			require.Len(t, second.MediaRefs, 1)
			assert.True(t, strings.HasSuffix(second.MediaRefs[0].URL, "/t/2.jpg"), "relative thumbnails are resolved")
			assert.NotContains(t, second.Extra, "additional_info")
		},
	}
	st.Run(t)
	assert.Equal(t, "/search/funny%20cats/1", rec.path())
}

func TestSearchLimitAndBrowse(t *testing.T) {
	a, rec := newAdapter(t, listingPage)

	items, err := a.Search(context.Background(), source.SearchQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "/?page=0", rec.path(), "an empty query browses")
}

func TestSelectorDrift(t *testing.T) {
	a, _ := newAdapter(t, `<html><body><div class="renamed-block"><a href="/v/1">x</a></div></body></html>`)

	items, err := a.Search(context.Background(), source.SearchQuery{Query: "x"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRandom(t *testing.T) {
	draws := []int{3, 4}
	a, rec := newAdapter(t, listingPage, WithRand(func(n int) int {
		d := draws[0]
		draws = draws[1:]
		return d
	}))

	items, err := a.Random(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "/search/top/4", rec.path(), "page 5 is page0 4")
	for _, item := range items {
		assert.Equal(t, true, item.Extra["requires_age_verification"])
	}
}

func TestUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := fetch.New("clips", fetch.Config{
		UserAgents: []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"},
	}, fetch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	a, err := New(Config{ID: "clips", BaseURL: srv.URL, SearchPath: "/s/{query}", BrowsePath: "/"}, NewSelectorExtractor(testSelectors), client)
	require.NoError(t, err)

	et := &contract.ErrorTest{
		Name: "blocked",
		Call: func(ctx context.Context) error {
			_, err := a.Search(ctx, source.SearchQuery{Query: "x"})
			return err
		},
		ExpectedKind:  source.KindUnavailable,
		ExpectedRetry: true,
	}
	et.Run(t)
}

func TestNewValidation(t *testing.T) {
	client, err := fetch.New("clips", fetch.Config{
		UserAgents: []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"},
	})
	require.NoError(t, err)
	ext := NewSelectorExtractor(testSelectors)
	good := Config{ID: "a", BaseURL: "https://a.test", SearchPath: "/s", BrowsePath: "/"}

	_, err = New(good, ext, client)
	require.NoError(t, err)

	bad := good
	bad.BaseURL = "not a url"
	_, err = New(bad, ext, client)
	assert.Error(t, err)

	bad = good
	bad.SearchPath = ""
	_, err = New(bad, ext, client)
	assert.Error(t, err)

	_, err = New(good, nil, client)
	assert.Error(t, err)
	_, err = New(good, ext, nil)
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "/search/a%2Fb%20c/2", expand("/search/{query}/{page}", "a/b c", 2))
	assert.Equal(t, "/?k=a%2Fb+c&p=1", expand("/?k={query}&p={page0}", "a/b c", 2))
	assert.Equal(t, "/", expand("/", "ignored", 1))
}

func TestExtractorDirect(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage))
	require.NoError(t, err)
	page, _ := url.Parse("https://clips.test/search/x/0")

	entries := NewSelectorExtractor(Selectors{Block: ".thumb-block", Link: "a"}).Extract(doc, page, 10)
	require.Len(t, entries, 3)
	assert.Equal(t, "https://clips.test/video-abc123/first_clip", entries[0].Link)
	assert.Empty(t, entries[0].Title, "no title selector and no title attribute")
	assert.Empty(t, entries[0].Thumb)
	assert.Equal(t, "Second from attribute", entries[1].Title)
}

func TestExtractorSkipsRepeatedItems(t *testing.T) {
	body := `<html><body>
<section class="featured">
  <div class="thumb-block"><a href="/video-abc123/first_clip"><p class="title">Featured first</p></a></div>
</section>
<div class="thumb-block"><a href="/video-abc123/first_clip"><p class="title">First again</p></a></div>
<div class="thumb-block"><a href="/video-def456/second"><p class="title">Second</p></a></div>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	page, _ := url.Parse("https://clips.test/")

	entries := NewSelectorExtractor(testSelectors).Extract(doc, page, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, "Featured first", entries[0].Title, "the first occurrence wins")
	assert.Equal(t, "second", entries[1].ID)
}
