package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchOnly struct{ id string }

func (s searchOnly) ID() string                                      { return s.id }
func (searchOnly) Family() Family                                    { return FamilyScrape }
func (searchOnly) Search(context.Context, SearchQuery) ([]Item, error) { return nil, nil }

type fullAdapter struct{ searchOnly }

func (fullAdapter) Family() Family                                 { return FamilyAPI }
func (fullAdapter) Detail(context.Context, string) (*Item, error) { return nil, nil }
func (fullAdapter) Trending(context.Context, int) ([]Item, error) { return nil, nil }
func (fullAdapter) Random(context.Context, int, map[string]string) ([]Item, error) {
	return nil, nil
}
func (fullAdapter) Seasonal(context.Context, int, string, int) ([]Item, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(fullAdapter{searchOnly{id: "jikan"}}))
	require.NoError(t, r.Register(searchOnly{id: "tube"}))

	t.Run("duplicate id rejected", func(t *testing.T) {
		assert.Error(t, r.Register(searchOnly{id: "tube"}))
	})

	t.Run("empty id rejected", func(t *testing.T) {
		assert.Error(t, r.Register(searchOnly{}))
	})

	t.Run("lookup is case insensitive on input", func(t *testing.T) {
		a, err := r.Get("JIKAN")
		require.NoError(t, err)
		assert.Equal(t, "jikan", a.ID())
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := r.Get("nope")
		assert.ErrorIs(t, err, ErrUnknownSource)
	})

	t.Run("families and ordering", func(t *testing.T) {
		all := r.All()
		require.Len(t, all, 2)
		assert.Equal(t, "jikan", all[0].ID())
		assert.Len(t, r.ByFamily(FamilyScrape), 1)
		assert.Len(t, r.ByFamily(FamilyAPI), 1)
	})
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, []string{OpSearch}, Capabilities(searchOnly{id: "x"}))
	assert.Equal(t,
		[]string{OpSearch, OpDetail, OpTrending, OpRandom, OpSeasonal},
		Capabilities(fullAdapter{searchOnly{id: "y"}}),
	)
	assert.False(t, Supports(searchOnly{id: "x"}, OpTrending))
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("kind survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("search: %w", NewError(KindSchemaMismatch, "kitsu", "missing data", nil))
		assert.Equal(t, KindSchemaMismatch, KindOf(err))
		assert.False(t, IsRetryable(err))
	})

	t.Run("retryable kinds", func(t *testing.T) {
		assert.True(t, IsRetryable(NewError(KindUnavailable, "a", "503", nil)))
		assert.True(t, IsRetryable(NewError(KindTimeout, "a", "slow", nil)))
		assert.True(t, IsRetryable(NewError(KindRateLimited, "a", "429", nil)))
		assert.False(t, IsRetryable(NotSupported("a", OpSeasonal)))
	})

	t.Run("bare deadline is a timeout", func(t *testing.T) {
		assert.Equal(t, KindTimeout, KindOf(fmt.Errorf("get: %w", context.DeadlineExceeded)))
	})

	t.Run("unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	})

	t.Run("underlying error reachable", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewError(KindUnavailable, "jikan", "request failed", cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "jikan")
	})
}

func TestItemHelpers(t *testing.T) {
	item := NewItem("jikan", "1")
	require.NoError(t, item.Validate())

	item.AddMedia(MediaCover, "")
	item.AddMedia(MediaCover, "https://cdn.example.test/1.jpg")
	assert.Len(t, item.MediaRefs, 1)

	var missing *int
	episodes := 12
	item.SetExtra("episodes", &episodes)
	item.SetExtra("rank", missing)
	item.SetExtra("rating", "")
	assert.Equal(t, map[string]any{"episodes": 12}, item.Extra)

	bad := Item{Source: "jikan"}
	assert.Error(t, bad.Validate())
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"Action", "comedy"}, NormalizeTags([]string{" Action", "comedy", "action ", ""}))
	assert.Equal(t, []string{}, NormalizeTags(nil))
	assert.Equal(t, []string{"long_hair", "1girl"}, SplitTags("  long_hair 1girl\tlong_hair "))
}
