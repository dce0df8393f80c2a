package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	t.Run("insertion order does not matter", func(t *testing.T) {
		a := Params{}
		a.Set("q", "naruto").SetInt("page", 1).Set("source", "jikan")
		b := Params{}
		b.Set("source", "jikan").Set("q", "naruto").SetInt("page", 1)

		assert.Equal(t, NewKey("search", a), NewKey("search", b))
	})

	t.Run("numbers and their decimal strings normalize identically", func(t *testing.T) {
		a := Params{}
		a.SetInt("page", 1)
		b := Params{"page": "1"}

		assert.Equal(t, NewKey("search", a), NewKey("search", b))
	})

	t.Run("empty and whitespace values are dropped", func(t *testing.T) {
		a := Params{"q": "naruto", "genre": ""}
		b := Params{"q": " naruto ", "genre": "   "}
		c := Params{"q": "naruto"}

		assert.Equal(t, NewKey("search", c), NewKey("search", a))
		assert.Equal(t, NewKey("search", c), NewKey("search", b))
	})

	t.Run("query type separates keys", func(t *testing.T) {
		p := Params{"source": "jikan"}
		assert.NotEqual(t, NewKey("search", p), NewKey("trending", p))
	})

	t.Run("different values produce different keys", func(t *testing.T) {
		assert.NotEqual(t,
			NewKey("search", Params{"q": "naruto"}),
			NewKey("search", Params{"q": "bleach"}),
		)
	})

	t.Run("concatenation ambiguity does not collide", func(t *testing.T) {
		assert.NotEqual(t,
			NewKey("search", Params{"ab": "c"}),
			NewKey("search", Params{"a": "bc"}),
		)
	})

	t.Run("key is readable by query type", func(t *testing.T) {
		key := NewKey("detail", Params{"id": "1"})
		assert.Equal(t, "detail", queryTypeOf(key))
	})
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"limit": "25", "page": "x"}
	assert.Equal(t, 25, p.Int("limit", 10))
	assert.Equal(t, 1, p.Int("page", 1), "malformed falls back to default")
	assert.Equal(t, 7, p.Int("missing", 7))

	clone := p.Clone()
	clone.Set("limit", "1")
	assert.Equal(t, "25", p.Get("limit"))
}
