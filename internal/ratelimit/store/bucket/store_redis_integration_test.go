//go:build integration

package bucket

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/pkg/requestcontext"
	"contentgw/pkg/testutil/containers"
)

func TestRedisBucketStore(t *testing.T) {
	client := containers.NewRedisClient(t)
	store := NewRedisBucketStore(client)
	t0 := time.Now().Truncate(time.Millisecond)
	at := func(d time.Duration) context.Context {
		return requestcontext.WithTime(context.Background(), t0.Add(d))
	}

	t.Run("limit boundary", func(t *testing.T) {
		key := "rl:test:boundary"
		for i := range 3 {
			res, err := store.Allow(at(time.Duration(i)*time.Millisecond), key, 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, i+1, res.Count)
		}
		res, err := store.Allow(at(time.Second), key, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 3, res.Count)
		assert.Equal(t, t0.Add(time.Minute), res.ResetAt)
		assert.Equal(t, 59, res.RetryAfter)

		res, err = store.Allow(at(time.Minute+time.Second), key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("concurrent admissions never exceed the limit", func(t *testing.T) {
		key := "rl:test:concurrent"
		var wg sync.WaitGroup
		var allowed atomic.Int32
		for range 50 {
			wg.Go(func() {
				res, err := store.Allow(at(0), key, 10, time.Minute)
				if err == nil && res.Allowed {
					allowed.Add(1)
				}
			})
		}
		wg.Wait()
		assert.Equal(t, int32(10), allowed.Load())
	})
}
