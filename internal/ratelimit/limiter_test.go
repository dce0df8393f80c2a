package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"contentgw/internal/ratelimit/metrics"
	"contentgw/internal/ratelimit/models"
	"contentgw/internal/ratelimit/store/bucket"
	"contentgw/pkg/requestcontext"
)

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (brokenStore) Sweep(context.Context) (int, error) { return 0, nil }

type LimiterSuite struct {
	suite.Suite
	limiter *Limiter
	metrics *metrics.Metrics
	t0      time.Time
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.metrics = metrics.New(prometheus.NewRegistry())
	l, err := New(
		models.Policy{Name: models.PolicyScrape, MaxEvents: 30, Window: time.Hour},
		bucket.NewInMemoryBucketStore(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
	s.limiter = l
	s.t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
}

func (s *LimiterSuite) TestScrapePolicyBoundary() {
	ctx := requestcontext.WithTime(context.Background(), s.t0)
	for i := range 30 {
		result, err := s.limiter.Admit(ctx, "203.0.113.7")
		s.Require().NoError(err)
		s.True(result.Allowed, "call %d", i+1)
		s.Equal(30-i-1, result.Remaining)
	}

	result, err := s.limiter.Admit(ctx, "203.0.113.7")
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(30, result.Count)
	s.Equal(30, result.Limit)
	s.Equal(3600, result.RetryAfter)

	later := requestcontext.WithTime(context.Background(), s.t0.Add(time.Hour+time.Second))
	result, err = s.limiter.Admit(later, "203.0.113.7")
	s.Require().NoError(err)
	s.True(result.Allowed)

	s.Equal(31.0, testutil.ToFloat64(s.metrics.Admissions.WithLabelValues(models.PolicyScrape)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Denials.WithLabelValues(models.PolicyScrape)))
}

func (s *LimiterSuite) TestDistinctIdentitiesGetDistinctKeys() {
	s.Equal("rl:scrape:2001:db8::1", models.NewKey(models.PolicyScrape, "2001:db8::1"))
	s.NotEqual(models.NewKey(models.PolicyScrape, "a:b"), models.NewKey(models.PolicyScrape, "a_b"))
	s.NotEqual(models.NewKey(models.PolicyScrape, "1.2.3.4"), models.NewKey(models.PolicyClassify, "1.2.3.4"))
}

func (s *LimiterSuite) TestStoreErrorSurfaces() {
	l, err := New(models.Policy{Name: "x", MaxEvents: 1, Window: time.Minute}, brokenStore{}, WithMetrics(s.metrics))
	s.Require().NoError(err)

	_, err = l.Admit(context.Background(), "id")
	s.ErrorContains(err, "connection refused")
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreErrors.WithLabelValues("x")))
}

func (s *LimiterSuite) TestNewValidation() {
	_, err := New(models.Policy{Name: "x", MaxEvents: 1, Window: time.Minute}, nil)
	s.Error(err)
	_, err = New(models.Policy{Name: "x", MaxEvents: 0, Window: time.Minute}, bucket.NewInMemoryBucketStore())
	s.Error(err)
	_, err = New(models.Policy{MaxEvents: 1, Window: time.Minute}, bucket.NewInMemoryBucketStore())
	s.Error(err)
}
