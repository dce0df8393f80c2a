package aggregate

import (
	"time"

	"contentgw/internal/ratelimit/models"
)

// Outcome tells the caller how a result was produced.
type Outcome string

const (
	OutcomeHit         Outcome = "hit"
	OutcomeFetched     Outcome = "fetched"
	OutcomeEmpty       Outcome = "empty"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeFault       Outcome = "fault"
)

// Fault kinds produced by the facade itself. Adapter failures carry the
// source.ErrorKind values.
const (
	KindUnknownSource = "unknown_source"
	KindCanceled      = "canceled"
)

// Result is the envelope every facade operation returns. Data is set for
// hit, fetched and empty; RateLimit for rate_limited and, when known, for
// admitted calls; Error only for fault.
type Result[T any] struct {
	Outcome   Outcome        `json:"outcome"`
	Data      T              `json:"data"`
	RateLimit *RateLimitInfo `json:"rate_limit,omitempty"`
	Error     *ErrorInfo     `json:"error,omitempty"`
}

// OK reports whether the result carries data.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeHit || r.Outcome == OutcomeFetched || r.Outcome == OutcomeEmpty
}

// Any erases the data type, for callers that dispatch dynamically.
func (r Result[T]) Any() Result[any] {
	out := Result[any]{Outcome: r.Outcome, RateLimit: r.RateLimit, Error: r.Error}
	if r.OK() {
		out.Data = r.Data
	}
	return out
}

type RateLimitInfo struct {
	Policy     string    `json:"policy"`
	Count      int       `json:"count"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"`
}

// ErrorInfo is safe to show to clients: a kind and a generic message, never
// upstream detail.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func rateLimitInfo(policy string, r *models.Result) *RateLimitInfo {
	if r == nil {
		return nil
	}
	return &RateLimitInfo{
		Policy:     policy,
		Count:      r.Count,
		Limit:      r.Limit,
		Remaining:  r.Remaining,
		ResetAt:    r.ResetAt,
		RetryAfter: r.RetryAfter,
	}
}
