package models

import (
	"time"
)

// Policy names a sliding window: at most MaxEvents admissions per Window.
type Policy struct {
	Name      string
	MaxEvents int
	Window    time.Duration
}

const (
	// PolicyScrape guards every upstream catalog and scrape call.
	PolicyScrape = "scrape"
	// PolicyClassify guards safety classification.
	PolicyClassify = "classify"
)

// Result is the outcome of one admission attempt.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is in whole seconds and only set on denial.
	RetryAfter int `json:"retry_after,omitempty"`
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds, never
// below one.
func RetryAfterSeconds(now, resetAt time.Time) int {
	wait := resetAt.Sub(now)
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// NewKey builds the window key for a policy and identity. Policy names are
// fixed and colon free, so the identity is everything after the second ':'
// and is used unchanged.
func NewKey(policy, identity string) string {
	return "rl:" + policy + ":" + identity
}
