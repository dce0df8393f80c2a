package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"contentgw/internal/source"
)

// Classify maps a Get failure onto the adapter error taxonomy.
func Classify(sourceID string, err error) *source.AdapterError {
	if err == nil {
		return nil
	}
	var ae *source.AdapterError
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return source.NewError(source.KindUnavailable, sourceID, "circuit open", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return source.NewError(source.KindTimeout, sourceID, "upstream timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return source.NewError(source.KindTimeout, sourceID, "upstream timed out", err)
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusNotFound:
			return source.NewError(source.KindNotFound, sourceID, "upstream has no such resource", err)
		case se.StatusCode == http.StatusTooManyRequests:
			return source.NewError(source.KindRateLimited, sourceID, "upstream rate limited", err)
		default:
			return source.NewError(source.KindUnavailable, sourceID, "upstream error status", err)
		}
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return source.NewError(source.KindSchemaMismatch, sourceID, "response too large", err)
	}
	return source.NewError(source.KindUnavailable, sourceID, "request failed", err)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// DecodeJSON unmarshals a response body, reporting a schema mismatch on failure.
func DecodeJSON(sourceID string, resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return source.NewError(source.KindSchemaMismatch, sourceID, "undecodable payload", err)
	}
	return nil
}
