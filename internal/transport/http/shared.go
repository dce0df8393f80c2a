package httptransport

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"contentgw/internal/aggregate"
	"contentgw/internal/source"
)

// errorBody is the envelope for failures that never reached the facade.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}

// writeResult maps a facade outcome onto a status code and rate-limit
// headers, then writes the envelope as is.
func writeResult[T any](w http.ResponseWriter, res aggregate.Result[T]) {
	if rl := res.RateLimit; rl != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
		if !rl.ResetAt.IsZero() {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))
		}
		if res.Outcome == aggregate.OutcomeRateLimited && rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
		}
	}
	writeJSON(w, statusFor(res.Outcome, res.Error), res)
}

func statusFor(outcome aggregate.Outcome, info *aggregate.ErrorInfo) int {
	switch outcome {
	case aggregate.OutcomeHit, aggregate.OutcomeFetched, aggregate.OutcomeEmpty:
		return http.StatusOK
	case aggregate.OutcomeRateLimited:
		return http.StatusTooManyRequests
	}
	if info == nil {
		return http.StatusBadGateway
	}
	switch info.Kind {
	case string(source.KindInvalidInput), string(source.KindNotSupported):
		return http.StatusBadRequest
	case aggregate.KindUnknownSource:
		return http.StatusNotFound
	case string(source.KindInternal):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}
