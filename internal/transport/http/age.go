package httptransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"contentgw/internal/ageverify"
	"contentgw/pkg/requestcontext"
)

type verificationResponse struct {
	Identity      string     `json:"identity"`
	Verified      bool       `json:"verified"`
	AccessGranted bool       `json:"access_granted"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	// ExpiresIn is in whole seconds.
	ExpiresIn int  `json:"expires_in,omitempty"`
	Reused    bool `json:"reused,omitempty"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

type confirmResponse struct {
	Identity      string    `json:"identity"`
	Verified      bool      `json:"verified"`
	AccessGranted bool      `json:"access_granted"`
	VerifiedAt    time.Time `json:"verified_at"`
}

func (h *Handler) handleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.age.RequestVerification(ctx, requestcontext.ClientIP(ctx))
	if errors.Is(err, ageverify.ErrIdentityRequired) {
		writeError(w, http.StatusBadRequest, "bad_request", "client identity could not be determined")
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "age verification request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "storage_failure", "verification is temporarily unavailable")
		return
	}
	writeJSON(w, http.StatusOK, verificationResponse{
		Identity:      status.Identity,
		Verified:      status.Verified,
		AccessGranted: status.Verified,
		Token:         status.Token,
		ExpiresAt:     status.ExpiresAt,
		ExpiresIn:     int(status.ExpiresIn / time.Second),
		Reused:        status.Reused,
	})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req confirmRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "token is required")
		return
	}

	conf, err := h.age.Confirm(ctx, req.Token)
	switch {
	case errors.Is(err, ageverify.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "invalid_token", "invalid verification token")
		return
	case errors.Is(err, ageverify.ErrExpiredToken):
		writeError(w, http.StatusBadRequest, "expired_token", "verification token expired, request a new one")
		return
	case err != nil:
		h.logger.ErrorContext(ctx, "age confirmation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "storage_failure", "verification could not be recorded")
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{
		Identity:      conf.Identity,
		Verified:      true,
		AccessGranted: true,
		VerifiedAt:    conf.VerifiedAt,
	})
}
