package httptransport

import (
	"net/http"

	"github.com/goccy/go-json"

	"contentgw/pkg/requestcontext"
)

const maxBodyBytes = 64 << 10

type classifyTextRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) handleClassifyText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req classifyTextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid classify request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	writeResult(w, h.safety.ClassifyText(ctx, requestcontext.ClientIP(ctx), req.Text, req.ImageURL))
}

func (h *Handler) handleClassifyURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeResult(w, h.safety.ClassifyURL(ctx, requestcontext.ClientIP(ctx), r.URL.Query().Get("url")))
}

func (h *Handler) handleModerateImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeResult(w, h.safety.ModerateImage(ctx, requestcontext.ClientIP(ctx), r.URL.Query().Get("url")))
}
