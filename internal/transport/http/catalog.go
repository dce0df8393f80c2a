package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentgw/internal/aggregate"
	"contentgw/internal/cache"
	"contentgw/internal/source"
	"contentgw/pkg/requestcontext"
)

func (h *Handler) handleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sources": h.catalog.Sources()})
}

// handleCatalog serves the list operations. Every query parameter is passed
// through; the facade separates paging from adapter filters.
func (h *Handler) handleCatalog(operation string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		res := h.catalog.Execute(ctx, aggregate.Query{
			Operation: operation,
			Source:    chi.URLParam(r, "source"),
			Params:    queryParams(r),
			Identity:  requestcontext.ClientIP(ctx),
		})
		writeResult(w, res)
	}
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := h.catalog.Execute(ctx, aggregate.Query{
		Operation: source.OpDetail,
		Source:    chi.URLParam(r, "source"),
		Params:    cache.Params{"id": chi.URLParam(r, "id")},
		Identity:  requestcontext.ClientIP(ctx),
	})
	writeResult(w, res)
}

// queryParams keeps the first value of each parameter.
func queryParams(r *http.Request) cache.Params {
	params := cache.Params{}
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			params.Set(name, values[0])
		}
	}
	return params
}
