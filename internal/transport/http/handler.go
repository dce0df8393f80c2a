package httptransport

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"contentgw/internal/aggregate"
	"contentgw/internal/ageverify/models"
	"contentgw/internal/safety"
	"contentgw/internal/source"
	"contentgw/internal/tasks"
)

// Catalog is the read side of the facade used by the catalog routes.
type Catalog interface {
	Execute(ctx context.Context, q aggregate.Query) aggregate.Result[any]
	Sources() []aggregate.SourceInfo
}

// Safety runs the classification operations of the facade.
type Safety interface {
	ClassifyText(ctx context.Context, identity, text, imageURL string) aggregate.Result[aggregate.ContentAnalysis]
	ClassifyURL(ctx context.Context, identity, rawURL string) aggregate.Result[safety.URLAssessment]
	ModerateImage(ctx context.Context, identity, imageURL string) aggregate.Result[safety.ImageModeration]
}

// AgeGate issues and confirms age-verification tokens.
type AgeGate interface {
	RequestVerification(ctx context.Context, identity string) (*models.Status, error)
	Confirm(ctx context.Context, token string) (*models.Confirmation, error)
}

// Tasks is the download bookkeeping store.
type Tasks interface {
	Start(ctx context.Context, target string) (tasks.Task, error)
	Update(ctx context.Context, id string, progress float64) (tasks.Task, error)
	Finish(ctx context.Context, id string, cause error) (tasks.Task, error)
	Get(ctx context.Context, id string) (tasks.Task, error)
	Remove(ctx context.Context, id string)
}

// Handler is the thin HTTP layer. It maps requests onto the services and
// shapes responses; it holds no business rules.
type Handler struct {
	catalog Catalog
	safety  Safety
	age     AgeGate
	tasks   Tasks
	logger  *slog.Logger
}

func New(catalog Catalog, safety Safety, age AgeGate, tasks Tasks, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog: catalog,
		safety:  safety,
		age:     age,
		tasks:   tasks,
		logger:  logger,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/sources", h.handleSources)
		r.Route("/{source}", func(r chi.Router) {
			r.Get("/search", h.handleCatalog(source.OpSearch))
			r.Get("/trending", h.handleCatalog(source.OpTrending))
			r.Get("/random", h.handleCatalog(source.OpRandom))
			r.Get("/seasonal", h.handleCatalog(source.OpSeasonal))
			r.Get("/items/{id}", h.handleDetail)
		})

		r.Post("/safety/text", h.handleClassifyText)
		r.Get("/safety/url", h.handleClassifyURL)
		r.Get("/safety/image", h.handleModerateImage)

		r.Post("/age/verify", h.handleRequestVerification)
		r.Post("/age/confirm", h.handleConfirm)

		r.Post("/tasks", h.handleStartTask)
		r.Get("/tasks/{id}", h.handleGetTask)
		r.Put("/tasks/{id}/progress", h.handleTaskProgress)
		r.Post("/tasks/{id}/finish", h.handleFinishTask)
		r.Delete("/tasks/{id}", h.handleRemoveTask)
	})
}
