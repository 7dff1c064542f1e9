package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/stocktracker/platform/health/http"
	platformobservability "github.com/shestoi/stocktracker/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер склада.
// readiness - функция готовности для /health (false -> 503).
// logger используется observability middleware (trace_id в логах).
func NewRouter(handler *Handler, readiness func() bool, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("stocktracker", logger))
	}

	router.Route("/items", func(r chi.Router) {
		r.Get("/", handler.ListItems)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", func(w http.ResponseWriter, r *http.Request) {
				handler.PutItem(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				handler.GetItem(w, r, chi.URLParam(r, "id"))
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				handler.DeleteItem(w, r, chi.URLParam(r, "id"))
			})
		})
	})

	router.Get("/categories", handler.ListCategories)
	router.Get("/categories/{category}/items", func(w http.ResponseWriter, r *http.Request) {
		handler.ListCategoryItems(w, r, chi.URLParam(r, "category"))
	})

	router.Get("/top", handler.TopItems)
	router.Post("/merge", handler.Merge)

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
