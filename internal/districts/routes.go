package districts

import (
	"net/http"

	"github.com/EmpoweredVote/civicsearch/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func (s *Service) SetupRoutes(adminTokenHash string) http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.ListDatasets)
	r.Get("/{dataset}/lookup", s.Lookup)
	r.Post("/{dataset}/match", s.Match)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware(adminTokenHash))
		r.Post("/{dataset}/reload", s.Reload)
	})

	return r
}
