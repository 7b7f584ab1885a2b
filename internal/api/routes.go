package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// SetupRoutes configures all routes. Everything under /api requires an
// organization.
func SetupRoutes(h *Handlers, hc *HealthChecker, orgs *OrgContextProvider, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Organization-ID", "X-User-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Templates carry no tenant data.
		r.Get("/imports/template", h.DownloadTemplate)
		r.Get("/imports/template.xlsx", h.DownloadTemplateXLSX)

		r.Group(func(r chi.Router) {
			r.Use(orgs.Middleware)

			r.Get("/hierarchy", h.GetHierarchy)

			r.Route("/big-jobs", func(r chi.Router) {
				r.Post("/", h.CreateBigJob)
				r.Put("/{slug}", h.UpdateBigJob)
				r.Post("/{slug}/archive", h.ArchiveBigJob)
				r.Delete("/{slug}", h.DeleteBigJob)
			})
			r.Route("/little-jobs", func(r chi.Router) {
				r.Post("/", h.CreateLittleJob)
				r.Put("/{slug}", h.UpdateLittleJob)
				r.Post("/{slug}/archive", h.ArchiveLittleJob)
				r.Delete("/{slug}", h.DeleteLittleJob)
			})
			r.Route("/outcomes", func(r chi.Router) {
				r.Post("/", h.CreateOutcome)
				r.Put("/{slug}", h.UpdateOutcome)
				r.Post("/{slug}/archive", h.ArchiveOutcome)
				r.Delete("/{slug}", h.DeleteOutcome)
			})

			r.Route("/surveys", func(r chi.Router) {
				r.Get("/", h.ListSurveys)
				r.Put("/{code}", h.UpsertSurvey)
				r.Put("/{code}/results/{outcomeSlug}", h.UpsertOutcomeResult)
				r.Get("/{code}/projection", h.GetProjection)
			})
			r.Get("/outcomes-long", h.GetOutcomesLong)
			r.Get("/research-rounds", h.GetResearchRounds)
			r.Get("/change-logs", h.GetChangeLogs)

			r.Get("/dataset", h.ExportDataset)
			r.Post("/dataset/restore", h.RestoreDataset)

			r.Route("/members", func(r chi.Router) {
				r.Get("/", h.ListMembers)
				r.Post("/", h.AddMember)
				r.Put("/{id}", h.UpdateMemberRole)
				r.Delete("/{id}", h.RemoveMember)
			})

			r.Route("/imports", func(r chi.Router) {
				r.Post("/", h.UploadImport)
				r.Get("/{id}", h.GetImport)
				r.Put("/{id}/rows/{index}", h.OverrideImportRow)
				r.Post("/{id}/commit", h.CommitImport)
			})
		})
	})

	return r
}
