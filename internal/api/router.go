package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealgrid/fitscore/internal/config"
	"github.com/dealgrid/fitscore/internal/events"
	"github.com/dealgrid/fitscore/internal/recalc"
	"github.com/dealgrid/fitscore/internal/scoring"
	"github.com/dealgrid/fitscore/internal/store"
)

func NewRouter(s store.Store, ev events.Client, engine *scoring.Engine, rc *recalc.Recalculator, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(240))

	universes := NewUniversesHandler(s, engine)
	deals := NewDealsHandler(s)
	buyers := NewBuyersHandler(s)
	scores := NewScoresHandler(s, ev, engine, cfg.Scoring.BatchConcurrency, logger)
	decisions := NewDecisionsHandler(s, ev)
	adjustments := NewAdjustmentsHandler(s, rc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/universes", universes.List)
		r.Get("/universes/{id}", universes.Get)

		r.Post("/universes/{id}/deals", deals.Create)
		r.Get("/universes/{id}/deals", deals.List)
		r.Get("/deals/{id}", deals.Get)

		r.Post("/universes/{id}/buyers", buyers.Create)
		r.Get("/universes/{id}/buyers", buyers.List)
		r.Get("/buyers/{id}", buyers.Get)
		r.Patch("/buyers/{id}", buyers.Update)

		r.Post("/universes/{id}/deals/{deal_id}/score", scores.ScoreDeal)
		r.Post("/universes/{id}/deals/{deal_id}/buyers/{buyer_id}/score", scores.ScorePair)
		r.Get("/scores", scores.List)
		r.Get("/scores/{id}", scores.Get)
		r.Get("/scoring/explain/{score_id}", scores.Explain)

		r.Post("/scores/{id}/decision", decisions.Create)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Post("/universes", universes.Create)
			r.Patch("/universes/{id}", universes.Update)
			r.Get("/deals/{id}/adjustments", adjustments.Get)
			r.Post("/deals/{id}/recalc", adjustments.Recalc)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
