package app

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ykvlv/health-reminders/internal/engine"
)

type reminderAPI interface {
	Snapshot() engine.Snapshot
	Reconcile(ctx context.Context) error
}

// newHTTPHandler serves probes and a read-only view of reminder state.
func newHTTPHandler(rem reminderAPI, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/reminders", func(w http.ResponseWriter, req *http.Request) {
		snap := rem.Snapshot()
		if req.URL.Query().Get("format") == "yaml" {
			out, err := snap.YAML()
			if err != nil {
				log.Error("encode yaml failed", zap.Error(err))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(out)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			log.Warn("encode json failed", zap.Error(err))
		}
	})

	r.Post("/reconcile", func(w http.ResponseWriter, req *http.Request) {
		if err := rem.Reconcile(req.Context()); err != nil {
			log.Warn("reconcile via http failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}
