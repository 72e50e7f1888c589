package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/api"
	"github.com/elskow/sphere-accounts/internal/auth"
	"github.com/elskow/sphere-accounts/internal/observability"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Handler *Handler
	Guard   *auth.Guard
	Metrics *observability.Metrics
	DB      Pinger
	Logger  *zap.Logger
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(dep.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Route(api.RoutePrefix, func(r chi.Router) {
		r.Post(api.RouteRegister, dep.Handler.Register)
		r.Post(api.RouteLogin, dep.Handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireSession(dep.Guard))
			r.Get(api.RouteProfile, dep.Handler.GetProfile)
			r.Put(api.RouteProfile, dep.Handler.UpdateProfile)
		})
	})

	if dep.Metrics != nil {
		r.Method(http.MethodGet, api.RouteMetrics, dep.Metrics.Handler())
	}
	r.Get(api.RouteHealth, health(dep.DB))

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "database unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
	}
}
