package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/auth"
	"github.com/ukydev/city-traffic/internal/middleware"
	"github.com/ukydev/city-traffic/internal/models"
)

// NewRouter wires the HTTP API. Command endpoints require a token with the
// matching permission when operator login is configured, and are open otherwise.
func NewRouter(simHandler *SimHandler, authService *auth.Service, logger *log.Entry) http.Handler {
	mux := http.NewServeMux()
	authHandler := NewAuthHandler(authService)
	authMiddleware := middleware.NewAuthMiddleware(authService)
	limiter := middleware.NewRateLimitMiddleware()
	commandLimit := limiter.RateLimit(60, time.Minute)
	loginLimit := limiter.RateLimit(10, time.Minute)

	command := func(action string, h http.HandlerFunc) http.Handler {
		var handler http.Handler = h
		if authService.OperatorEnabled() {
			handler = authMiddleware.Protect(action, handler)
		}
		return commandLimit(handler)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.Handle("POST /api/auth/token", loginLimit(http.HandlerFunc(authHandler.Token)))
	mux.HandleFunc("POST /api/auth/guest", authHandler.Guest)

	mux.HandleFunc("GET /api/snapshot", simHandler.Snapshot)
	mux.HandleFunc("GET /api/stats", simHandler.Stats)
	mux.HandleFunc("GET /api/network", simHandler.Network)
	mux.HandleFunc("GET /api/vehicles", simHandler.Vehicles)
	mux.HandleFunc("GET /api/vehicles/{id}", simHandler.Vehicle)
	mux.HandleFunc("GET /api/intersections", simHandler.Intersections)
	mux.HandleFunc("GET /api/accidents", simHandler.Accidents)
	mux.HandleFunc("GET /api/accidents/history", simHandler.AccidentHistory)
	mux.HandleFunc("GET /api/selection", simHandler.Selected)
	mux.HandleFunc("GET /ws", simHandler.Stream)

	mux.Handle("POST /api/intersections/{id}/toggle", command(models.ActionToggleSignal, simHandler.ToggleSignal))
	mux.Handle("POST /api/vehicles/{id}/select", command(models.ActionSelectVehicle, simHandler.SelectVehicle))
	mux.Handle("DELETE /api/selection", command(models.ActionSelectVehicle, simHandler.ClearSelection))
	mux.Handle("POST /api/pause", command(models.ActionPause, simHandler.Pause))

	return middleware.RequestLogger(logger)(mux)
}
