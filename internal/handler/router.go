/*
Package handler provides the HTTP handlers and routing setup for the tutorial API server.

This file defines the main Router, applying request id, logging, panic recovery, CORS and
IP-based rate limiting before delegating requests to the REST and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/resp"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "API Tutorial Server"

// Router sets up the main HTTP routing table for the application.
// Every response it produces, including unknown routes and wrong methods, is a response envelope.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(resp.Recoverer)

	// Set before any sub-router is mounted so chi copies them down.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		resp.RespondError(w, r, errs.NewError(errs.ErrMethodNotAllowed))
	})

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		writes := api.With(deps.WriteLimiter.Middleware)

		api.Get("/hello", HandleHello())
		writes.Post("/create-data", HandleCreateData())

		api.Get("/search", HandleSearchUsers(deps))

		api.Get("/users", HandleListUsers(deps))
		writes.Post("/users", HandleCreateUser(deps))

		// Non-numeric ids do not match and fall through to the not-found envelope.
		api.Get("/users/{id:[0-9]+}", HandleGetUser(deps))
		writes.Put("/users/{id:[0-9]+}", HandleReplaceUser(deps))
		writes.Patch("/users/{id:[0-9]+}", HandlePatchUser(deps))
		writes.Delete("/users/{id:[0-9]+}", HandleDeleteUser(deps))
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader))

	return r
}

// HandleHealth reports liveness plus a few counters useful when poking at the tutorial.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":      "ok",
			"service":     ServiceName,
			"users":       deps.Store.Count(),
			"connections": deps.Hub.ConnectionCount(),
		}
		resp.RespondSuccess(w, r, http.StatusOK, data, "Service is healthy.")
	}
}
