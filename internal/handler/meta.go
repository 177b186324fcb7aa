package handler

import (
	"net/http"
	"time"
)

const apiVersion = "1.0.0"

// MetaHandler serves the unauthenticated liveness and API info routes.
type MetaHandler struct {
	env string
}

// NewMetaHandler creates a new MetaHandler.
func NewMetaHandler(env string) *MetaHandler {
	return &MetaHandler{env: env}
}

// HandleHealth handles GET /health requests.
func (h *MetaHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, envelope{
		"message":     "TaskFlow API is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}

// HandleAPIInfo handles GET /api requests.
func (h *MetaHandler) HandleAPIInfo(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, envelope{
		"message": "Welcome to TaskFlow API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"auth":  "/api/auth",
			"tasks": "/api/tasks",
		},
	})
}

// HandleNotFound is the fallback for unknown routes.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	fail(w, http.StatusNotFound, "Route not found: "+r.Method+" "+r.URL.Path)
}
