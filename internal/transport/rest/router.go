// Package rest exposes the template service over HTTP.
package rest

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benjaminschreck/go-clause/internal/service"
	"github.com/benjaminschreck/go-clause/internal/transport/rest/handler"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// Container holds all dependencies for the router
type Container struct {
	Templates      *service.TemplateService
	Metrics        *Metrics
	Gatherer       prometheus.Gatherer
	Logger         *clause.Logger
	MaxUploadBytes int64
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = clause.NopLogger()
	}

	var observer handler.Observer
	if c.Metrics != nil {
		observer = c.Metrics
		r.Use(c.Metrics.Middleware)
	}
	r.Use(requestLogger(logger))

	templateHandler := handler.NewTemplateHandler(c.Templates, observer, logger, c.MaxUploadBytes)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	if c.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/detect", templateHandler.Detect).Methods("POST")
	v1.HandleFunc("/templates", templateHandler.Create).Methods("POST")
	v1.HandleFunc("/templates/{id}", templateHandler.Get).Methods("GET")
	v1.HandleFunc("/templates/{id}/html", templateHandler.UpdateHTML).Methods("PUT")
	v1.HandleFunc("/templates/{id}/questionnaire", templateHandler.UpdateQuestionnaire).Methods("PUT")
	v1.HandleFunc("/templates/{id}/import", templateHandler.Import).Methods("POST")
	v1.HandleFunc("/templates/{id}/render", templateHandler.Render).Methods("POST")
	v1.HandleFunc("/templates/{id}/export", templateHandler.Export).Methods("POST")
	v1.HandleFunc("/templates/{id}/validate", templateHandler.Validate).Methods("GET")

	return r
}

func requestLogger(logger *clause.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if logger.IsDebugMode() {
				logger.WithFields(clause.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"duration": time.Since(start).String(),
				}).Debug("Request served")
			}
		})
	}
}
