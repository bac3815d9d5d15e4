// Package server wires up the TF-IDF analyzer API routes and applies the
// middleware chain (RequestID → Metrics → Auth → RateLimit → Timeout).
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analytics"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth/ratelimit"
	"github.com/avdeevsm/tfidf-analyzer/internal/collection"
	dochandler "github.com/avdeevsm/tfidf-analyzer/internal/document/handler"
	"github.com/avdeevsm/tfidf-analyzer/pkg/health"
	"github.com/avdeevsm/tfidf-analyzer/pkg/metrics"
	pkgmw "github.com/avdeevsm/tfidf-analyzer/pkg/middleware"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// Deps bundles everything the router needs.
type Deps struct {
	Documents      *dochandler.Handler
	Collections    *collection.Handler
	Auth           *auth.Handler
	AuthService    *auth.Service
	Analytics      *analytics.Handler
	Health         *health.Checker
	Metrics        *metrics.Metrics
	Limiter        *ratelimit.Limiter
	RequestTimeout time.Duration
}

// New builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /api/v1/auth/register                          → create account
//	POST   /api/v1/auth/login                             → issue JWT
//	PATCH  /api/v1/auth/password                          → change password
//	DELETE /api/v1/auth/account                           → delete account
//	POST   /api/v1/documents                              → upload + analyze
//	GET    /api/v1/documents                              → list documents
//	GET    /api/v1/documents/{id}                         → get document
//	DELETE /api/v1/documents/{id}                         → delete document
//	GET    /api/v1/documents/{id}/statistics              → ranked word table
//	GET    /api/v1/documents/{id}/huffman                 → Huffman-encoded content
//	POST   /api/v1/collections                            → create collection
//	GET    /api/v1/collections                            → list collections
//	GET    /api/v1/collections/{id}                       → get collection
//	DELETE /api/v1/collections/{id}                       → delete collection
//	POST   /api/v1/collections/{id}/documents/{docID}     → add document
//	DELETE /api/v1/collections/{id}/documents/{docID}     → remove document
//	GET    /api/v1/collections/{id}/statistics            → collection table
//	GET    /api/v1/metrics                                → processing metrics
//	GET    /api/v1/status                                 → liveness (unauthenticated)
//	GET    /api/v1/version                                → build version (unauthenticated)
//	GET    /health/live                                   → liveness probe
//	GET    /health/ready                                  → readiness probe
//
// Middleware chain (outermost first):
//
//	RequestID → Metrics → Auth → RateLimit → Timeout → handler
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	// Probes and build info (unauthenticated)
	mux.HandleFunc("GET /health/live", deps.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", deps.Health.ReadyHandler())
	mux.HandleFunc("GET /api/v1/status", statusHandler)
	mux.HandleFunc("GET /api/v1/version", versionHandler)

	// Auth API
	mux.HandleFunc("POST /api/v1/auth/register", deps.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", deps.Auth.Login)
	mux.HandleFunc("PATCH /api/v1/auth/password", deps.Auth.ChangePassword)
	mux.HandleFunc("DELETE /api/v1/auth/account", deps.Auth.DeleteAccount)

	// Document API
	mux.HandleFunc("POST /api/v1/documents", deps.Documents.Upload)
	mux.HandleFunc("GET /api/v1/documents", deps.Documents.List)
	mux.HandleFunc("GET /api/v1/documents/{id}", deps.Documents.Get)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", deps.Documents.Delete)
	mux.HandleFunc("GET /api/v1/documents/{id}/statistics", deps.Documents.Statistics)
	mux.HandleFunc("GET /api/v1/documents/{id}/huffman", deps.Documents.Huffman)

	// Collection API
	mux.HandleFunc("POST /api/v1/collections", deps.Collections.Create)
	mux.HandleFunc("GET /api/v1/collections", deps.Collections.List)
	mux.HandleFunc("GET /api/v1/collections/{id}", deps.Collections.Get)
	mux.HandleFunc("DELETE /api/v1/collections/{id}", deps.Collections.Delete)
	mux.HandleFunc("POST /api/v1/collections/{id}/documents/{docID}", deps.Collections.AddDocument)
	mux.HandleFunc("DELETE /api/v1/collections/{id}/documents/{docID}", deps.Collections.RemoveDocument)
	mux.HandleFunc("GET /api/v1/collections/{id}/statistics", deps.Collections.Statistics)

	// Processing metrics
	mux.HandleFunc("GET /api/v1/metrics", deps.Analytics.Metrics)

	// Middleware chain — applied inside-out:
	// request → RequestID → Metrics → Auth → RateLimit → Timeout → mux
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var chain http.Handler = mux
	chain = pkgmw.Timeout(timeout)(chain)
	if deps.Limiter != nil {
		chain = auth.RateLimit(deps.Limiter)(chain)
	}
	chain = auth.Middleware(deps.AuthService)(chain)
	if deps.Metrics != nil {
		chain = pkgmw.Metrics(deps.Metrics)(chain)
	}
	chain = pkgmw.RequestID(chain)

	return chain
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": Version})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
