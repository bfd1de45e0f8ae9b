// Package api provides the Rootline REST and WebSocket API server.
package api

import (
	"fmt"
	"net/http"

	"github.com/lindenrow/rootline/internal/logging"
	"github.com/lindenrow/rootline/internal/store"

	// handlers.go imports the ged handler directly; gedcomx registers
	// through its init.
	_ "github.com/lindenrow/rootline/internal/formats/gedcomx"
)

const version = "0.1.0"

// Server wires the dataset store and WebSocket hub behind the HTTP
// routes.
type Server struct {
	cfg   Config
	store *store.Store
	hub   *Hub
}

// NewServer builds a server around an open dataset store. The caller owns
// the store's lifetime.
func NewServer(cfg Config, st *store.Store) *Server {
	return &Server{cfg: cfg, store: st, hub: NewHub()}
}

// Handler returns the full middleware-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /parse", s.handleParse)
	mux.HandleFunc("POST /datasets", s.handleCreateDataset)
	mux.HandleFunc("GET /datasets", s.handleListDatasets)
	mux.HandleFunc("GET /datasets/{id}", s.handleGetDataset)
	mux.HandleFunc("DELETE /datasets/{id}", s.handleDeleteDataset)
	mux.HandleFunc("GET /datasets/{id}/ancestors", s.handleAncestors)
	mux.HandleFunc("GET /datasets/{id}/descendants", s.handleDescendants)
	mux.HandleFunc("GET /datasets/{id}/search", s.handleSearch)
	mux.HandleFunc("GET /datasets/{id}/gedcom", s.handleEmit)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	var handler http.Handler = mux
	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	handler = logging.CombinedMiddleware(handler)
	return handler
}

// Start opens the dataset store, starts the WebSocket hub, and serves
// until the listener fails.
func Start(cfg Config) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open dataset store: %w", err)
	}
	defer st.Close()

	srv := NewServer(cfg, st)
	go srv.hub.Run()

	logging.ServerStartup("rest_api", "http", cfg.Port,
		"db_path", cfg.DBPath,
		"sqlite_driver", store.DriverName())
	addr := fmt.Sprintf(":%d", cfg.Port)
	return http.ListenAndServe(addr, srv.Handler())
}

// corsMiddleware applies a permissive or origin-restricted CORS policy.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	allowedSet := map[string]bool{}
	for _, o := range allowed {
		allowedSet[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case origin == "":
			// Non-browser client; nothing to do.
		case len(allowedSet) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowedSet[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
