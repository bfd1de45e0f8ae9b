package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/lindenrow/rootline/core/errors"
	"github.com/lindenrow/rootline/core/gedcom"
	"github.com/lindenrow/rootline/core/lineage"
	"github.com/lindenrow/rootline/core/search"
	"github.com/lindenrow/rootline/internal/fetch"
	"github.com/lindenrow/rootline/internal/formats"
	"github.com/lindenrow/rootline/internal/formats/ged"
	"github.com/lindenrow/rootline/internal/logging"
	"github.com/lindenrow/rootline/internal/store"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status       string   `json:"status"`
	Version      string   `json:"version"`
	Uptime       string   `json:"uptime"`
	Datasets     int      `json:"datasets"`
	Formats      []string `json:"formats"`
	SQLiteDriver string   `json:"sqliteDriver"`
}

// defaultGenerations is used when a traversal request does not say how
// deep to walk.
const defaultGenerations = 5

var startTime = time.Now()

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "Rootline API",
		"version": version,
		"endpoints": []string{
			"GET /health",
			"POST /parse",
			"POST /datasets",
			"GET /datasets",
			"GET /datasets/:id",
			"DELETE /datasets/:id",
			"GET /datasets/:id/ancestors",
			"GET /datasets/:id/descendants",
			"GET /datasets/:id/search",
			"GET /datasets/:id/gedcom",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.store.List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:       "ok",
		Version:      version,
		Uptime:       time.Since(startTime).Round(time.Second).String(),
		Datasets:     len(datasets),
		Formats:      formats.Names(),
		SQLiteDriver: store.DriverName(),
	})
}

// acquire obtains the raw buffer for a parse-style request: the request
// body, or the target of a url query parameter when the body is empty.
func (s *Server) acquire(r *http.Request) ([]byte, error) {
	if url := r.URL.Query().Get("url"); url != "" {
		return fetch.FromURL(r.Context(), url, nil)
	}
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 64<<20))
	if err != nil {
		return nil, errors.NewIO("read", "request body", err)
	}
	if len(data) == 0 {
		return nil, errors.NewValidation("input",
			"GEDCOM file is empty or could not be read")
	}
	return data, nil
}

// parseBuffer routes the buffer through the requested or detected format
// handler.
func parseBuffer(data []byte, format string) (*gedcom.ParseResult, error) {
	var h formats.Handler
	var err error
	if format == "" || format == "auto" {
		h, err = formats.DetectHandler(data)
	} else {
		h, err = formats.Lookup(format)
	}
	if err != nil {
		return nil, err
	}
	return h.Parse(data)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	data, err := s.acquire(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	res, err := parseBuffer(data, r.URL.Query().Get("format"))
	if err != nil {
		respondErr(w, err)
		return
	}
	logging.InfoContext(r.Context(), "parsed",
		"individuals", res.Meta.Individuals, "families", res.Meta.Families)
	respond(w, http.StatusOK, res)
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	data, err := s.acquire(r)
	if err != nil {
		respondErr(w, err)
		return
	}
	res, err := parseBuffer(data, r.URL.Query().Get("format"))
	if err != nil {
		respondErr(w, err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "dataset"
	}
	ds, err := s.store.Save(r.Context(), name, data, res)
	if err != nil {
		respondErr(w, err)
		return
	}
	logging.DatasetEvent("saved", ds.ID, ds.Individuals, ds.Families)
	respond(w, http.StatusCreated, ds)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := s.store.List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondTotal(w, http.StatusOK, datasets, len(datasets))
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	ds, res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"dataset": ds,
		"result":  res,
	})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		respondErr(w, err)
		return
	}
	logging.DatasetEvent("deleted", id, 0, 0)
	respond(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	s.handleTraversal(w, r, "ancestors", lineage.Ancestors)
}

func (s *Server) handleDescendants(w http.ResponseWriter, r *http.Request) {
	s.handleTraversal(w, r, "descendants", lineage.Descendants)
}

func (s *Server) handleTraversal(w http.ResponseWriter, r *http.Request, direction string,
	walk func(*gedcom.ParseResult, string, int) (*lineage.Result, error)) {

	root := r.URL.Query().Get("root")
	if root == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ARGUMENT", "Root Person ID is required")
		return
	}
	maxGen := defaultGenerations
	if raw := r.URL.Query().Get("generations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "generations must be an integer")
			return
		}
		maxGen = n
	}
	maxGen = clampGenerations(maxGen)

	_, res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	result, err := walk(res, root, maxGen)
	if err != nil {
		respondErr(w, err)
		return
	}

	logging.TraversalEvent(direction, result.Root,
		len(result.Generations), len(result.Nodes), len(result.Edges))
	s.hub.BroadcastProgress(ProgressMessage{
		Type:      "complete",
		Operation: direction,
		Message:   "traversal complete",
		Data: map[string]interface{}{
			"root":        result.Root,
			"generations": len(result.Generations),
			"nodes":       len(result.Nodes),
			"edges":       len(result.Edges),
		},
	})
	respond(w, http.StatusOK, result)
}

// clampGenerations bounds a requested depth to the supported range.
func clampGenerations(n int) int {
	if n < 1 {
		return 1
	}
	if n > lineage.MaxGenerations {
		return lineage.MaxGenerations
	}
	return n
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	_, res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	matches, err := search.Filter(res, query)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondTotal(w, http.StatusOK, matches, len(matches))
}

func (s *Server) handleEmit(w http.ResponseWriter, r *http.Request) {
	_, res, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	text, err := ged.Emit(res)
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// respond writes a success envelope.
func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

// respondTotal writes a success envelope with a total count.
func respondTotal(w http.ResponseWriter, status int, data interface{}, total int) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

// respondErr maps a core error onto an HTTP status and error code.
func respondErr(w http.ResponseWriter, err error) {
	var (
		notFound    *errors.NotFoundError
		validation  *errors.ValidationError
		unsupported *errors.UnsupportedError
		decode      *errors.DecodeError
		parse       *errors.ParseError
		ioErr       *errors.IOError
	)
	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.As(err, &unsupported):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
	case errors.As(err, &decode):
		respondError(w, http.StatusUnprocessableEntity, "DECODE_FAILED", err.Error())
	case errors.As(err, &parse):
		respondError(w, http.StatusUnprocessableEntity, "PARSE_FAILED", err.Error())
	case errors.As(err, &ioErr):
		respondError(w, http.StatusBadGateway, "UPSTREAM_FAILED", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("encode response", "error", err)
	}
}
