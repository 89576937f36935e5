package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bbkr/squishyid/pkg/codec"
	"github.com/bbkr/squishyid/pkg/registry"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
)

const defaultMaxValueSize = 8 << 10

// Server holds the API server state
type Server struct {
	codec    *codec.SquishyID
	registry IRegistry
	config   ServerConfig
	metrics  *Metrics
	logger   *slog.Logger
}

// NewServer creates a new API server. registry may be nil, in which case the
// /ids routes are not mounted.
func NewServer(c *codec.SquishyID, registry IRegistry, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if config.MaxValueSize <= 0 {
		config.MaxValueSize = defaultMaxValueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		codec:    c,
		registry: registry,
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
}

// pathParam returns the unescaped URL parameter. chi matches against the raw
// path when the request path needed escaping, so only then is it unescaped.
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

// codecErrorStatus maps a Decode error to an HTTP status
func codecErrorStatus(err error) int {
	if codec.IsInputError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeID decodes the {id} path parameter, writing the error response
// itself when that fails.
func (s *Server) decodeID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	encoded, err := pathParam(r, "id")
	if err != nil {
		sendError(w, "Invalid ID encoding", http.StatusBadRequest)
		return 0, false
	}

	start := time.Now()
	id, err := s.codec.Decode(encoded)
	s.metrics.RecordCodecOperation("decode", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), codecErrorStatus(err))
		return 0, false
	}
	return id, true
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode godoc
//
//	@Summary		Encode a number
//	@Description	Encode an unsigned 64-bit integer using characters from the key
//	@Tags			codec
//	@Accept			json
//	@Produce		json
//	@Param			value	path		string	true	"Decimal unsigned 64-bit integer"
//	@Success		200		{object}	CodecResponse
//	@Failure		400		{object}	APIResponse
//	@Router			/encode/{value} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	value, err := strconv.ParseUint(chi.URLParam(r, "value"), 10, 64)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false, time.Since(start))
		sendError(w, "Value must be an unsigned 64-bit integer", http.StatusBadRequest)
		return
	}

	encoded := s.codec.Encode(value)
	s.metrics.RecordCodecOperation("encode", true, time.Since(start))

	sendSuccess(w, CodecResponse{Value: value, Encoded: encoded})
}

// handleDecode godoc
//
//	@Summary		Decode a string
//	@Description	Decode a string made of key characters back into a number
//	@Tags			codec
//	@Accept			json
//	@Produce		json
//	@Param			encoded	path		string	true	"Encoded value"
//	@Success		200		{object}	CodecResponse
//	@Failure		400		{object}	APIResponse
//	@Router			/decode/{encoded} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	encoded, err := pathParam(r, "encoded")
	if err != nil {
		sendError(w, "Invalid encoding", http.StatusBadRequest)
		return
	}

	start := time.Now()
	value, err := s.codec.Decode(encoded)
	s.metrics.RecordCodecOperation("decode", err == nil, time.Since(start))
	if err != nil {
		sendError(w, err.Error(), codecErrorStatus(err))
		return
	}

	sendSuccess(w, CodecResponse{Value: value, Encoded: encoded})
}

// handleCreateID godoc
//
//	@Summary		Register a value
//	@Description	Store a value under the next sequential ID and return the ID squished
//	@Tags			ids
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateIDRequest	true	"Value to store"
//	@Success		201		{object}	IDResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		500		{object}	APIResponse
//	@Router			/ids [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateID(w http.ResponseWriter, r *http.Request) {
	var req CreateIDRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxValueSize+64)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.metrics.RecordRegistryOperation("create", false)
		sendError(w, "Invalid JSON request", http.StatusBadRequest)
		return
	}

	if req.Value == "" {
		s.metrics.RecordRegistryOperation("create", false)
		sendError(w, "value is required", http.StatusBadRequest)
		return
	}
	if int64(len(req.Value)) > s.config.MaxValueSize {
		s.metrics.RecordRegistryOperation("create", false)
		sendError(w, fmt.Sprintf("value exceeds %d bytes", s.config.MaxValueSize), http.StatusBadRequest)
		return
	}

	entry, err := s.registry.Create(req.Value)
	if err != nil {
		s.metrics.RecordRegistryOperation("create", false)
		s.logger.Error("failed to create entry", "error", err)
		sendError(w, fmt.Sprintf("Failed to create entry: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordRegistryOperation("create", true)
	sendJSON(w, http.StatusCreated, IDResponse{
		ID:        s.codec.Encode(entry.ID),
		Ref:       entry.Ref.String(),
		Value:     entry.Value,
		CreatedAt: entry.CreatedAt,
	})
}

// handleGetID godoc
//
//	@Summary		Look up a value
//	@Description	Decode the squished ID and return the stored value
//	@Tags			ids
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"Squished ID"
//	@Success		200	{object}	IDResponse
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/ids/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetID(w http.ResponseWriter, r *http.Request) {
	id, ok := s.decodeID(w, r)
	if !ok {
		s.metrics.RecordRegistryOperation("read", false)
		return
	}

	entry, err := s.registry.Read(id)
	if err != nil {
		s.metrics.RecordRegistryOperation("read", false)
		if errors.Is(err, registry.ErrNotFound) {
			sendError(w, "ID not found", http.StatusNotFound)
			return
		}
		s.logger.Error("failed to read entry", "id", id, "error", err)
		sendError(w, fmt.Sprintf("Failed to read entry: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordRegistryOperation("read", true)
	sendSuccess(w, IDResponse{
		ID:        s.codec.Encode(entry.ID),
		Value:     entry.Value,
		CreatedAt: entry.CreatedAt,
	})
}

// handleDeleteID godoc
//
//	@Summary		Delete a value
//	@Description	Delete the entry behind a squished ID. The reference returned on creation is required.
//	@Tags			ids
//	@Accept			json
//	@Produce		json
//	@Param			id	path		string	true	"Squished ID"
//	@Param			ref	query		string	true	"Reference returned on creation"
//	@Success		200	{object}	map[string]string
//	@Failure		400	{object}	APIResponse
//	@Failure		403	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Failure		500	{object}	APIResponse
//	@Router			/ids/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteID(w http.ResponseWriter, r *http.Request) {
	ref, err := ksuid.Parse(r.URL.Query().Get("ref"))
	if err != nil {
		s.metrics.RecordRegistryOperation("delete", false)
		sendError(w, "ref query parameter must be a KSUID", http.StatusBadRequest)
		return
	}

	id, ok := s.decodeID(w, r)
	if !ok {
		s.metrics.RecordRegistryOperation("delete", false)
		return
	}

	if err := s.registry.Delete(id, ref); err != nil {
		s.metrics.RecordRegistryOperation("delete", false)
		switch {
		case errors.Is(err, registry.ErrNotFound):
			sendError(w, "ID not found", http.StatusNotFound)
		case errors.Is(err, registry.ErrRefMismatch):
			sendError(w, "Reference does not match", http.StatusForbidden)
		default:
			s.logger.Error("failed to delete entry", "id", id, "error", err)
			sendError(w, fmt.Sprintf("Failed to delete entry: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordRegistryOperation("delete", true)
	sendSuccess(w, map[string]string{"message": "ID deleted successfully"})
}

// handleStats godoc
//
//	@Summary		Get codec and registry statistics
//	@Description	Get the key radix, the longest encoding, the number of registry entries and the next squished ID
//	@Tags			diagnostics
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}
//	@Failure		500	{object}	APIResponse
//	@Router			/stats [get]
//	@Security		ApiKeyAuth
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"radix":      s.codec.Radix(),
		"max_length": s.codec.MaxLength(),
	}

	if s.registry != nil {
		count, err := s.registry.Count()
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to count entries: %v", err), http.StatusInternalServerError)
			return
		}
		next, err := s.registry.NextID()
		if err != nil {
			sendError(w, fmt.Sprintf("Failed to read sequence: %v", err), http.StatusInternalServerError)
			return
		}
		stats["entries"] = count
		stats["next_id"] = s.codec.Encode(next)
	}

	sendSuccess(w, stats)
}

// updateMetrics refreshes gauges that are not updated per request
func (s *Server) updateMetrics() {
	if s.registry == nil {
		return
	}
	count, err := s.registry.Count()
	if err != nil {
		s.logger.Warn("failed to count registry entries", "error", err)
		return
	}
	s.metrics.UpdateRegistryStats(count)
}
