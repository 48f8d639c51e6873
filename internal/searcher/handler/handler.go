package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/stats"
	apperrors "github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/metrics"
)

// Retriever is satisfied by *retrieval.Context.
type Retriever interface {
	Score(q parser.Query) (ranker.RankedResult, error)
	Stats() (*stats.Statistics, error)
}

type Handler struct {
	retriever  Retriever
	cache      *cache.QueryCache
	metrics    *metrics.Metrics
	maxResults int
	logger     *slog.Logger
}

// New wires the HTTP handlers. queryCache and m may be nil.
func New(r Retriever, queryCache *cache.QueryCache, m *metrics.Metrics, maxResults int) *Handler {
	return &Handler{
		retriever:  r,
		cache:      queryCache,
		metrics:    m,
		maxResults: maxResults,
		logger:     slog.Default().With("component", "search-handler"),
	}
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/documents/{id}/terms", h.DocumentTerms)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search scores ?q= and returns the ranking. ?id= sets the query id and
// ?limit= truncates the ranking.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	q := parser.Query{Text: r.URL.Query().Get("q")}
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "id must be an integer")
			return
		}
		q.ID = id
	}

	limit := h.maxResults
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if h.maxResults <= 0 || parsed < h.maxResults {
			limit = parsed
		}
	}

	var result *ranker.RankedResult
	var err error
	cacheHit := false
	compute := func() (*ranker.RankedResult, error) {
		res, err := h.retriever.Score(q)
		if err != nil {
			return nil, err
		}
		return &res, nil
	}
	if h.cache != nil && len(q.Terms()) > 0 {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, q.Text, compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		log.Error("search execution failed", "query", q.Text, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}

	response := ranker.RankedResult{QueryID: q.ID, Results: result.Results}
	total := len(response.Results)
	if limit > 0 && total > limit {
		response.Results = response.Results[:limit]
	}

	took := time.Since(start)
	if h.metrics != nil {
		if cacheHit {
			h.metrics.CacheHitsTotal.Inc()
		} else {
			if h.cache != nil {
				h.metrics.CacheMissesTotal.Inc()
			}
			h.metrics.ObserveQuery(total, took)
		}
	}
	log.Info("search completed",
		"query_id", q.ID,
		"query", q.Text,
		"total_hits", total,
		"returned", len(response.Results),
		"cache_hit", cacheHit,
		"latency_ms", took.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, searchResponse{
		RankedResult: response,
		TotalHits:    total,
	})
}

type searchResponse struct {
	ranker.RankedResult
	TotalHits int `json:"total_hits"`
}

type documentTermsResponse struct {
	DocID  int                   `json:"doc_id"`
	Name   string                `json:"name"`
	Length int                   `json:"length"`
	Terms  []stats.TermFrequency `json:"terms"`
}

// DocumentTerms returns a document's terms ordered by frequency ascending.
func (h *Handler) DocumentTerms(w http.ResponseWriter, r *http.Request) {
	docID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || docID <= 0 {
		h.writeError(w, http.StatusBadRequest, "document id must be a positive integer")
		return
	}
	st, err := h.retriever.Stats()
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	name, err := st.Catalog().Name(docID)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), fmt.Sprintf("document %d not found", docID))
		return
	}
	length, _ := st.DocumentLength(docID)
	h.writeJSON(w, http.StatusOK, documentTermsResponse{
		DocID:  docID,
		Name:   name,
		Length: length,
		Terms:  st.PerDocumentTermFrequencies(docID),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
