package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/wangbinyq/ja-tokenizer/internal/dictionary"
	"github.com/wangbinyq/ja-tokenizer/internal/metrics"
	"github.com/wangbinyq/ja-tokenizer/internal/tokenizer"
)

var (
	ErrTextTooLarge  = errors.New("text exceeds size limit")
	ErrBatchTooLarge = errors.New("batch exceeds size limit")
	ErrBusy          = errors.New("server is at capacity")
)

// Options bounds the work a Handler accepts.
type Options struct {
	// MaxTextBytes is the largest text accepted, and the largest total of
	// all texts in one batch. Zero means 1 MiB.
	MaxTextBytes int

	// MaxBatch is the largest number of texts in one batch. Zero means 256.
	MaxBatch int

	// MaxInflight bounds concurrent tokenize calls. Zero is unbounded.
	MaxInflight int

	// RateLimit is requests per second across all routes. Zero disables it.
	RateLimit float64
	RateBurst int

	Version string
}

// Handler holds HTTP handlers for the tokenizer API.
type Handler struct {
	tok     *tokenizer.Tokenizer
	opts    Options
	metrics *metrics.Metrics
	logger  *slog.Logger

	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewHandler creates a Handler serving tok. m may be nil.
func NewHandler(tok *tokenizer.Tokenizer, opts Options, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = 1 << 20
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = 256
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	h := &Handler{
		tok:     tok,
		opts:    opts,
		metrics: m,
		logger:  logger.With("component", "http"),
	}
	if opts.MaxInflight > 0 {
		h.sem = semaphore.NewWeighted(int64(opts.MaxInflight))
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	m.SetDictionary(tok.Dictionary().Stats())
	return h
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Tokenize.
	mux.HandleFunc("GET /tokenize", h.wrap("/tokenize", h.handleTokenizeQuery))
	mux.HandleFunc("POST /tokenize", h.wrap("/tokenize", h.handleTokenizeBody))
	mux.HandleFunc("POST /tokenize/batch", h.wrap("/tokenize/batch", h.handleTokenizeBatch))

	// Feature lookup.
	mux.HandleFunc("GET /feature", h.wrap("/feature", h.handleFeature))

	// Probes and service info.
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

// --- Tokenize ---

func (h *Handler) handleTokenizeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("text") {
		writeError(w, http.StatusBadRequest, "query parameter text is required")
		return
	}
	h.respondTokens(w, r, toValidUTF8(q.Get("text")))
}

func (h *Handler) handleTokenizeBody(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}
	if !h.decodeBody(w, r, int64(h.opts.MaxTextBytes), &req) {
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	h.respondTokens(w, r, *req.Text)
}

func (h *Handler) respondTokens(w http.ResponseWriter, r *http.Request, text string) {
	tokens, err := h.tokenize(r.Context(), text)
	if err != nil {
		h.writeTokenizeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeTokens(tokens))
}

func (h *Handler) handleTokenizeBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Texts []string `json:"texts"`
	}
	// The whole batch shares one text budget.
	if !h.decodeBody(w, r, int64(h.opts.MaxTextBytes), &req) {
		return
	}
	if req.Texts == nil {
		writeError(w, http.StatusBadRequest, "texts is required")
		return
	}
	if len(req.Texts) > h.opts.MaxBatch {
		h.writeTokenizeError(w, fmt.Errorf("%w: %d texts, limit %d", ErrBatchTooLarge, len(req.Texts), h.opts.MaxBatch))
		return
	}
	total := 0
	for _, text := range req.Texts {
		total += len(text)
	}
	if total > h.opts.MaxTextBytes {
		h.writeTokenizeError(w, fmt.Errorf("%w: %d text bytes, limit %d", ErrBatchTooLarge, total, h.opts.MaxTextBytes))
		return
	}

	results := make([][]tokenJSON, len(req.Texts))
	g, ctx := errgroup.WithContext(r.Context())
	for i, text := range req.Texts {
		g.Go(func() error {
			tokens, err := h.tokenize(ctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			results[i] = encodeTokens(tokens)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.writeTokenizeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// tokenize runs one text through a fresh worker once admitted.
func (h *Handler) tokenize(ctx context.Context, text string) ([]tokenizer.Token, error) {
	if len(text) > h.opts.MaxTextBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTextTooLarge, len(text), h.opts.MaxTextBytes)
	}
	if h.sem != nil {
		if err := h.sem.Acquire(ctx, 1); err != nil {
			h.metrics.Reject("busy")
			return nil, fmt.Errorf("%w: %w", ErrBusy, err)
		}
		defer h.sem.Release(1)
	}
	defer h.metrics.WorkerStarted()()

	tokens, err := h.tok.Tokenize(text)
	if err != nil {
		return nil, err
	}
	h.countTokens(tokens)
	return tokens, nil
}

func (h *Handler) countTokens(tokens []tokenizer.Token) {
	var counts [3]int
	for _, t := range tokens {
		counts[tokenizer.LexTypeCode(t.Word.LexType)]++
	}
	h.metrics.AddTokens(dictionary.LexTypeUnknown, counts[0])
	h.metrics.AddTokens(dictionary.LexTypeSystem, counts[1])
	h.metrics.AddTokens(dictionary.LexTypeUser, counts[2])
}

func (h *Handler) writeTokenizeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTextTooLarge), errors.Is(err, ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrBusy):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("tokenize failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Feature ---

func (h *Handler) handleFeature(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("id") {
		writeError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}
	id, err := strconv.ParseUint(q.Get("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return
	}

	var sel *uint8
	if q.Has("lex_type") {
		v, err := strconv.ParseUint(q.Get("lex_type"), 10, 8)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lex_type: "+err.Error())
			return
		}
		b := uint8(v)
		sel = &b
	}

	feature, err := h.tok.Feature(uint32(id), sel)
	if err != nil {
		if errors.Is(err, dictionary.ErrUnknownAddress) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"feature": feature,
	})
}

// --- Service info ---

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.opts.Version,
	})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":       "ja-tokenizer",
		"version":    h.opts.Version,
		"engine":     h.tok.Engine().Name(),
		"dictionary": h.tok.Dictionary().Stats(),
	})
}

// --- Helpers ---

// toValidUTF8 replaces each invalid byte with U+FFFD, the same substitution
// encoding/json applies to request bodies, so GET and POST see one text.
func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		b.WriteRune(r)
	}
	return b.String()
}

// decodeBody decodes a JSON request body of at most limit bytes of text.
// It writes the error response and returns false on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) bool {
	// JSON escaping can expand text up to six-fold.
	r.Body = http.MaxBytesReader(w, r.Body, 6*limit+4096)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// wrap applies rate limiting, metrics and access logging to an API route.
func (h *Handler) wrap(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if h.limiter != nil && !h.limiter.Allow() {
			h.metrics.Reject("rate_limited")
			writeError(rec, http.StatusTooManyRequests, "rate limit exceeded")
		} else {
			fn(rec, r)
		}

		elapsed := time.Since(start)
		h.metrics.ObserveRequest(route, rec.status, elapsed)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
