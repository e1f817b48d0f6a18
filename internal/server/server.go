// Package server exposes expression compilation over HTTP.
package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orizon-lang/exprir/internal/cli"
	"github.com/orizon-lang/exprir/internal/codegen"
	"github.com/orizon-lang/exprir/internal/errors"
)

const maxRequestBytes = 64 << 10

// Compilation outcomes recorded in exprir_compilations_total.
const (
	resultOK        = "ok"
	resultCached    = "cached"
	resultMalformed = "malformed"
	resultVerify    = "verify_failed"
	resultError     = "error"
)

// CompileRequest is the body of POST /compile. Empty fields fall back to
// the server's defaults.
type CompileRequest struct {
	Expression string `json:"expression"`
	Emit       string `json:"emit,omitempty"`
	Module     string `json:"module,omitempty"`
	Function   string `json:"function,omitempty"`
}

// CompileResponse is returned for a successful compilation.
type CompileResponse struct {
	Output string `json:"output"`
	Arity  int    `json:"arity"`
	Emit   string `json:"emit"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Server compiles expressions on request. Responses are cached by
// (emit, module, function, expression); compilation is deterministic so a
// cached entry never goes stale.
type Server struct {
	defaults codegen.Options
	cache    *lru.Cache
	log      *cli.Logger
	mux      *http.ServeMux

	registry     *prometheus.Registry
	compilations *prometheus.CounterVec
	latency      prometheus.Histogram
}

// New creates a Server. A cacheSize of zero disables caching.
func New(defaults codegen.Options, cacheSize int, log *cli.Logger) (*Server, error) {
	if log == nil {
		log = cli.NewLogger(false, false)
	}
	s := &Server{
		defaults: defaults,
		log:      log,
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exprir_compilations_total",
			Help: "Compile requests by emit kind and outcome.",
		}, []string{"emit", "result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exprir_compile_seconds",
			Help:    "Time spent compiling uncached expressions.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("server: create cache: %w", err)
		}
		s.cache = c
	}
	s.registry.MustRegister(s.compilations, s.latency)

	s.mux.HandleFunc("/compile", s.handleCompile)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}

	var req CompileRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	opts, err := s.options(req)
	if err != nil {
		s.compilations.WithLabelValues("unknown", resultError).Inc()
		s.writeError(w, err)
		return
	}
	emit := string(opts.Emit)

	key := cacheKey(opts, req.Expression)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.compilations.WithLabelValues(emit, resultCached).Inc()
			writeJSON(w, http.StatusOK, v.(*CompileResponse))
			return
		}
	}

	start := time.Now()
	res, err := codegen.Compile(req.Expression, opts)
	s.latency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.compilations.WithLabelValues(emit, outcome(err)).Inc()
		s.log.Debug("compile %q: %v", req.Expression, err)
		s.writeError(w, err)
		return
	}

	resp := &CompileResponse{Output: res.Output, Arity: res.Arity(), Emit: emit}
	if s.cache != nil {
		s.cache.Add(key, resp)
	}
	s.compilations.WithLabelValues(emit, resultOK).Inc()
	s.log.Info("compiled %q (%s, arity %d)", req.Expression, emit, resp.Arity)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) options(req CompileRequest) (codegen.Options, error) {
	opts := s.defaults
	if req.Module != "" {
		opts.ModuleName = req.Module
	}
	if req.Function != "" {
		opts.FunctionName = req.Function
	}
	if req.Emit != "" {
		opts.Emit = codegen.Emit(req.Emit)
	}
	emit, err := codegen.ParseEmit(string(opts.Emit))
	if err != nil {
		return opts, err
	}
	opts.Emit = emit
	if opts.ModuleName == "" {
		opts.ModuleName = codegen.DefaultOptions().ModuleName
	}
	if opts.FunctionName == "" {
		opts.FunctionName = codegen.DefaultOptions().FunctionName
	}
	return opts, nil
}

func cacheKey(opts codegen.Options, expr string) string {
	return strings.Join([]string{string(opts.Emit), opts.ModuleName, opts.FunctionName, expr}, "\x00")
}

func outcome(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrMalformedExpression):
		return resultMalformed
	case stderrors.Is(err, errors.ErrBackendVerification):
		return resultVerify
	default:
		return resultError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var se *errors.StandardError
	if stderrors.As(err, &se) {
		switch se.Category {
		case errors.CategorySyntax, errors.CategoryUsage:
			status = http.StatusBadRequest
		case errors.CategoryBackend:
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, ErrorResponse{Error: se.Error(), Code: se.Code})
		return
	}
	s.log.Error("compile: %v", err)
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
