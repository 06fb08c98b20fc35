// Package server exposes the balance scanner over HTTP, together with
// provider health and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vietddude/ethscan"
)

// Server provides the balance API plus health and metrics endpoints.
type Server struct {
	monitor *Monitor
	caller  ethscan.Caller
	opts    ethscan.Options
	log     *slog.Logger
	server  *http.Server
}

// NewServer creates a new server listening on port.
func NewServer(port int, caller ethscan.Caller, opts ethscan.Options, monitor *Monitor) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		monitor: monitor,
		caller:  caller,
		opts:    opts,
		log:     log.With("component", "server"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/balances/ether", s.handleEther)
	mux.HandleFunc("POST /v1/balances/token", s.handleToken)
	mux.HandleFunc("POST /v1/balances/tokens", s.handleTokens)
	mux.HandleFunc("POST /v1/balances/matrix", s.handleMatrix)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := Overall(s.monitor.CheckHealth())

	code := http.StatusOK
	if status == StatusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": string(status)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
