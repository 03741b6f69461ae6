// Package feed serves the dashboard state over HTTP and websocket so other
// local tools can follow the same build the terminal shows.
package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"buildwatchdog/internal/metrics"
	"buildwatchdog/internal/models"
)

// Server wraps the HTTP listener and the latest published state.
type Server struct {
	httpServer *http.Server
	log        *log.Logger

	mu       sync.RWMutex
	state    models.DashboardState
	hasState bool
	subs     map[chan models.DashboardState]struct{}
}

// New creates a feed server for addr. A nil logger discards output.
func New(addr string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log:        logger,
		subs:       make(map[chan models.DashboardState]struct{}),
	}
	s.registerRoutes(mux)
	return s
}

// Handler exposes the routes without a listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks and serves HTTP traffic.
func (s *Server) Run() error {
	s.log.Info("live feed listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Publish replaces the current state and pushes it to every subscriber.
// Slow subscribers only ever see the newest state.
func (s *Server) Publish(state models.DashboardState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.hasState = true
	for ch := range s.subs {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Latest returns the last published state.
func (s *Server) Latest() (models.DashboardState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.hasState
}

func (s *Server) subscribe() (<-chan models.DashboardState, func()) {
	ch := make(chan models.DashboardState, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	if s.hasState {
		ch <- s.state
	}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"updated_at": nil,
			"events":     []models.BuildEvent{},
		})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	state, _ := s.Latest()
	writeJSON(w, http.StatusOK, metrics.Summarize(state.Snapshot))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
