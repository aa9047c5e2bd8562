// Package dashboard serves the branch topology API: tree analysis,
// branch/PR creation, view presets, and a websocket stream of analysis
// progress events.
package dashboard

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
	"github.com/angrygoose0/gitvis-sub000/internal/config"
	"github.com/angrygoose0/gitvis-sub000/internal/githubapi"
)

const (
	// requestLimit and requestWindow bound inbound API calls per
	// client address.
	requestLimit  = 60
	requestWindow = time.Minute
)

// Manager is the topology surface the server exposes.
type Manager interface {
	BranchTree(ctx context.Context, owner, repo string) (*contracts.BranchTreeResponse, error)
	CreateBranch(ctx context.Context, owner, repo, name, from string) error
	CreatePullRequest(ctx context.Context, owner, repo string, req contracts.CreatePullRequest) (*githubapi.PullRequest, error)
	Repos() []config.Repo
}

// Server is the dashboard HTTP server.
type Server struct {
	config     *config.Config
	manager    Manager
	hub        *Hub
	limiter    *RateLimiter
	logger     *log.Logger
	httpServer *http.Server
}

// NewServer wires the server. Call Start to begin serving.
func NewServer(cfg *config.Config, manager Manager) *Server {
	s := &Server{
		config:  cfg,
		manager: manager,
		hub:     NewHub(),
		limiter: NewRateLimiter(requestLimit, requestWindow),
		logger:  log.WithPrefix("dashboard"),
	}
	s.httpServer = &http.Server{
		Addr:    cfg.GetListenAddr(),
		Handler: s.routes(),
	}
	return s
}

// Hub returns the event hub, so the topology manager's progress events
// can be fed into it.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/repos", s.handleRepos)
	mux.HandleFunc("/api/repos/", s.handleRepoRoutes)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/ws/analysis", s.handleAnalysisWebSocket)
	return mux
}

// Start begins serving and blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// allow applies the inbound per-client rate limit.
func (s *Server) allow(w http.ResponseWriter, r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !s.limiter.Allow(host) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "err", err)
	}
}
