package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.manager.Repos())
}

// handleRepoRoutes dispatches /api/repos/{owner}/{repo}/{action}.
func (s *Server) handleRepoRoutes(w http.ResponseWriter, r *http.Request) {
	owner, repo, action, err := parseRepoPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !s.allow(w, r) {
		return
	}

	switch {
	case action == "tree" && r.Method == http.MethodGet:
		s.handleTree(w, r, owner, repo)
	case action == "branches" && r.Method == http.MethodPost:
		s.handleCreateBranch(w, r, owner, repo)
	case action == "pulls" && r.Method == http.MethodPost:
		s.handleCreatePull(w, r, owner, repo)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// parseRepoPath splits /api/repos/{owner}/{repo}/{action}.
func parseRepoPath(path string) (owner, repo, action string, err error) {
	rest := strings.TrimPrefix(path, "/api/repos/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("expected /api/repos/{owner}/{repo}/{action}")
	}
	return parts[0], parts[1], parts[2], nil
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request, owner, repo string) {
	resp, err := s.manager.BranchTree(r.Context(), owner, repo)
	if err != nil {
		s.logger.Warn("branch tree failed", "repo", owner+"/"+repo, "err", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateBranch(w http.ResponseWriter, r *http.Request, owner, repo string) {
	var req contracts.CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.From == "" {
		http.Error(w, "name and from are required", http.StatusBadRequest)
		return
	}

	if err := s.manager.CreateBranch(r.Context(), owner, repo, req.Name, req.From); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name, "from": req.From})
}

func (s *Server) handleCreatePull(w http.ResponseWriter, r *http.Request, owner, repo string) {
	var req contracts.CreatePullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Head == "" || req.Base == "" {
		http.Error(w, "head and base are required", http.StatusBadRequest)
		return
	}

	pr, err := s.manager.CreatePullRequest(r.Context(), owner, repo, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusCreated, pr)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	presets, err := LoadPresets(s.config.GetPresetsPath())
	if err != nil {
		s.logger.Warn("failed to load presets", "err", err)
		http.Error(w, "failed to load presets", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, presets)
}
