// Package topology coordinates branch tree analysis for configured
// repositories: it fetches the branch list, runs the inference engine
// over the GitHub comparison endpoint, and persists the resolved
// relationships for the next run.
package topology

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/angrygoose0/gitvis-sub000/internal/analyzer"
	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
	"github.com/angrygoose0/gitvis-sub000/internal/config"
	"github.com/angrygoose0/gitvis-sub000/internal/githubapi"
	"github.com/angrygoose0/gitvis-sub000/internal/relcache"
)

// listMaxTries bounds retries of the branch-list fetch when the API
// reports an exhausted quota.
const listMaxTries = 3

// GitHub is the subset of the API client the manager needs.
type GitHub interface {
	GetRepository(ctx context.Context, owner, repo string) (*githubapi.Repository, error)
	ListBranches(ctx context.Context, owner, repo string) ([]githubapi.BranchRef, error)
	CompareRefs(ctx context.Context, owner, repo, base, head string) (*githubapi.Compare, error)
	CreateRef(ctx context.Context, owner, repo, branch, sha string) error
	CreatePull(ctx context.Context, owner, repo string, req githubapi.PullRequestInput) (*githubapi.PullRequest, error)
}

// Manager runs analyses. Concurrent requests for the same repository
// are serialized; the engine does not support overlapping runs per repo.
type Manager struct {
	cfg    *config.Config
	gh     GitHub
	cache  *relcache.Store
	logger *log.Logger

	mu       sync.Mutex
	inflight map[string]*repoLock

	// Events, when set, receives analysis progress updates.
	Events func(contracts.AnalysisEvent)
}

// New creates a Manager.
func New(cfg *config.Config, gh GitHub, cache *relcache.Store) *Manager {
	return &Manager{
		cfg:      cfg,
		gh:       gh,
		cache:    cache,
		logger:   log.WithPrefix("topology"),
		inflight: make(map[string]*repoLock),
	}
}

// repoComparator adapts the GitHub compare endpoint to the engine's
// Comparator interface for one repository.
type repoComparator struct {
	gh    GitHub
	owner string
	repo  string
}

func (c repoComparator) Compare(ctx context.Context, base, head string) (*analyzer.CompareResult, error) {
	cmp, err := c.gh.CompareRefs(ctx, c.owner, c.repo, base, head)
	if err != nil {
		return nil, err
	}
	return &analyzer.CompareResult{
		AheadBy:  cmp.AheadBy,
		BehindBy: cmp.BehindBy,
		Status:   cmp.Status,
	}, nil
}

// BranchTree analyzes a repository and returns its inferred branch
// topology. The branch-list fetch is retried with exponential backoff
// when rate limited; any other fetch failure is returned as-is. The
// analysis itself never fails (worst case it degrades to the name
// heuristic inside the engine).
func (m *Manager) BranchTree(ctx context.Context, owner, repo string) (*contracts.BranchTreeResponse, error) {
	unlock := m.lockRepo(owner, repo)
	defer unlock()

	trunk, err := m.defaultBranch(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	refs, err := m.listBranches(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	branches := make([]analyzer.Branch, len(refs))
	for i, ref := range refs {
		branches[i] = analyzer.Branch{
			Name:      ref.Name,
			CommitSHA: ref.Commit.SHA,
			Protected: ref.Protected,
		}
	}

	runID := uuid.NewString()
	repoKey := owner + "/" + repo

	eng := analyzer.New(repoComparator{gh: m.gh, owner: owner, repo: repo})
	eng.SetDelay(m.cfg.CompareDelay())
	if m.Events != nil {
		eng.Progress = func(p analyzer.Progress) {
			m.Events(contracts.AnalysisEvent{
				RunID:  runID,
				Repo:   repoKey,
				Phase:  p.Phase,
				Branch: p.Branch,
				Time:   time.Now(),
			})
		}
	}

	start := time.Now()
	m.logger.Info("analysis started", "repo", repoKey, "branches", len(branches), "run", runID)

	result := eng.CalculateBranchTree(ctx, branches, trunk, m.cache.Get(owner, repo))

	// Heuristic fallback output is unverified; keep whatever the cache
	// already holds instead of pinning guessed parents for a full TTL.
	if result.Degraded {
		m.logger.Warn("analysis degraded to name heuristic, cache left untouched", "repo", repoKey)
	} else {
		m.cache.Put(owner, repo, result.Relationships)
		if err := m.cache.Save(); err != nil {
			m.logger.Warn("failed to persist relationship cache", "err", err)
		}
	}

	m.logger.Info("analysis finished", "repo", repoKey, "took", time.Since(start).Round(time.Millisecond))

	return &contracts.BranchTreeResponse{
		Repo:          repoKey,
		DefaultBranch: trunk,
		Branches:      result.Branches,
		Connections:   result.Connections,
		RunID:         runID,
		GeneratedAt:   time.Now(),
	}, nil
}

// CreateBranch creates a new branch pointing at the tip of the source
// branch.
func (m *Manager) CreateBranch(ctx context.Context, owner, repo, name, from string) error {
	if name == "" || from == "" {
		return fmt.Errorf("branch name and source branch are required")
	}

	refs, err := m.listBranches(ctx, owner, repo)
	if err != nil {
		return err
	}

	sha := ""
	for _, ref := range refs {
		if ref.Name == from {
			sha = ref.Commit.SHA
			break
		}
	}
	if sha == "" {
		return fmt.Errorf("source branch %q not found", from)
	}

	if err := m.gh.CreateRef(ctx, owner, repo, name, sha); err != nil {
		return err
	}
	m.logger.Info("branch created", "repo", owner+"/"+repo, "branch", name, "from", from)
	return nil
}

// CreatePullRequest opens a pull request from head into base.
func (m *Manager) CreatePullRequest(ctx context.Context, owner, repo string, req contracts.CreatePullRequest) (*githubapi.PullRequest, error) {
	if req.Head == "" || req.Base == "" {
		return nil, fmt.Errorf("head and base branches are required")
	}
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("Merge %s into %s", req.Head, req.Base)
	}

	pr, err := m.gh.CreatePull(ctx, owner, repo, githubapi.PullRequestInput{
		Title: title,
		Head:  req.Head,
		Base:  req.Base,
		Body:  req.Body,
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("pull request opened", "repo", owner+"/"+repo, "number", pr.Number)
	return pr, nil
}

// Repos returns the configured repositories, sorted for stable output.
func (m *Manager) Repos() []config.Repo {
	repos := m.cfg.GetRepos()
	sort.Slice(repos, func(i, j int) bool {
		if repos[i].Owner != repos[j].Owner {
			return repos[i].Owner < repos[j].Owner
		}
		return repos[i].Name < repos[j].Name
	})
	return repos
}

// repoLock is a refcounted per-repo mutex; the count tracks holders
// and waiters so idle entries can be dropped from the inflight map.
type repoLock struct {
	mu   sync.Mutex
	refs int
}

// lockRepo serializes analyses per repository and returns the unlock
// func. The entry is removed once the last holder releases it, so the
// map stays bounded by the number of in-flight analyses.
func (m *Manager) lockRepo(owner, repo string) func() {
	key := owner + "/" + repo

	m.mu.Lock()
	lock, ok := m.inflight[key]
	if !ok {
		lock = &repoLock{}
		m.inflight[key] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		m.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(m.inflight, key)
		}
		m.mu.Unlock()
	}
}

// defaultBranch prefers the configured override, falling back to the
// repository metadata.
func (m *Manager) defaultBranch(ctx context.Context, owner, repo string) (string, error) {
	if r, ok := m.cfg.FindRepo(owner, repo); ok && r.DefaultBranch != "" {
		return r.DefaultBranch, nil
	}

	meta, err := m.gh.GetRepository(ctx, owner, repo)
	if err != nil {
		return "", err
	}
	if meta.DefaultBranch == "" {
		return "", fmt.Errorf("repository %s/%s reports no default branch", owner, repo)
	}
	return meta.DefaultBranch, nil
}

// listBranches fetches the branch list, retrying on quota exhaustion.
func (m *Manager) listBranches(ctx context.Context, owner, repo string) ([]githubapi.BranchRef, error) {
	op := func() ([]githubapi.BranchRef, error) {
		refs, err := m.gh.ListBranches(ctx, owner, repo)
		if err != nil {
			if errors.Is(err, githubapi.ErrRateLimited) {
				m.logger.Warn("rate limited listing branches, backing off", "repo", owner+"/"+repo)
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return refs, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(listMaxTries),
	)
}
