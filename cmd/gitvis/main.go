package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/angrygoose0/gitvis-sub000/internal/analyzer"
	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
	"github.com/angrygoose0/gitvis-sub000/internal/config"
	"github.com/angrygoose0/gitvis-sub000/internal/dashboard"
	"github.com/angrygoose0/gitvis-sub000/internal/githubapi"
	"github.com/angrygoose0/gitvis-sub000/internal/relcache"
	"github.com/angrygoose0/gitvis-sub000/internal/schema"
	"github.com/angrygoose0/gitvis-sub000/internal/topology"
	"github.com/angrygoose0/gitvis-sub000/internal/update"
	"github.com/angrygoose0/gitvis-sub000/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "analyze":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: gitvis analyze <owner> <repo>")
			os.Exit(1)
		}
		if err := runAnalyze(os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "schema":
		label := ""
		if len(os.Args) > 2 {
			label = os.Args[2]
		}
		if err := runSchema(label); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "update":
		status, err := update.Check(update.DefaultReleaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if status.Newer {
			fmt.Printf("gitvis v%s is available (you have v%s)\n", status.Latest, status.Current)
		} else {
			fmt.Printf("gitvis v%s is up to date\n", status.Current)
		}

	case "version", "-v", "--version":
		fmt.Printf("gitvis v%s\n", version.Version)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// loadStack loads config and wires the GitHub client, relationship
// cache, and topology manager.
func loadStack() (*config.Config, *topology.Manager, *relcache.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	gh := githubapi.NewClient(githubapi.ClientConfig{
		BaseURL: cfg.GetAPIBaseURL(),
		Token:   cfg.GetToken(),
	}, &http.Client{Timeout: 30 * time.Second})

	cachePath := filepath.Join(filepath.Dir(cfg.FilePath()), "relationships.json")
	store := relcache.NewStore(cachePath, cfg.RelationshipTTL())
	if err := store.Load(); err != nil {
		log.Warn("failed to load relationship cache", "err", err)
	}

	return cfg, topology.New(cfg, gh, store), store, nil
}

func runServe() error {
	configOk, err := config.EnsureExists()
	if err != nil {
		return fmt.Errorf("failed to check config: %w", err)
	}
	if !configOk {
		// User declined to create config.
		os.Exit(1)
	}

	cfg, manager, _, err := loadStack()
	if err != nil {
		return err
	}

	server := dashboard.NewServer(cfg, manager)
	manager.Events = server.Hub().Broadcast

	watcher, err := config.NewWatcher(cfg, func() {
		log.Info("configuration reloaded", "path", cfg.FilePath())
	})
	if err != nil {
		log.Warn("config watching disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// Shut down cleanly on interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("shutdown error", "err", err)
		}
	}()

	return server.Start()
}

func runAnalyze(owner, repo string) error {
	_, manager, _, err := loadStack()
	if err != nil {
		return err
	}

	resp, err := manager.BranchTree(context.Background(), owner, repo)
	if err != nil {
		return err
	}

	fmt.Printf("%s (default: %s, %d branches)\n", resp.Repo, resp.DefaultBranch, len(resp.Branches))
	byName := make(map[string]*analyzer.Branch, len(resp.Branches))
	for _, b := range resp.Branches {
		byName[b.Name] = b
	}
	if trunk, ok := byName[resp.DefaultBranch]; ok {
		printTree(byName, trunk, 0)
	}
	return nil
}

// printTree renders a branch and its children as an indented list.
func printTree(byName map[string]*analyzer.Branch, branch *analyzer.Branch, indent int) {
	for i := 0; i < indent; i++ {
		fmt.Print("  ")
	}
	if branch.AheadBy != nil && branch.Parent != "" {
		fmt.Printf("%s (+%d)\n", branch.Name, *branch.AheadBy)
	} else {
		fmt.Println(branch.Name)
	}
	for _, child := range branch.Children {
		if c, ok := byName[child]; ok {
			printTree(byName, c, indent+1)
		}
	}
}

func runSchema(label string) error {
	schema.Register(schema.LabelConfig, config.Config{})
	schema.Register(schema.LabelBranchTree, contracts.BranchTreeResponse{})

	if label == "" {
		labels := schema.Labels()
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Println(l)
		}
		return nil
	}

	out, err := schema.Get(label)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func printUsage() {
	fmt.Println("gitvis - GitHub branch topology visualizer")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gitvis <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve       Start the dashboard server")
	fmt.Println("  analyze     Analyze a repository's branch tree and print it")
	fmt.Println("  schema      Print the JSON schema for a label (or list labels)")
	fmt.Println("  update      Check for a newer release")
	fmt.Println("  version     Show version")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  gitvis serve                  # Serve the dashboard")
	fmt.Println("  gitvis analyze octocat hello  # Print the branch tree for octocat/hello")
	fmt.Println("  gitvis schema config          # Print the config JSON schema")
}
