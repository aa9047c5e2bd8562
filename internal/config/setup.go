package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

// EnsureExists checks that a config file exists, prompting the user to
// create one on first run. Returns false (without error) if the user
// declines.
func EnsureExists() (bool, error) {
	path, err := Path()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config: %w", err)
	}

	var (
		create = true
		token  string
		owner  string
		repo   string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("No config found at %s. Create one?", path)).
				Value(&create),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub token").
				Description("Fine-grained token with read access to the repositories (leave empty to use "+EnvToken+")").
				EchoMode(huh.EchoModePassword).
				Value(&token),
			huh.NewInput().
				Title("Repository owner").
				Value(&owner),
			huh.NewInput().
				Title("Repository name").
				Value(&repo),
		).WithHideFunc(func() bool { return !create }),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("config setup failed: %w", err)
	}
	if !create {
		return false, nil
	}

	cfg := CreateDefault(path)
	cfg.Token = strings.TrimSpace(token)
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	if owner != "" && repo != "" {
		cfg.Repos = []Repo{{Owner: owner, Name: repo}}
	}

	if err := cfg.Save(); err != nil {
		return false, err
	}
	fmt.Printf("Created %s\n", path)
	return true, nil
}
