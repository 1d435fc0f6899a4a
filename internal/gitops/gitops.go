// Package gitops records book changes as git commits.
package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "init", "--quiet")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Committer commits book files after each change when enabled.
type Committer struct {
	Dir         string
	Enabled     bool
	AuthorName  string
	AuthorEmail string
	Logger      *slog.Logger
}

func (c *Committer) git(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir
	// The committer identity must not depend on the user's git config.
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+c.AuthorName,
		"GIT_COMMITTER_EMAIL="+c.AuthorEmail,
	)
	return cmd
}

// Commit stages paths (relative to Dir) and commits them. It returns the
// short commit hash, or "" when disabled, when Dir is not a repository or
// when nothing changed.
func (c *Committer) Commit(ctx context.Context, message string, paths ...string) (string, error) {
	if !c.Enabled || !IsRepo(c.Dir) {
		return "", nil
	}

	add := c.git(ctx, append([]string{"add", "--"}, paths...)...)
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Exit status 1 means staged changes exist.
	diff := c.git(ctx, "diff", "--cached", "--quiet")
	if err := diff.Run(); err == nil {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", c.AuthorName, c.AuthorEmail)
	commit := c.git(ctx, "commit", "--quiet", "-m", message, "--author", author)
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	rev := c.git(ctx, "rev-parse", "--short", "HEAD")
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	hash := strings.TrimSpace(string(out))
	if c.Logger != nil {
		c.Logger.Debug("committed", "hash", hash, "message", message)
	}
	return hash, nil
}
