package utils

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/morler/commitgpt/app_errors"
	"github.com/rs/zerolog"
)

// GitOperations handles git-related operations
type GitOperations struct {
	workingDir string
	runner     Runner
	logger     zerolog.Logger
}

// NewGitOperations creates a new GitOperations instance backed by the git binary.
func NewGitOperations(workingDir string) *GitOperations {
	return NewGitOperationsWithRunner(workingDir, NewCommandExecutor(), zerolog.Nop())
}

func NewGitOperationsWithRunner(workingDir string, runner Runner, logger zerolog.Logger) *GitOperations {
	return &GitOperations{workingDir: workingDir, runner: runner, logger: logger}
}

func (g *GitOperations) WorkingDir() string {
	return g.workingDir
}

func (g *GitOperations) git(ctx context.Context, args ...string) (string, error) {
	g.logger.Debug().Strs("args", args).Str("dir", g.workingDir).Msg("running git")

	stdout, stderr, err := g.runner.Run(ctx, g.workingDir, "git", args...)
	if err != nil {
		return "", &app_errors.GitCommandError{Args: args, Stderr: strings.TrimSpace(stderr), Err: err}
	}
	return stdout, nil
}

// CheckGitRepo verifies that the working directory is inside a git work tree.
func (g *GitOperations) CheckGitRepo(ctx context.Context) error {
	if g.workingDir == "" {
		return &app_errors.EnvironmentError{Msg: "no working directory: open a folder containing a git repository"}
	}
	if _, err := g.git(ctx, "rev-parse", "--is-inside-work-tree"); err != nil {
		return &app_errors.EnvironmentError{Msg: "not a git repository", Err: err}
	}
	return nil
}

// RepoRoot returns the top-level directory of the work tree and its display name.
func (g *GitOperations) RepoRoot(ctx context.Context) (string, string, error) {
	out, err := g.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", "", err
	}
	root := strings.TrimSpace(out)
	return root, filepath.Base(root), nil
}

// AddAll stages every change in the work tree, including deletions.
func (g *GitOperations) AddAll(ctx context.Context) error {
	_, err := g.git(ctx, "add", "-A")
	return err
}

// StagedFiles lists the paths staged in the index relative to the repository root, in git's order.
func (g *GitOperations) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := g.git(ctx, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}

	var files []string
	// Paths are NUL separated and never quoted; spaces are part of the name.
	for _, path := range strings.Split(out, "\x00") {
		if path != "" {
			files = append(files, path)
		}
	}
	return files, nil
}

// CachedDiff returns the zero-context diff of the index against HEAD for the given paths.
// Paths are matched literally, not as globs or pathspec magic.
func (g *GitOperations) CachedDiff(ctx context.Context, paths []string) (string, error) {
	args := append([]string{"--literal-pathspecs", "diff", "--cached", "--no-ext-diff", "--no-color", "--unified=0", "--"}, paths...)
	return g.git(ctx, args...)
}

// Commit creates a git commit with the given message
func (g *GitOperations) Commit(ctx context.Context, message string) error {
	_, err := g.git(ctx, "commit", "-m", message)
	return err
}

func (g *GitOperations) Push(ctx context.Context) error {
	_, err := g.git(ctx, "push")
	return err
}
