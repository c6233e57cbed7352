package commit_workflow

import (
	"context"
	"fmt"

	"github.com/morler/commitgpt/commit_generator"
	"github.com/morler/commitgpt/config"
	"github.com/morler/commitgpt/message_cache"
	"github.com/morler/commitgpt/utils"
	"github.com/rs/zerolog"
)

// Repository is the subset of git operations the workflow drives.
type Repository interface {
	CheckGitRepo(ctx context.Context) error
	RepoRoot(ctx context.Context) (root string, name string, err error)
	AddAll(ctx context.Context) error
	StagedFiles(ctx context.Context) ([]string, error)
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context) error
}

type DiffCollector interface {
	Collect(ctx context.Context, files []string) (string, error)
}

type MessageGenerator interface {
	GenerateCommitMessage(ctx context.Context, request commit_generator.CommitMessageRequest) (string, error)
}

type MessageCache interface {
	Get(key string) (string, bool)
	Set(key string, message string, model string) error
}

// Reporter receives progress for display. Step returns a function that ends the step.
type Reporter interface {
	Step(message string) (done func())
	Info(message string)
	Diff(diff string)
}

type Outcome int

const (
	OutcomeNothingStaged Outcome = iota
	OutcomeCancelled
	OutcomeDryRun
	OutcomeCommitted
	OutcomePushed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNothingStaged:
		return "nothing-staged"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeDryRun:
		return "dry-run"
	case OutcomeCommitted:
		return "committed"
	case OutcomePushed:
		return "pushed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Result struct {
	Outcome   Outcome
	RepoName  string
	Files     []string
	Message   string
	FromCache bool
}

type Options struct {
	Language  commit_generator.Language
	Style     commit_generator.Style
	Model     string
	PushMode  string
	DryRun    bool
	AssumeYes bool
}

type Dependencies struct {
	Repository Repository
	Collector  DiffCollector
	Generator  MessageGenerator
	Editor     utils.MessageEditor
	Confirmer  utils.Confirmer
	Reporter   Reporter
	// Cache is optional.
	Cache  MessageCache
	Logger zerolog.Logger
}

type Workflow struct {
	deps    Dependencies
	options Options
}

func NewWorkflow(deps Dependencies, options Options) *Workflow {
	if deps.Reporter == nil {
		deps.Reporter = nopReporter{}
	}
	return &Workflow{deps: deps, options: options}
}

// Run stages everything, generates a message and commits with it. Staging is
// not rolled back when a later step fails.
func (w *Workflow) Run(ctx context.Context) (*Result, error) {
	repo := w.deps.Repository
	logger := w.deps.Logger

	if err := repo.CheckGitRepo(ctx); err != nil {
		return nil, err
	}

	root, repoName, err := repo.RepoRoot(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{RepoName: repoName}

	done := w.deps.Reporter.Step("Staging all changes...")
	err = repo.AddAll(ctx)
	done()
	if err != nil {
		return nil, err
	}

	files, err := repo.StagedFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		w.deps.Reporter.Info("No staged changes to commit.")
		result.Outcome = OutcomeNothingStaged
		return result, nil
	}
	result.Files = files

	promptFiles, err := w.applyIgnoreFile(root, files)
	if err != nil {
		return nil, err
	}

	done = w.deps.Reporter.Step(fmt.Sprintf("Collecting diff for %d staged file(s)...", len(promptFiles)))
	diff, err := w.deps.Collector.Collect(ctx, promptFiles)
	done()
	if err != nil {
		return nil, err
	}
	w.deps.Reporter.Diff(diff)

	message, fromCache, err := w.generate(ctx, diff, promptFiles, repoName)
	if err != nil {
		return nil, err
	}
	result.Message = message
	result.FromCache = fromCache

	if w.options.DryRun {
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	finalMessage := message
	if !w.options.AssumeYes {
		edited, ok, err := w.deps.Editor.EditMessage(message)
		if err != nil {
			return nil, err
		}
		if !ok {
			w.deps.Reporter.Info("Commit cancelled.")
			result.Outcome = OutcomeCancelled
			return result, nil
		}
		finalMessage = edited
	}
	result.Message = finalMessage

	if err := repo.Commit(ctx, finalMessage); err != nil {
		return nil, err
	}
	result.Outcome = OutcomeCommitted
	logger.Info().Str("repo", repoName).Int("files", len(files)).Msg("commit created")

	push, err := w.shouldPush()
	if err != nil {
		return result, err
	}
	if !push {
		return result, nil
	}

	done = w.deps.Reporter.Step("Pushing...")
	err = repo.Push(ctx)
	done()
	if err != nil {
		return result, err
	}
	result.Outcome = OutcomePushed
	return result, nil
}

// applyIgnoreFile drops paths matched by the repository's ignore file. They
// stay staged and are committed, they are only kept out of the prompt.
func (w *Workflow) applyIgnoreFile(root string, files []string) ([]string, error) {
	patterns, err := utils.GetIgnorePatterns(root)
	if err != nil {
		return nil, err
	}

	kept, ignored := utils.FilterIgnored(files, patterns)
	if len(ignored) > 0 {
		w.deps.Logger.Debug().Strs("ignored", ignored).Msg("excluded from diff and prompt")
	}
	if len(kept) == 0 {
		w.deps.Logger.Warn().Msg("every staged file matches the ignore file, describing all of them")
		return files, nil
	}
	return kept, nil
}

func (w *Workflow) generate(ctx context.Context, diff string, files []string, repoName string) (string, bool, error) {
	request := commit_generator.CommitMessageRequest{
		Diff:     diff,
		Files:    files,
		Language: w.options.Language,
		Style:    w.options.Style,
		RepoName: repoName,
		Model:    w.options.Model,
	}

	var key string
	if w.deps.Cache != nil {
		key = cacheKey(request)
		if message, found := w.deps.Cache.Get(key); found {
			w.deps.Logger.Debug().Str("key", key).Msg("using cached commit message")
			return message, true, nil
		}
	}

	done := w.deps.Reporter.Step("Generating commit message...")
	message, err := w.deps.Generator.GenerateCommitMessage(ctx, request)
	done()
	if err != nil {
		return "", false, err
	}

	if w.deps.Cache != nil {
		if err := w.deps.Cache.Set(key, message, request.Model); err != nil {
			w.deps.Logger.Warn().Err(err).Msg("failed to cache commit message")
		}
	}
	return message, false, nil
}

func (w *Workflow) shouldPush() (bool, error) {
	switch w.options.PushMode {
	case config.PushAlways:
		return true, nil
	case config.PushNever:
		return false, nil
	default:
		if w.options.AssumeYes {
			return false, nil
		}
		return w.deps.Confirmer.Confirm("Push the changes now?", false)
	}
}

func cacheKey(request commit_generator.CommitMessageRequest) string {
	parts := []string{request.Model, string(request.Language), string(request.Style), request.RepoName}
	parts = append(parts, request.Files...)
	parts = append(parts, request.Diff)
	return message_cache.Key(parts...)
}

type nopReporter struct{}

func (nopReporter) Step(string) func() { return func() {} }
func (nopReporter) Info(string)        {}
func (nopReporter) Diff(string)        {}
