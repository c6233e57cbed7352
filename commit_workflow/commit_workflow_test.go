package commit_workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/commit_generator"
	"github.com/morler/commitgpt/config"
	"github.com/morler/commitgpt/diff_collector"
	"github.com/morler/commitgpt/message_cache"
	"github.com/morler/commitgpt/providers/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	root      string
	checkErr  error
	staged    []string
	diff      string
	diffCalls [][]string
	addCalls  int
	commits   []string
	pushCalls int
}

func (r *fakeRepository) CheckGitRepo(context.Context) error { return r.checkErr }

func (r *fakeRepository) RepoRoot(context.Context) (string, string, error) {
	return r.root, filepath.Base(r.root), nil
}

func (r *fakeRepository) AddAll(context.Context) error {
	r.addCalls++
	return nil
}

func (r *fakeRepository) StagedFiles(context.Context) ([]string, error) { return r.staged, nil }

func (r *fakeRepository) CachedDiff(_ context.Context, paths []string) (string, error) {
	r.diffCalls = append(r.diffCalls, paths)
	return r.diff, nil
}

func (r *fakeRepository) Commit(_ context.Context, message string) error {
	r.commits = append(r.commits, message)
	return nil
}

func (r *fakeRepository) Push(context.Context) error {
	r.pushCalls++
	return nil
}

type fakeProvider struct {
	requests []models.ChatCompletionRequest
	reply    string
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) ChatCompletion(_ context.Context, request models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	p.requests = append(p.requests, request)
	return &models.ChatCompletionResponse{Choices: []models.Choice{{Message: models.Message{Role: models.RoleAssistant, Content: p.reply}}}}, nil
}

type fakeEditor struct {
	calls  int
	result string
	ok     bool
}

func (e *fakeEditor) EditMessage(initial string) (string, bool, error) {
	e.calls++
	if e.result == "" {
		return initial, e.ok, nil
	}
	return e.result, e.ok, nil
}

type fakeConfirmer struct {
	answer bool
	calls  int
}

func (c *fakeConfirmer) Confirm(string, bool) (bool, error) {
	c.calls++
	return c.answer, nil
}

type fixture struct {
	repo      *fakeRepository
	provider  *fakeProvider
	editor    *fakeEditor
	confirmer *fakeConfirmer
}

func newFixture(t *testing.T, staged []string, diff string) *fixture {
	return &fixture{
		repo:      &fakeRepository{root: t.TempDir(), staged: staged, diff: diff},
		provider:  &fakeProvider{reply: "Add login form\n\n- validate credentials"},
		editor:    &fakeEditor{ok: true},
		confirmer: &fakeConfirmer{},
	}
}

func (f *fixture) workflow(options Options, cache MessageCache) *Workflow {
	if options.PushMode == "" {
		options.PushMode = config.PushAsk
	}
	if options.Model == "" {
		options.Model = "gpt-4.1-mini"
	}
	return NewWorkflow(Dependencies{
		Repository: f.repo,
		Collector:  diff_collector.NewDiffCollector(f.repo, diff_collector.WithMaxChars(20000)),
		Generator:  commit_generator.NewCommitMessageGenerator(f.provider, zerolog.Nop()),
		Editor:     f.editor,
		Confirmer:  f.confirmer,
		Cache:      cache,
		Logger:     zerolog.Nop(),
	}, options)
}

func TestRun_NothingStagedSkipsGeneration(t *testing.T) {
	f := newFixture(t, nil, "")

	result, err := f.workflow(Options{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeNothingStaged, result.Outcome)
	assert.Equal(t, 1, f.repo.addCalls)
	assert.Empty(t, f.repo.diffCalls)
	assert.Empty(t, f.provider.requests)
	assert.Zero(t, f.editor.calls)
	assert.Empty(t, f.repo.commits)
}

func TestRun_CommitsEditedMessage(t *testing.T) {
	diff := strings.Repeat("+line\n", 80)[:480] + "tail"
	f := newFixture(t, []string{"a.go", "b.go", "c.go"}, diff)
	f.editor.result = "Add login form (edited)"

	result, err := f.workflow(Options{Language: commit_generator.LanguageEnglish, Style: commit_generator.StyleConcise}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCommitted, result.Outcome)
	assert.Equal(t, []string{"Add login form (edited)"}, f.repo.commits)
	require.Len(t, f.repo.diffCalls, 1)
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, f.repo.diffCalls[0])

	require.Len(t, f.provider.requests, 1)
	user := f.provider.requests[0].Messages[1].Content
	assert.Contains(t, user, commit_generator.BeginDiffMarker+"\n"+diff+"\n"+commit_generator.EndDiffMarker)
	assert.NotContains(t, user, diff_collector.SwedishMessages.TruncationMarker)

	assert.Equal(t, 1, f.confirmer.calls)
	assert.Zero(t, f.repo.pushCalls)
}

func TestRun_CancelledPreviewDoesNotCommit(t *testing.T) {
	f := newFixture(t, []string{"a.go"}, "+x")
	f.editor.ok = false

	result, err := f.workflow(Options{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeCancelled, result.Outcome)
	assert.Empty(t, f.repo.commits)
	assert.Zero(t, f.confirmer.calls)
}

func TestRun_PushModes(t *testing.T) {
	t.Run("ask and accept", func(t *testing.T) {
		f := newFixture(t, []string{"a.go"}, "+x")
		f.confirmer.answer = true

		result, err := f.workflow(Options{PushMode: config.PushAsk}, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomePushed, result.Outcome)
		assert.Equal(t, 1, f.repo.pushCalls)
	})

	t.Run("always", func(t *testing.T) {
		f := newFixture(t, []string{"a.go"}, "+x")

		result, err := f.workflow(Options{PushMode: config.PushAlways}, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomePushed, result.Outcome)
		assert.Zero(t, f.confirmer.calls)
	})

	t.Run("never", func(t *testing.T) {
		f := newFixture(t, []string{"a.go"}, "+x")

		result, err := f.workflow(Options{PushMode: config.PushNever}, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeCommitted, result.Outcome)
		assert.Zero(t, f.repo.pushCalls)
		assert.Zero(t, f.confirmer.calls)
	})

	t.Run("assume yes never asks", func(t *testing.T) {
		f := newFixture(t, []string{"a.go"}, "+x")

		result, err := f.workflow(Options{AssumeYes: true}, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeCommitted, result.Outcome)
		assert.Zero(t, f.editor.calls)
		assert.Zero(t, f.confirmer.calls)
		assert.Equal(t, []string{f.provider.reply}, f.repo.commits)
	})
}

func TestRun_DryRunStopsBeforeCommit(t *testing.T) {
	f := newFixture(t, []string{"a.go"}, "+x")

	result, err := f.workflow(Options{DryRun: true}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeDryRun, result.Outcome)
	assert.Equal(t, f.provider.reply, result.Message)
	assert.Zero(t, f.editor.calls)
	assert.Empty(t, f.repo.commits)
}

func TestRun_EmptyModelReplyFailsAfterStaging(t *testing.T) {
	f := newFixture(t, []string{"a.go"}, "+x")
	f.provider.reply = "   "

	result, err := f.workflow(Options{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var generationErr *app_errors.GenerationError
	assert.True(t, errors.As(err, &generationErr))
	assert.Equal(t, 1, f.repo.addCalls)
	assert.Empty(t, f.repo.commits)
}

func TestRun_EnvironmentErrorStopsEverything(t *testing.T) {
	f := newFixture(t, []string{"a.go"}, "+x")
	f.repo.checkErr = &app_errors.EnvironmentError{Msg: "not a git repository"}

	_, err := f.workflow(Options{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, f.repo.addCalls)
	assert.Empty(t, f.provider.requests)
}

func TestRun_CachedMessageSkipsSecondRequest(t *testing.T) {
	cache, err := message_cache.NewMessageCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	f := newFixture(t, []string{"a.go"}, "+x")
	options := Options{DryRun: true, Language: commit_generator.LanguageSwedish, Style: commit_generator.StyleDetailed}

	first, err := f.workflow(options, cache).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.workflow(options, cache).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Message, second.Message)
	assert.Len(t, f.provider.requests, 1)

	options.Style = commit_generator.StyleConventional
	_, err = f.workflow(options, cache).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.provider.requests, 2)
}

func TestRun_IgnoreFileKeepsPathsOutOfPrompt(t *testing.T) {
	f := newFixture(t, []string{"go.sum", "main.go", "web/package-lock.json"}, "+x")
	require.NoError(t, os.WriteFile(filepath.Join(f.repo.root, ".commitgpt-ignore"), []byte("# generated\ngo.sum\npackage-lock.json\n"), 0644))

	result, err := f.workflow(Options{AssumeYes: true, PushMode: config.PushNever}, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.repo.diffCalls, 1)
	assert.Equal(t, []string{"main.go"}, f.repo.diffCalls[0])
	assert.Equal(t, []string{"go.sum", "main.go", "web/package-lock.json"}, result.Files)
	assert.NotContains(t, f.provider.requests[0].Messages[1].Content, "go.sum")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "pushed", OutcomePushed.String())
	assert.Equal(t, "nothing-staged", OutcomeNothingStaged.String())
}
