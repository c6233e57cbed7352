package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/morler/commitgpt/commit_generator"
	"github.com/morler/commitgpt/commit_workflow"
	"github.com/morler/commitgpt/constants/lipgloss"
	"github.com/morler/commitgpt/diff_collector"
	"github.com/morler/commitgpt/message_cache"
	"github.com/morler/commitgpt/providers"
	"github.com/morler/commitgpt/utils"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func initCommitFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("dry-run", "n", false, "Stage and generate the message, print it and stop without committing.")
	cmd.Flags().BoolP("yes", "y", false, "Commit with the generated message without the preview. Push only when push mode is 'always'.")
}

func handleCommitCommand(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := rootDependencies.Config
	logger := rootDependencies.Logger

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	language, ok := cfg.ResolvedLanguage()
	if !ok {
		logger.Warn().Str("language", cfg.Language).Msg("unknown language, falling back to English")
	}
	style, ok := cfg.ResolvedStyle()
	if !ok {
		logger.Warn().Str("style", cfg.CommitStyle).Msg("unknown commit style, falling back to concise")
	}

	// Built before staging so a missing credential fails without touching the index.
	chatProvider, err := providers.NewChatProvider(cfg.AIProviderConfig, rootDependencies.TokenManagement)
	if err != nil {
		return err
	}

	messages := diff_collector.SwedishMessages
	if language == commit_generator.LanguageEnglish {
		messages = diff_collector.EnglishMessages
	}
	collector := diff_collector.NewDiffCollector(rootDependencies.Git,
		diff_collector.WithMaxChars(cfg.MaxDiffChars),
		diff_collector.WithMessages(messages),
		diff_collector.WithLogger(logger),
	)

	var editor utils.MessageEditor
	var confirmer utils.Confirmer
	interactive := utils.IsTTY()
	if interactive {
		prompter := utils.NewPtermPrompter()
		editor, confirmer = prompter, prompter
	} else {
		prompter := utils.NewReaderPrompter(os.Stdin, os.Stdout)
		editor, confirmer = prompter, prompter
	}

	workflow := commit_workflow.NewWorkflow(commit_workflow.Dependencies{
		Repository: rootDependencies.Git,
		Collector:  collector,
		Generator:  commit_generator.NewCommitMessageGenerator(chatProvider, logger),
		Editor:     editor,
		Confirmer:  confirmer,
		Reporter:   newConsoleReporter(os.Stdout, interactive, cfg.ShowDiff, cfg.Theme, logger),
		Cache:      openMessageCache(cfg.EnableCache, logger),
		Logger:     logger,
	}, commit_workflow.Options{
		Language:  language,
		Style:     style,
		Model:     cfg.AIProviderConfig.Model,
		PushMode:  cfg.PushMode,
		DryRun:    dryRun,
		AssumeYes: assumeYes,
	})

	result, err := workflow.Run(ctx)
	if result != nil {
		printResult(result)
	}

	if total, _, _ := rootDependencies.TokenManagement.GetCurrentTokenUsage(); total > 0 {
		rootDependencies.TokenManagement.DisplayTokens(chatProvider.Name(), cfg.AIProviderConfig.Model)
	}

	if err != nil {
		return err
	}

	if cfg.CopyToClipboard && hasMessage(result) {
		if err := utils.CopyToClipboard(result.Message); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Could not copy the message: %v", err)))
		} else {
			fmt.Println(lipgloss.Gray.Render("Commit message copied to clipboard."))
		}
	}
	return nil
}

// openMessageCache returns nil when caching is off or the directory cannot be used.
func openMessageCache(enabled bool, logger zerolog.Logger) commit_workflow.MessageCache {
	if !enabled {
		return nil
	}
	dir, err := message_cache.DefaultDir()
	if err != nil {
		logger.Warn().Err(err).Msg("message cache disabled")
		return nil
	}
	cache, err := message_cache.NewMessageCache(dir, message_cache.DefaultMaxAge)
	if err != nil {
		logger.Warn().Err(err).Msg("message cache disabled")
		return nil
	}
	return cache
}

func printResult(result *commit_workflow.Result) {
	switch result.Outcome {
	case commit_workflow.OutcomeDryRun:
		utils.RenderMessage(os.Stdout, "Generated commit message (dry run, nothing committed):", result.Message)
	case commit_workflow.OutcomeCommitted:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔ Committed %d file(s) in %s.", len(result.Files), result.RepoName)))
	case commit_workflow.OutcomePushed:
		fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✔ Committed %d file(s) in %s and pushed.", len(result.Files), result.RepoName)))
	}
}

func hasMessage(result *commit_workflow.Result) bool {
	switch result.Outcome {
	case commit_workflow.OutcomeDryRun, commit_workflow.OutcomeCommitted, commit_workflow.OutcomePushed:
		return result.Message != ""
	default:
		return false
	}
}

// consoleReporter shows progress with pterm spinners on a terminal and plain lines otherwise.
type consoleReporter struct {
	out         io.Writer
	interactive bool
	showDiff    bool
	theme       string
	logger      zerolog.Logger
}

func newConsoleReporter(out io.Writer, interactive bool, showDiff bool, theme string, logger zerolog.Logger) *consoleReporter {
	return &consoleReporter{out: out, interactive: interactive, showDiff: showDiff, theme: theme, logger: logger}
}

func (r *consoleReporter) Step(message string) func() {
	if !r.interactive {
		fmt.Fprintln(r.out, lipgloss.Gray.Render(message))
		return func() {}
	}

	spinner, err := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).
		WithRemoveWhenDone(true).
		Start(message)
	if err != nil {
		r.logger.Debug().Err(err).Msg("spinner unavailable")
		return func() {}
	}
	return func() {
		_ = spinner.Stop()
	}
}

func (r *consoleReporter) Info(message string) {
	fmt.Fprintln(r.out, lipgloss.Yellow.Render(message))
}

func (r *consoleReporter) Diff(diff string) {
	if !r.showDiff {
		return
	}
	if err := utils.RenderDiff(r.out, diff, r.theme); err != nil {
		r.logger.Warn().Err(err).Msg("falling back to plain diff output")
		fmt.Fprintln(r.out, diff)
	}
}
