package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/morler/commitgpt/config"
	"github.com/morler/commitgpt/constants/lipgloss"
	"github.com/morler/commitgpt/token_management"
	"github.com/morler/commitgpt/token_management/contracts"
	"github.com/morler/commitgpt/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// RootDependencies is everything a subcommand needs, resolved once per invocation.
type RootDependencies struct {
	Config          *config.Config
	Cwd             string
	RepoRoot        string
	Logger          zerolog.Logger
	TokenManagement contracts.ITokenManagement
	Git             *utils.GitOperations
}

var rootCmd = &cobra.Command{
	Use:   "commitgpt",
	Short: "Stage all changes and commit them with an AI-generated message.",
	Long: `commitgpt stages every change in the current git repository, sends a bounded
zero-context diff of the staged files to a chat completion model and proposes the
answer as the commit message. The message can be accepted, edited or rejected
before the commit is created, and the commit can then be pushed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(config.DefaultConfig.Version)
			return nil
		}

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleCommitCommand(cmd, rootDependencies)
	},
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
	initCommitFlags(rootCmd)
}

func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	git := utils.NewGitOperations(cwd)

	// The project config file is looked up in the repository root; outside a repository the working directory is used.
	configDir := cwd
	if root, _, err := git.RepoRoot(context.Background()); err == nil {
		configDir = root
	}

	userConfigDir, err := config.UserConfigDir()
	if err != nil {
		log.Warn().Err(err).Msg("user config file skipped")
		userConfigDir = ""
	}

	cfg, err := config.LoadConfigs(cmd.Root(), userConfigDir, configDir)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	return &RootDependencies{
		Config:          cfg,
		Cwd:             cwd,
		RepoRoot:        configDir,
		Logger:          logger,
		TokenManagement: token_management.NewTokenManager(),
		Git:             utils.NewGitOperationsWithRunner(cwd, utils.NewCommandExecutor(), logger),
	}, nil
}

// newLogger writes human readable diagnostics to stderr at the configured level.
func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.WarnLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parsed)
	return log.Logger
}
