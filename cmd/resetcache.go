package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/morler/commitgpt/constants/lipgloss"
	"github.com/morler/commitgpt/message_cache"
	"github.com/morler/commitgpt/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache",
	Short: "Remove cached commit messages",
	Long: `The 'reset-cache' command removes every commit message cached by commitgpt.
Messages are only cached when 'enable_cache' is on; use --stats to inspect the cache
without removing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		return handleResetCacheCommand(force, stats, cmd)
	},
}

func init() {
	resetCacheCmd.Flags().BoolP("force", "f", false, "Reset the cache without confirmation")
	resetCacheCmd.Flags().Bool("stats", false, "Show cache statistics instead of resetting")

	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(force bool, showStats bool, cmd *cobra.Command) error {
	rootDependencies, err := handleRootCommand(cmd)
	if err != nil {
		return err
	}

	dir, err := message_cache.DefaultDir()
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Println(lipgloss.Yellow.Render("No cache to reset."))
		return nil
	}

	cache, err := message_cache.NewMessageCache(dir, message_cache.DefaultMaxAge)
	if err != nil {
		return err
	}

	if showStats {
		fmt.Println(lipgloss.Info.Render("Cache Statistics:"))
		cacheStats, err := cache.GetCacheStats()
		if err != nil {
			return err
		}
		if !rootDependencies.Config.EnableCache {
			fmt.Println("  Cache is disabled (enable_cache: false)")
		}
		if dir, ok := cacheStats["cache_dir"].(string); ok {
			fmt.Printf("  Cache Directory: %s\n", dir)
		}
		if files, ok := cacheStats["cache_files"].(int); ok {
			fmt.Printf("  Cached Messages: %d\n", files)
		}
		if size, ok := cacheStats["total_size"].(int64); ok {
			fmt.Printf("  Total Size: %.2f KB\n", float64(size)/1024)
		}
		return nil
	}

	if !force {
		var confirmer utils.Confirmer = utils.NewReaderPrompter(os.Stdin, os.Stdout)
		if utils.IsTTY() {
			confirmer = utils.NewPtermPrompter()
		}
		confirmed, err := confirmer.Confirm("Are you sure you want to remove all cached commit messages?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println(lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).WithRemoveWhenDone(true)

	spinnerInstance, _ := spinner.Start("Resetting message cache...")

	err = cache.Clear()
	if spinnerInstance != nil {
		_ = spinnerInstance.Stop()
	}
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	rootDependencies.Logger.Debug().Str("dir", dir).Msg("message cache cleared")
	fmt.Println(lipgloss.Green.Render("✓ Message cache has been successfully reset!"))
	return nil
}
