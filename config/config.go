package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/commit_generator"
	"github.com/morler/commitgpt/diff_collector"
	"github.com/morler/commitgpt/providers"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFileName    = "commitgpt-config"
	userConfigDirName = "commitgpt"
)

// Push modes
const (
	PushAsk    = "ask"
	PushAlways = "always"
	PushNever  = "never"
)

// Config represents the structure of the configuration file
type Config struct {
	Version          string                      `mapstructure:"version"`
	Language         string                      `mapstructure:"language"`
	CommitStyle      string                      `mapstructure:"commit_style"`
	MaxDiffChars     int                         `mapstructure:"max_diff_chars"`
	PushMode         string                      `mapstructure:"push_mode"`
	Theme            string                      `mapstructure:"theme"`
	ShowDiff         bool                        `mapstructure:"show_diff"`
	CopyToClipboard  bool                        `mapstructure:"copy_to_clipboard"`
	EnableCache      bool                        `mapstructure:"enable_cache"`
	LogLevel         string                      `mapstructure:"log_level"`
	AIProviderConfig *providers.AIProviderConfig `mapstructure:"ai_provider_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:         "0.3.0",
	Language:        string(commit_generator.LanguageSwedish),
	CommitStyle:     string(commit_generator.StyleConcise),
	MaxDiffChars:    diff_collector.DefaultMaxChars,
	PushMode:        PushAsk,
	Theme:           "dracula",
	ShowDiff:        false,
	CopyToClipboard: false,
	EnableCache:     false,
	LogLevel:        "warn",
	AIProviderConfig: &providers.AIProviderConfig{
		Provider: "openai",
		BaseURL:  "",
		Model:    "gpt-4.1-mini",
		ApiKey:   "",
		Timeout:  0,
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// UserConfigDir is where the config file holding the api key belongs. It is
// outside every work tree, so "git add -A" never stages the key.
func UserConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, userConfigDirName), nil
}

// LoadConfigs reads defaults, the config files, environment variables and
// flags, in increasing order of precedence, into a fresh Config.
// The user config file in userDir is read first and the repository config file
// in repoDir is merged over it. A repository config file is staged and committed
// with everything else, so an api key in it is rejected.
// The api key is not bound to the environment here: OPENAI_API_KEY is only a
// fallback for an unset key, see providers.AIProviderConfig.ResolveApiKey.
func LoadConfigs(rootCmd *cobra.Command, userDir string, repoDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &app_errors.ConfigError{Msg: fmt.Sprintf("error reading config file: %v", err)}
		}
		if repoDir != "" && isWithin(cfgFile, repoDir) {
			if err := rejectApiKey(v, cfgFile); err != nil {
				return nil, err
			}
		}
	} else {
		if userDir != "" {
			if _, err := readConfigFile(v, userDir); err != nil {
				return nil, err
			}
		}

		if repoDir != "" {
			repoConfig := viper.New()
			found, err := readConfigFile(repoConfig, repoDir)
			if err != nil {
				return nil, err
			}
			if found {
				if err := rejectApiKey(repoConfig, repoConfig.ConfigFileUsed()); err != nil {
					return nil, err
				}
				if err := v.MergeConfigMap(repoConfig.AllSettings()); err != nil {
					return nil, &app_errors.ConfigError{Msg: fmt.Sprintf("error merging config file: %v", err)}
				}
			}
		}
	}

	bindFlags(v, rootCmd)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &app_errors.ConfigError{Msg: fmt.Sprintf("unable to decode config: %v", err)}
	}
	if config.AIProviderConfig == nil {
		config.AIProviderConfig = &providers.AIProviderConfig{}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// readConfigFile looks for commitgpt-config.{yaml,json} in dir. A missing file is not an error.
func readConfigFile(v *viper.Viper, dir string) (bool, error) {
	v.SetConfigName(ConfigFileName)
	v.AddConfigPath(dir)

	// Support both JSON and YAML formats
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
				return false, nil
			}
			return false, &app_errors.ConfigError{Msg: fmt.Sprintf("error reading config file: %v", err)}
		}
	}
	return true, nil
}

func rejectApiKey(v *viper.Viper, path string) error {
	if strings.TrimSpace(v.GetString("ai_provider_config.api_key")) == "" {
		return nil
	}
	return &app_errors.ConfigError{Msg: fmt.Sprintf(
		"%s is inside the repository and would be committed: move ai_provider_config.api_key to the user config file or use OPENAI_API_KEY", path)}
}

// isWithin reports whether path is dir or lies below it.
func isWithin(path string, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Validate rejects values that cannot be used. Language and style are lenient, see ParseLanguage and ParseStyle.
func (c *Config) Validate() error {
	switch c.PushMode {
	case PushAsk, PushAlways, PushNever:
	default:
		return &app_errors.ConfigError{Msg: fmt.Sprintf("push_mode must be one of 'ask', 'always', 'never', got '%s'", c.PushMode)}
	}
	if c.MaxDiffChars < 1 {
		return &app_errors.ConfigError{Msg: fmt.Sprintf("max_diff_chars must be at least 1, got %d", c.MaxDiffChars)}
	}
	if strings.TrimSpace(c.AIProviderConfig.Model) == "" {
		return &app_errors.ConfigError{Msg: "ai_provider_config.model must not be empty"}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return &app_errors.ConfigError{Msg: fmt.Sprintf("invalid log_level '%s'", c.LogLevel)}
	}
	return nil
}

// ResolvedLanguage returns the prompt language; anything but "sv" or "en" is reported with ok=false and treated as English.
func (c *Config) ResolvedLanguage() (commit_generator.Language, bool) {
	return commit_generator.ParseLanguage(c.Language)
}

func (c *Config) ResolvedStyle() (commit_generator.Style, bool) {
	return commit_generator.ParseStyle(c.CommitStyle)
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("language", DefaultConfig.Language)
	v.SetDefault("commit_style", DefaultConfig.CommitStyle)
	v.SetDefault("max_diff_chars", DefaultConfig.MaxDiffChars)
	v.SetDefault("push_mode", DefaultConfig.PushMode)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("show_diff", DefaultConfig.ShowDiff)
	v.SetDefault("copy_to_clipboard", DefaultConfig.CopyToClipboard)
	v.SetDefault("enable_cache", DefaultConfig.EnableCache)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("ai_provider_config.provider", DefaultConfig.AIProviderConfig.Provider)
	v.SetDefault("ai_provider_config.base_url", DefaultConfig.AIProviderConfig.BaseURL)
	v.SetDefault("ai_provider_config.model", DefaultConfig.AIProviderConfig.Model)
	v.SetDefault("ai_provider_config.api_key", DefaultConfig.AIProviderConfig.ApiKey)
	v.SetDefault("ai_provider_config.timeout", DefaultConfig.AIProviderConfig.Timeout)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("language", "COMMITGPT_LANGUAGE")
	_ = v.BindEnv("commit_style", "COMMITGPT_STYLE")
	_ = v.BindEnv("max_diff_chars", "COMMITGPT_MAX_DIFF_CHARS")
	_ = v.BindEnv("push_mode", "COMMITGPT_PUSH_MODE")
	_ = v.BindEnv("theme", "THEME")
	_ = v.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = v.BindEnv("log_level", "COMMITGPT_LOG_LEVEL")
	_ = v.BindEnv("ai_provider_config.provider", "PROVIDER")
	_ = v.BindEnv("ai_provider_config.base_url", "BASE_URL")
	_ = v.BindEnv("ai_provider_config.model", "MODEL")
	_ = v.BindEnv("ai_provider_config.timeout", "COMMITGPT_TIMEOUT")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("language", flags.Lookup("language"))
	_ = v.BindPFlag("commit_style", flags.Lookup("style"))
	_ = v.BindPFlag("max_diff_chars", flags.Lookup("max_diff_chars"))
	_ = v.BindPFlag("push_mode", flags.Lookup("push"))
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("show_diff", flags.Lookup("show_diff"))
	_ = v.BindPFlag("copy_to_clipboard", flags.Lookup("copy"))
	_ = v.BindPFlag("enable_cache", flags.Lookup("enable_cache"))
	_ = v.BindPFlag("log_level", flags.Lookup("log_level"))
	_ = v.BindPFlag("ai_provider_config.provider", flags.Lookup("provider"))
	_ = v.BindPFlag("ai_provider_config.base_url", flags.Lookup("base_url"))
	_ = v.BindPFlag("ai_provider_config.model", flags.Lookup("model"))
	_ = v.BindPFlag("ai_provider_config.api_key", flags.Lookup("api_key"))
	_ = v.BindPFlag("ai_provider_config.timeout", flags.Lookup("timeout"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().StringP("language", "l", DefaultConfig.Language, "Language of the generated commit message ('sv' or 'en').")
	rootCmd.PersistentFlags().StringP("style", "s", DefaultConfig.CommitStyle, "Commit message style: 'concise', 'detailed' or 'conventional'.")
	rootCmd.PersistentFlags().Int("max_diff_chars", DefaultConfig.MaxDiffChars, "Maximum number of diff characters sent to the model.")
	rootCmd.PersistentFlags().String("push", DefaultConfig.PushMode, "Push after committing: 'ask', 'always' or 'never'.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Chroma theme used to highlight the staged diff (e.g., 'dracula', 'monokai', 'github').")
	rootCmd.PersistentFlags().Bool("show_diff", DefaultConfig.ShowDiff, "Print the collected staged diff before generating the message.")
	rootCmd.PersistentFlags().Bool("copy", DefaultConfig.CopyToClipboard, "Copy the final commit message to the clipboard.")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Reuse a previously generated message for an identical diff.")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Diagnostic log level written to stderr ('debug', 'info', 'warn', 'error').")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// AI Provider configuration
	rootCmd.PersistentFlags().String("provider", DefaultConfig.AIProviderConfig.Provider, "The name of the AI provider ('openai' or 'ollama').")
	rootCmd.PersistentFlags().String("base_url", DefaultConfig.AIProviderConfig.BaseURL, "The base URL of the AI provider (default 'https://api.openai.com/v1' for openai, 'http://localhost:11434/api' for ollama).")
	rootCmd.PersistentFlags().String("model", DefaultConfig.AIProviderConfig.Model, "The name of the model used for chat completions, such as 'gpt-4.1-mini'.")
	rootCmd.PersistentFlags().String("api_key", DefaultConfig.AIProviderConfig.ApiKey, "The API key used to authenticate with the AI provider (falls back to OPENAI_API_KEY). Only accepted from the flag or the user config file.")
	rootCmd.PersistentFlags().Duration("timeout", DefaultConfig.AIProviderConfig.Timeout, "HTTP timeout for the completion request (0 means no timeout).")
}
