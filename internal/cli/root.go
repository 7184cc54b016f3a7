package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkordic/anamnesis/internal/logging"
	"github.com/tkordic/anamnesis/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "anamnesis",
	Short: "Anamnesis - reference-case retrieval for clinical decision support",
	Long: `Anamnesis analyzes a patient presentation against a registry of
documented reference cases.

It does not diagnose. It surfaces similar documented cases, ranks them
by relevance to the presentation, and synthesizes the reference
material into a transparent report with risk and confidence scores.

The clinical decision stays with the clinician. Anamnesis is a
retrieval aid, not an oracle.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Anamnesis.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("anamnesis v0.3.2")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.anamnesis/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.anamnesis")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match ANAMNESIS_*
	viper.SetEnvPrefix("ANAMNESIS")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults overlaid
// with whatever the config file and environment set.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring malformed configuration: %v\n", err)
		cfg = model.DefaultConfig()
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg
}

// setupLogging initializes slog from the output configuration
func setupLogging(cfg *model.Config) {
	level := logging.ParseLevel(cfg.Output.LogLevel)
	if cfg.Output.Verbose {
		level = logging.ParseLevel("debug")
	}
	logging.Init(level, cfg.Output.LogFormat)
}

// resolveProviderKey pulls the API key for a live provider from the
// conventional environment variables when the config carries none.
func resolveProviderKey(cfg *model.Config) error {
	if cfg.Mode != model.ModeLive || cfg.Insight.APIKey != "" {
		return nil
	}
	switch cfg.Insight.Provider {
	case "openai":
		cfg.Insight.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Insight.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.Insight.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.Insight.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.Insight.BaseURL = baseURL
		}
	}
	return nil
}
