// Package cmd contains all CLI commands for tolk.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/f3rmion/tolk/internal/api"
	"github.com/f3rmion/tolk/internal/config"
	"github.com/f3rmion/tolk/internal/library"
	"github.com/f3rmion/tolk/internal/logging"
	"github.com/f3rmion/tolk/internal/tui"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	libraryFile = "library.db"
	logFile     = "tolk.log"
	exportFile  = "vocabulary.xlsx"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tolk",
	Short: "Read foreign-language texts with aligned translations",
	Long: `tolk is a terminal reader for language learners.

Texts from your library are translated sentence by sentence. Aligned
source and target words share a color, every source word can be looked
up in the dictionary, and words can be added to a vocabulary that a
spaced-repetition service schedules for review.

Running 'tolk' without arguments launches the interactive TUI.`,
	RunE: runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/tolk)")
	rootCmd.PersistentFlags().String("server", "", "service base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output")

	viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads a .env file and ENV variables if set.
func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.Set("config_dir", cfgFile)
	} else {
		dir, err := config.GetConfigDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}
		viper.Set("config_dir", dir)
	}

	viper.SetEnvPrefix("TOLK")
	viper.AutomaticEnv()
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	return viper.GetString("config_dir")
}

// loadConfig reads config.yaml and applies flag and TOLK_* overrides.
func loadConfig() (*config.Config, error) {
	dir, err := config.EnsureConfigDir(getConfigDir())
	if err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if v := viper.GetString("server_url"); v != "" {
		cfg.ServerURL = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if viper.GetBool("verbose") {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}
	return cfg, nil
}

// setupLogging points the global logger at the log file in the config
// directory. The returned func closes the file.
func setupLogging(cfg *config.Config) (func(), error) {
	logger, closer, err := logging.New(cfg.LogLevel, filepath.Join(getConfigDir(), logFile))
	if err != nil {
		return closer, fmt.Errorf("setting up logging: %w", err)
	}
	logging.SetGlobal(logger)
	return closer, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.ServerURL, cfg.Timeout)
}

func openLibrary() (*library.Store, error) {
	store, err := library.Open(filepath.Join(getConfigDir(), libraryFile))
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	return store, nil
}

// runTUI launches the TUI on the library view.
func runTUI(cmd *cobra.Command, args []string) error {
	return launch(tui.Options{StartView: tui.ViewLibrary})
}

// launch wires config, logging, the service client and the library into the
// TUI and runs it. Fields already set in opts are kept.
func launch(opts tui.Options) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openLibrary()
	if err != nil {
		return err
	}
	defer store.Close()

	client := newClient(cfg)
	log := logging.Component("tui")
	log.Info().Str("server", client.BaseURL()).Msg("starting")

	opts.Backend = client
	opts.Library = store
	opts.Config = cfg
	opts.Logger = log
	if opts.ExportPath == "" {
		opts.ExportPath = filepath.Join(getConfigDir(), exportFile)
	}
	if opts.ImportDir == "" {
		opts.ImportDir, _ = os.Getwd()
	}

	return tui.Run(opts)
}
