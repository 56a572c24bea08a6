package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"moviereview/internal/config"
	"moviereview/internal/db"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "review",
	Short: "Write a movie review",
	Long: `review searches TMDB for a movie, lets you pick the right one and opens $EDITOR
to write a review, which is stored with the movie in the SQLite database at $MOVIE_DATABASE.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runReview,
}

func init() {
	config.ApplyDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	bindFlag("log.level", "log-level")
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configNotFound) || os.IsNotExist(err) {
			return fmt.Errorf("config file %s not found", cfgFile)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// openStore loads the configuration and opens the review database.
func openStore() (*db.Store, config.AppConfig, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, config.AppConfig{}, err
	}

	store, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, config.AppConfig{}, fmt.Errorf("error initializing DB: %w", err)
	}
	return store, cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
