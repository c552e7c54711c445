// Package cmd provides the command-line interface for the vidresume application.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/connorhough/vidresume/internal/config"
	"github.com/connorhough/vidresume/internal/logging"
	"github.com/connorhough/vidresume/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	rootCmd *cobra.Command

	// logger is rebuilt from log_level once the config is read.
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and runs it with ctx,
// which is cancelled on SIGINT/SIGTERM. This is called by main.go.
func Execute(ctx context.Context) error {
	if rootCmd == nil {
		rootCmd = NewRootCmd()
	}
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCmd creates and returns the root command for vidresume
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vidresume",
		Short: "Reopen partially watched videos where you left off",
		Long: `vidresume opens one browser window per partially watched video at its saved
position, tiles the windows, starts and pauses each player, and closes the
windows again so the browser remembers where every video stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default locations: $XDG_CONFIG_HOME/vidresume/config.yaml, ~/.config/vidresume/config.yaml, or ~/.vidresume.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (overrides log_level)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newWindowsCmd())

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		if err := viper.BindPFlag("log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
			return err
		}
		return initLogger()
	}

	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "vidresume"))
		} else {
			viper.AddConfigPath(filepath.Join(home, ".config", "vidresume"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")

		// ~/.vidresume.yaml is read only when no config.yaml exists.
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
			legacy := filepath.Join(home, ".vidresume.yaml")
			if _, err := os.Stat(legacy); err == nil {
				viper.SetConfigFile(legacy)
			}
		}
	}

	// VIDRESUME_TIMING_SETTLE=5s sets timing.settle.
	viper.SetEnvPrefix("VIDRESUME")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing --config file is fine; `config init` creates it.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

func initLogger() error {
	cfg := logging.DefaultConfig()
	cfg.Level = viper.GetString("log_level")
	l, err := logging.New(cfg)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
