// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ghostcursor/internal/browser"
	"github.com/xkilldash9x/ghostcursor/internal/config"
	"github.com/xkilldash9x/ghostcursor/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagBindings maps persistent flags onto their config keys.
var flagBindings = map[string]string{
	"engine":   "browser.engine",
	"headless": "browser.headless",
	"wander":   "cursor.wander",
	"record":   "database.record",
}

// NewRootCommand builds a fresh command tree. Each call owns its own viper
// instance so repeated executions do not share flag state.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "ghostcursor",
		Short:         "Ghostcursor moves a browser pointer the way a person would.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "ghostcursor"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting ghostcursor", zap.String("version", Version), zap.String("command", cmd.Name()))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./ghostcursor.yaml, then ~/.ghostcursor/ghostcursor.yaml)")
	rootCmd.PersistentFlags().String("engine", config.EngineChromedp, "browser engine: chromedp or rod")
	rootCmd.PersistentFlags().Bool("headless", true, "run the browser without a window")
	rootCmd.PersistentFlags().Bool("wander", false, "let the cursor drift while idle")
	rootCmd.PersistentFlags().Bool("record", false, "store traced trajectories in Postgres")

	provider := NewStoreProvider()
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTraceCmd(provider))
	rootCmd.AddCommand(newMoveCmd(browser.Launch, provider))
	rootCmd.AddCommand(newClickCmd(browser.Launch, provider))
	rootCmd.AddCommand(newHistoryCmd(provider))
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// Execute runs the command tree with a signal-aware context.
func Execute(ctx context.Context) error {
	defer observability.Sync()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			observability.GetLogger().Info("Command canceled")
			return err
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// initializeConfig reads in the config file and ENV variables if set, then
// binds explicitly set flags over both.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".ghostcursor"))
		}
		v.SetConfigName("ghostcursor")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("GHOSTCURSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}

	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// getConfigFromContext returns the config stored by the root pre-run hook.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}
