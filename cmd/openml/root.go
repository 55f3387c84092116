package main

import (
	"github.com/spf13/cobra"

	openml "github.com/Crozal/openml-go"
	"github.com/Crozal/openml-go/internal/config"
	"github.com/Crozal/openml-go/internal/logx"
	"github.com/Crozal/openml-go/internal/paths"
)

func newRootCmd() *cobra.Command {
	var cfgPath string
	var verbosity string

	cmd := &cobra.Command{
		Use:           "openml",
		Short:         "Browse OpenML flows with a local cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", paths.ConfigFile(), "path to config file")
	cmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newFlowCmd(&cfgPath, &verbosity))
	cmd.AddCommand(newCacheCmd(&cfgPath, &verbosity))
	cmd.AddCommand(newDoctorCmd(&cfgPath, &verbosity))

	return cmd
}

func loadConfig(cfgPath, verbosity string) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	if verbosity != "" {
		cfg.LogLevel = verbosity
	}
	logx.Setup(cfg.LogLevel)
	return cfg, nil
}

// withClient loads config, opens a client against the configured server
// and cache, and closes it when fn returns.
func withClient(cmd *cobra.Command, cfgPath, verbosity string, fn func(*openml.Client, config.Config) error) error {
	cfg, err := loadConfig(cfgPath, verbosity)
	if err != nil {
		return err
	}

	client, err := openml.New(cmd.Context(),
		openml.WithServer(cfg.Server),
		openml.WithAPIKey(cfg.APIKey),
		openml.WithCacheDir(cfg.CacheDir),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(client, cfg)
}
