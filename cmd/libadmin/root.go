package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/infrastructure/config"
	"github.com/xiebiao/libadmin/pkg/logger"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "libadmin",
		Short:        "Admin console for the library REST API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default: config/config.yaml when present)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.New(logger.Config{
			Level:        cfg.Log.Level,
			Format:       cfg.Log.Format,
			Output:       cfg.Log.Output,
			EnableCaller: cfg.Log.EnableCaller,
		})
		if err != nil {
			return nil, nil, err
		}
		return cfg, log, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newLoginCmd(load),
		newTokenCmd(),
		newAuditCmd(load),
	)
	return root
}

// loader reads the configuration and builds the logger.
type loader func() (*config.Config, *zap.Logger, error)
