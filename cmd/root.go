package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mavmaso/ficherors/cmd/worker"
	"github.com/mavmaso/ficherors/internal/config"
	"github.com/mavmaso/ficherors/internal/logger"
)

var (
	cfgPath string
	cfg     config.Config
	rootCmd = &cobra.Command{
		Use:           "ficherors",
		Short:         "Contact list destination formatter",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = c
			logger.Init(cfg.Log.Level, cfg.Log.Encoding)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(worker.NewWorkerCmd())
}
