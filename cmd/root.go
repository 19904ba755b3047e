package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kaczor4444/kompas-seniora/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kompas",
	Short: "Care-facility cost data toolchain",
	Long:  "Parses county cost tables extracted from council resolutions, normalizes prices, flags anomalous entries for manual review, and maintains the production facility dataset.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
