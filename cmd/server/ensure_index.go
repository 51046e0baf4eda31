package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pdfchatbot/internal/bootstrap"
)

var ensureIndexCmd = &cobra.Command{
	Use:   "ensure-index",
	Short: "Create the configured vector index if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		app, err := bootstrap.OpenIndex(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := bootstrap.EnsureIndex(cmd.Context(), cfg, app.Index); err != nil {
			return err
		}
		logger.Info("index ready",
			zap.String("backend", cfg.Index.Backend),
			zap.String("index", cfg.Index.Name),
			zap.Int("dimension", cfg.Index.Dimension))
		cmd.Printf("index %s ready (%s, dimension %d)\n", cfg.Index.Name, cfg.Index.Backend, cfg.Index.Dimension)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexCmd)
}
