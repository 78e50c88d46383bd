package main

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funnydev94625/AdGen/types"
	"github.com/funnydev94625/AdGen/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		launch := func(ctx context.Context, prompt string, state *types.RunState) {
			workDir := filepath.Join(cfg.Paths.Temp, state.TaskID)
			eng, err := buildEngine(workDir, state)
			if err != nil {
				log.Error().Err(err).Str("task", state.TaskID).Msg("could not start pipeline")
				state.SetFailed(err.Error())
				return
			}
			eng.Run(ctx, prompt, true)
		}

		return web.NewServer(cfg, launch).Serve()
	},
}
