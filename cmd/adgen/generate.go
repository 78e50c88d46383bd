package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/funnydev94625/AdGen/types"
)

var (
	keepIntermediates bool
	allFormats        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a video from a text prompt",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")

		runID := uuid.NewString()[:8]
		workDir := filepath.Join(cfg.Paths.Temp, runID)
		state := types.NewRunState(runID, prompt)

		eng, err := buildEngine(workDir, state)
		if err != nil {
			return err
		}

		ctx := context.Background()
		cleanup := !keepIntermediates

		if allFormats {
			res := eng.GenerateAllContent(ctx, prompt, cleanup)
			if res.VideoPath == "" {
				return fmt.Errorf("generation failed: %s", state.Snapshot().Error)
			}
			fmt.Println("video:", res.VideoPath)
			if res.ImagePath != "" {
				fmt.Println("image:", res.ImagePath)
			}
			if res.PDFPath != "" {
				fmt.Println("pdf:  ", res.PDFPath)
			}
			return nil
		}

		final := eng.Run(ctx, prompt, cleanup)
		if final == "" {
			return fmt.Errorf("generation failed: %s", state.Snapshot().Error)
		}
		fmt.Println(final)
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&keepIntermediates, "keep-intermediates", false, "keep per-scene files after the run")
	generateCmd.Flags().BoolVar(&allFormats, "all", false, "also generate a standalone image and a script PDF")
}
