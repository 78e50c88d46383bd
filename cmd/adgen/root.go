package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/funnydev94625/AdGen/assemble"
	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/engine"
	"github.com/funnydev94625/AdGen/ffmpeg"
	"github.com/funnydev94625/AdGen/llm"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/pdfdoc"
	"github.com/funnydev94625/AdGen/script"
	"github.com/funnydev94625/AdGen/tts"
	"github.com/funnydev94625/AdGen/types"
	"github.com/funnydev94625/AdGen/visuals"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "adgen",
	Short: "Turn a text prompt into a multi-scene promotional video",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is for local development only
		_ = godotenv.Load()
		logging.Init(verbose)

		var err error
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		} else {
			cfg = config.Default()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(generateCmd, serveCmd, doctorCmd)
}

// buildEngine wires one pipeline run with its own working directory and
// state record.
func buildEngine(workDir string, state *types.RunState) (*engine.Engine, error) {
	ai, err := llm.New(config.OpenAIKey(), cfg)
	if err != nil {
		return nil, err
	}
	ff, err := ffmpeg.New(log.Logger)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, err
	}

	runway := visuals.NewClient(config.RunwayKey(),
		cfg.Image.Model, cfg.Image.Ratio,
		cfg.Video.SynthModel, cfg.Video.SynthRatio)

	planner := script.New(cfg, ai)
	vis := visuals.NewGenerator(cfg, runway, ai, ai, workDir)
	narr := tts.New(cfg, ai, ff, workDir)
	asm := assemble.New(cfg, ff, workDir)

	eng := engine.New(cfg, planner, vis, narr, asm, state).
		WithStandaloneImager(vis).
		WithDocumentMaker(pdfdoc.New(cfg))
	return eng, nil
}
