package visuals

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

// TaskClient is the generation-service boundary the Generator drives.
type TaskClient interface {
	CreateImage(ctx context.Context, req ImageRequest) TaskResult
	CreateVideo(ctx context.Context, req VideoRequest) TaskResult
	Download(ctx context.Context, url, dest string) error
}

// Completer is the analysis capability used for the visual context.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ImageMaker is the one-off standalone-image capability.
type ImageMaker interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Generator produces per-scene images and videos with a rolling reference
// between consecutive scenes. Result lists are positionally aligned to the
// scene list, with an empty string marking a scene whose generation failed.
type Generator struct {
	cfg     *config.Config
	client  TaskClient
	llm     Completer
	images  ImageMaker
	workDir string
	logger  zerolog.Logger

	vc *VisualContext
}

// NewGenerator creates a new visual Generator writing into workDir.
func NewGenerator(cfg *config.Config, client TaskClient, llm Completer, images ImageMaker, workDir string) *Generator {
	return &Generator{
		cfg:     cfg,
		client:  client,
		llm:     llm,
		images:  images,
		workDir: workDir,
		logger:  logging.WithComponent("visuals"),
	}
}

// GenerateImages generates one image per scene. The saved artifact from
// scene i is supplied as a conditioning reference for scene i+1; the first
// scene has no reference. A scene that exhausts its retries gets an empty
// slot, never a shortened list.
func (g *Generator) GenerateImages(ctx context.Context, scenes []types.Scene) []string {
	if g.vc == nil {
		g.vc = g.AnalyzeContext(ctx, scenes)
	}

	paths := make([]string, len(scenes))
	ref := ""
	for i, scene := range scenes {
		g.logger.Info().Int("scene", i+1).Int("total", len(scenes)).Msg("generating image")

		prompt := g.vc.Enrich(scene.Text)
		var req ImageRequest
		if ref == "" {
			req = UnconditionedImage(prompt)
		} else {
			req = ReferenceConditionedImage(prompt, ref)
		}

		dest := filepath.Join(g.workDir, fmt.Sprintf("image_%02d.png", i+1))
		paths[i] = g.generateWithRetry(ctx, dest, g.cfg.Retry.ImageRetryDelaySec, func(ctx context.Context) TaskResult {
			return g.client.CreateImage(ctx, req)
		})

		if paths[i] != "" {
			if uri, err := ImageDataURI(paths[i]); err == nil {
				ref = uri
			} else {
				g.logger.Warn().Err(err).Msg("could not encode reference image, next scene runs unconditioned")
				ref = ""
			}
		}

		// Rate limit gap between scenes, success or not, except after
		// the last one.
		if i < len(scenes)-1 {
			sleep(ctx, secs(g.cfg.Retry.ImageRequestGapSec))
		}
	}

	g.logger.Info().Int("ok", countPresent(paths)).Int("total", len(scenes)).Msg("image generation finished")
	return paths
}

// GenerateVideos synthesizes one clip per scene from its image artifact
// and director script. The inter-request gap applies only after a success;
// a failed scene already waited out its own retry delays.
func (g *Generator) GenerateVideos(ctx context.Context, scenes []types.Scene, imagePaths, videoScripts []string) []string {
	paths := make([]string, len(scenes))
	for i := range scenes {
		if imagePaths[i] == "" || videoScripts[i] == "" {
			g.logger.Warn().Int("scene", i+1).Msg("no image or script for scene, skipping video synthesis")
			continue
		}

		uri, err := ImageDataURI(imagePaths[i])
		if err != nil {
			g.logger.Warn().Int("scene", i+1).Err(err).Msg("could not read scene image, skipping video synthesis")
			continue
		}

		g.logger.Info().Int("scene", i+1).Int("total", len(scenes)).Msg("generating video")
		req := VideoRequest{
			Script:       videoScripts[i],
			ImageDataURI: uri,
			Duration:     g.cfg.Video.SynthDuration,
		}

		dest := filepath.Join(g.workDir, fmt.Sprintf("video_%02d.mp4", i+1))
		paths[i] = g.generateWithRetry(ctx, dest, g.cfg.Retry.VideoRetryDelaySec, func(ctx context.Context) TaskResult {
			return g.client.CreateVideo(ctx, req)
		})

		if paths[i] != "" && i < len(scenes)-1 {
			sleep(ctx, secs(g.cfg.Retry.VideoRequestGapSec))
		}
	}

	g.logger.Info().Int("ok", countPresent(paths)).Int("total", len(scenes)).Msg("video generation finished")
	return paths
}

// generateWithRetry runs one bounded retry loop around a create+poll call
// plus download. Returns the local path, or "" after exhausting retries.
func (g *Generator) generateWithRetry(ctx context.Context, dest string, retryDelaySec float64, call func(context.Context) TaskResult) string {
	maxRetries := g.cfg.Retry.MaxRetries
	for attempt := 1; attempt <= maxRetries; attempt++ {
		result := call(ctx)
		switch result.Kind {
		case ResultSucceeded:
			if err := g.client.Download(ctx, result.URL, dest); err == nil {
				return dest
			} else {
				g.logger.Warn().Int("attempt", attempt).Err(err).Msg("artifact download failed")
			}
		case ResultFatal:
			g.logger.Error().Err(result.Err).Msg("generation not possible, giving up on scene")
			return ""
		default:
			g.logger.Warn().Int("attempt", attempt).Int("max", maxRetries).Err(result.Err).Msg("generation attempt failed")
		}

		if attempt < maxRetries {
			sleep(ctx, secs(retryDelaySec))
		}
	}
	return ""
}

// GenerateStandalone produces a single promotional image for the prompt
// via the image capability, saved under workDir.
func (g *Generator) GenerateStandalone(ctx context.Context, prompt string) (string, error) {
	if g.images == nil {
		return "", fmt.Errorf("no image capability configured")
	}
	vc := g.vc
	if vc == nil {
		vc = defaultContext(isAdvertisement(prompt))
	}

	url, err := g.images.GenerateImage(ctx, vc.Enrich(prompt))
	if err != nil {
		return "", err
	}
	dest := filepath.Join(g.workDir, fmt.Sprintf("standalone_%s.png", time.Now().Format("20060102_150405")))
	if err := g.client.Download(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func countPresent(paths []string) int {
	n := 0
	for _, p := range paths {
		if p != "" {
			n++
		}
	}
	return n
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
