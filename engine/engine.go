package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

// Stage names the pipeline's sequential phases.
type Stage string

const (
	StagePlan           Stage = "PLAN"
	StageVisuals        Stage = "VISUALS"
	StageNarration      Stage = "NARRATION"
	StageMergeNarration Stage = "MERGE_NARRATION"
	StageVideoScript    Stage = "PER_SCENE_VIDEO_SCRIPT"
	StageVideoSynthesis Stage = "VIDEO_SYNTHESIS"
	StageCombine        Stage = "COMBINE"
	StageCleanup        Stage = "CLEANUP"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// Planner is the script-planning capability.
type Planner interface {
	Plan(ctx context.Context, prompt string) []types.Scene
	VideoScript(ctx context.Context, sceneText string) (string, error)
}

// VisualGenerator is the per-scene image/video generation capability.
type VisualGenerator interface {
	GenerateImages(ctx context.Context, scenes []types.Scene) []string
	GenerateVideos(ctx context.Context, scenes []types.Scene, imagePaths, videoScripts []string) []string
}

// NarrationGenerator is the speech capability.
type NarrationGenerator interface {
	SynthesizeScenes(ctx context.Context, scenes []types.Scene) []string
	Merge(ctx context.Context, audioPaths []string) string
}

// Assembler is the media-assembly capability.
type Assembler interface {
	AssembleFromImages(ctx context.Context, scenes []types.Scene, imagePaths []string, narration string) string
	Concatenate(ctx context.Context, videoPaths []string, narration string) string
}

// StandaloneImager produces a one-off promotional image.
type StandaloneImager interface {
	GenerateStandalone(ctx context.Context, prompt string) (string, error)
}

// DocumentMaker renders the scene plan to a document.
type DocumentMaker interface {
	FromScenes(scenes []types.Scene, imagePaths []string, title string) (string, error)
}

// Engine sequences the pipeline stages for one run. Expected generation
// failures never escape as errors: a failed run yields an empty path and
// the reason lives in the log and the run state.
type Engine struct {
	cfg       *config.Config
	planner   Planner
	visuals   VisualGenerator
	narration NarrationGenerator
	assembler Assembler
	imager    StandaloneImager // optional
	docs      DocumentMaker    // optional
	logger    zerolog.Logger
	state     *types.RunState
}

// New creates an Engine over the four core capabilities. state is updated
// at each stage boundary and may be nil for callers that do not poll.
func New(cfg *config.Config, planner Planner, visuals VisualGenerator, narration NarrationGenerator, assembler Assembler, state *types.RunState) *Engine {
	return &Engine{
		cfg:       cfg,
		planner:   planner,
		visuals:   visuals,
		narration: narration,
		assembler: assembler,
		logger:    logging.WithComponent("engine"),
		state:     state,
	}
}

// WithStandaloneImager attaches the optional one-off image capability.
func (e *Engine) WithStandaloneImager(im StandaloneImager) *Engine {
	e.imager = im
	return e
}

// WithDocumentMaker attaches the optional PDF capability.
func (e *Engine) WithDocumentMaker(d DocumentMaker) *Engine {
	e.docs = d
	return e
}

// runArtifacts collects everything a run produced, for cleanup and for
// the multi-format path.
type runArtifacts struct {
	scenes     []types.Scene
	imagePaths []string
	audioPaths []string
	narration  string
	videoPaths []string
	finalVideo string
}

// Run executes the full pipeline for one prompt. Returns the final video
// path, or "" when the run failed; no error is raised for expected
// generation failures.
func (e *Engine) Run(ctx context.Context, prompt string, cleanup bool) (final string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("pipeline run panicked")
			e.fail(fmt.Sprintf("internal error: %v", r))
			final = ""
		}
	}()

	art := e.runPipeline(ctx, prompt)
	if art == nil {
		return ""
	}
	if cleanup {
		e.cleanup(art)
	}
	e.complete(art.finalVideo)
	return art.finalVideo
}

func (e *Engine) runPipeline(ctx context.Context, prompt string) *runArtifacts {
	art := &runArtifacts{}

	e.setStage(StagePlan, 5, "planning scenes")
	art.scenes = e.planner.Plan(ctx, prompt)
	if len(art.scenes) == 0 {
		e.fail("scene planning produced no scenes")
		return nil
	}
	summary := types.Summarize(art.scenes)
	e.logger.Info().
		Int("scenes", summary.SceneCount).
		Float64("total_sec", summary.TotalDuration).
		Msg("plan ready")

	e.setStage(StageVisuals, 25, "generating scene images")
	art.imagePaths = e.visuals.GenerateImages(ctx, art.scenes)
	if countPresent(art.imagePaths) == 0 {
		e.fail("image generation failed for every scene")
		return nil
	}

	e.setStage(StageNarration, 45, "synthesizing narration")
	art.audioPaths = e.narration.SynthesizeScenes(ctx, art.scenes)

	e.setStage(StageMergeNarration, 55, "merging narration")
	art.narration = e.narration.Merge(ctx, art.audioPaths)
	if art.narration == "" {
		e.logger.Warn().Msg("no narration track, video will be silent")
	}

	e.setStage(StageVideoScript, 60, "writing per-scene video scripts")
	scripts := make([]string, len(art.scenes))
	for i, scene := range art.scenes {
		if art.imagePaths[i] == "" {
			continue
		}
		s, err := e.planner.VideoScript(ctx, scene.Text)
		if err != nil {
			e.logger.Warn().Int("scene", scene.SceneNumber).Err(err).Msg("video script generation failed")
			continue
		}
		scripts[i] = s
	}

	e.setStage(StageVideoSynthesis, 75, "synthesizing scene videos")
	art.videoPaths = e.visuals.GenerateVideos(ctx, art.scenes, art.imagePaths, scripts)

	e.setStage(StageCombine, 90, "assembling final video")
	if countPresent(art.videoPaths) > 0 {
		art.finalVideo = e.assembler.Concatenate(ctx, art.videoPaths, art.narration)
	} else {
		e.logger.Warn().Msg("no scene videos were synthesized, assembling from images")
		art.finalVideo = e.assembler.AssembleFromImages(ctx, art.scenes, art.imagePaths, art.narration)
	}
	if art.finalVideo == "" {
		e.fail("final assembly produced no output")
		return nil
	}
	return art
}

// ContentResult is the multi-format output bundle.
type ContentResult struct {
	VideoPath string
	ImagePath string
	PDFPath   string
}

// GenerateAllContent runs the video pipeline and additionally produces a
// standalone image and a PDF of the plan when those capabilities are
// configured. Extras are best-effort: their failures never fail the run.
func (e *Engine) GenerateAllContent(ctx context.Context, prompt string, cleanup bool) (res ContentResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("pipeline run panicked")
			e.fail(fmt.Sprintf("internal error: %v", r))
			res = ContentResult{}
		}
	}()

	art := e.runPipeline(ctx, prompt)
	if art == nil {
		return ContentResult{}
	}
	res.VideoPath = art.finalVideo

	if e.imager != nil {
		path, err := e.imager.GenerateStandalone(ctx, prompt)
		if err != nil {
			e.logger.Warn().Err(err).Msg("standalone image generation failed")
		} else {
			res.ImagePath = path
		}
	}

	if e.docs != nil && e.cfg.PDF.Enabled {
		path, err := e.docs.FromScenes(art.scenes, art.imagePaths, prompt)
		if err != nil {
			e.logger.Warn().Err(err).Msg("pdf generation failed")
		} else {
			res.PDFPath = path
		}
	}

	if cleanup {
		e.cleanup(art)
	}
	e.complete(art.finalVideo)
	return res
}

// cleanup removes per-scene intermediates. The final combined output is
// never touched, whatever else shares its directory. Individual delete
// failures are logged and ignored.
func (e *Engine) cleanup(art *runArtifacts) {
	e.setStage(StageCleanup, 95, "removing intermediate files")

	var targets []string
	targets = append(targets, art.imagePaths...)
	targets = append(targets, art.audioPaths...)
	if art.narration != "" {
		targets = append(targets, art.narration)
	}
	targets = append(targets, art.videoPaths...)

	for _, path := range targets {
		if path == "" || path == art.finalVideo {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn().Str("path", path).Err(err).Msg("could not remove intermediate file")
		}
	}
}

func (e *Engine) setStage(stage Stage, progress int, message string) {
	e.logger.Info().Str("stage", string(stage)).Msg(message)
	if e.state != nil {
		e.state.SetProcessing(progress, fmt.Sprintf("%s: %s", stage, message))
	}
}

func (e *Engine) fail(reason string) {
	e.logger.Error().Str("stage", string(StageFailed)).Msg(reason)
	if e.state != nil {
		e.state.SetFailed(reason)
	}
}

func (e *Engine) complete(output string) {
	if e.state != nil {
		e.state.SetCompleted(output)
	}
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
