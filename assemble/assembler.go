package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/ffmpeg"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

const backgroundToneHz = 220.0

// Assembler turns per-scene media into one final timed video.
type Assembler struct {
	cfg     *config.Config
	ff      *ffmpeg.Executor
	workDir string
	logger  zerolog.Logger
}

// New creates a new Assembler using workDir for intermediates.
func New(cfg *config.Config, ff *ffmpeg.Executor, workDir string) *Assembler {
	return &Assembler{
		cfg:     cfg,
		ff:      ff,
		workDir: workDir,
		logger:  logging.WithComponent("assemble"),
	}
}

// AssembleFromImages builds the final video from per-scene still images:
// each image becomes a timed clip at the scene's duration with an optional
// zoom ramp, the transition policy is applied across valid clips, and the
// narration/background audio layer is attached. Returns "" on total failure.
func (a *Assembler) AssembleFromImages(ctx context.Context, scenes []types.Scene, imagePaths []string, narration string) string {
	type timedClip struct {
		image    string
		duration float64
	}
	var valid []timedClip
	for i, s := range scenes {
		if i < len(imagePaths) && imagePaths[i] != "" {
			valid = append(valid, timedClip{image: imagePaths[i], duration: s.Duration})
		} else {
			a.logger.Warn().Int("scene", s.SceneNumber).Msg("scene has no image, skipping clip")
		}
	}
	if len(valid) == 0 {
		a.logger.Error().Msg("no valid scene images to assemble")
		return ""
	}

	mode := TransitionMode(a.cfg.Video.TransitionType)
	type builtClip struct {
		image    string
		duration float64
		effects  ClipEffects
		out      string
	}
	var built []builtClip
	for i, tc := range valid {
		out := filepath.Join(a.workDir, fmt.Sprintf("clip_%02d.mp4", i+1))
		effects := EffectsFor(i, len(valid), mode)
		if err := a.imageClip(ctx, tc.image, tc.duration, effects, out); err != nil {
			a.logger.Warn().Int("clip", i+1).Err(err).Msg("clip build failed, dropping scene")
			continue
		}
		built = append(built, builtClip{image: tc.image, duration: tc.duration, effects: effects, out: out})
	}
	if len(built) == 0 {
		a.logger.Error().Msg("no clips could be built")
		return ""
	}

	baked := make([]ClipEffects, len(built))
	for i := range built {
		baked[i] = built[i].effects
	}
	for i, stale := range StaleEffects(baked, mode) {
		if !stale {
			continue
		}
		effects := EffectsFor(i, len(built), mode)
		if err := a.imageClip(ctx, built[i].image, built[i].duration, effects, built[i].out); err != nil {
			a.logger.Error().Int("clip", i+1).Err(err).Msg("could not rebuild clip fades")
			return ""
		}
	}

	clips := make([]string, len(built))
	for i := range built {
		clips[i] = built[i].out
	}

	combined := filepath.Join(a.workDir, "combined_silent.mp4")
	if err := a.concatClips(ctx, clips, combined); err != nil {
		a.logger.Error().Err(err).Msg("clip concatenation failed")
		return ""
	}

	final := filepath.Join(a.cfg.Paths.Output, fmt.Sprintf("generated_video_%s.mp4", timestamp()))
	return a.finishWithAudio(ctx, combined, narration, final)
}

// Concatenate joins pre-rendered per-scene videos in order with the
// transition policy applied, then attaches the audio layer. Invalid
// entries are filtered with a warning; zero valid entries is fatal.
func (a *Assembler) Concatenate(ctx context.Context, videoPaths []string, narration string) string {
	var valid []string
	for i, p := range videoPaths {
		if p == "" {
			a.logger.Warn().Int("scene", i+1).Msg("scene has no video, skipping")
			continue
		}
		if _, err := os.Stat(p); err != nil {
			a.logger.Warn().Str("path", p).Err(err).Msg("scene video unreadable, skipping")
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		a.logger.Error().Msg("no valid scene videos to concatenate")
		return ""
	}

	mode := TransitionMode(a.cfg.Video.TransitionType)
	type builtClip struct {
		src     string
		effects ClipEffects
		out     string
	}
	var built []builtClip
	for i, src := range valid {
		out := filepath.Join(a.workDir, fmt.Sprintf("norm_%02d.mp4", i+1))
		effects := EffectsFor(i, len(valid), mode)
		if err := a.videoClip(ctx, src, effects, out); err != nil {
			a.logger.Warn().Int("clip", i+1).Err(err).Msg("clip normalization failed, dropping scene")
			continue
		}
		built = append(built, builtClip{src: src, effects: effects, out: out})
	}
	if len(built) == 0 {
		a.logger.Error().Msg("no clips could be normalized")
		return ""
	}

	baked := make([]ClipEffects, len(built))
	for i := range built {
		baked[i] = built[i].effects
	}
	for i, stale := range StaleEffects(baked, mode) {
		if !stale {
			continue
		}
		effects := EffectsFor(i, len(built), mode)
		if err := a.videoClip(ctx, built[i].src, effects, built[i].out); err != nil {
			a.logger.Error().Int("clip", i+1).Err(err).Msg("could not rebuild clip fades")
			return ""
		}
	}

	clips := make([]string, len(built))
	for i := range built {
		clips[i] = built[i].out
	}

	combined := filepath.Join(a.workDir, "combined_silent.mp4")
	if err := a.concatClips(ctx, clips, combined); err != nil {
		a.logger.Error().Err(err).Msg("video concatenation failed")
		return ""
	}

	final := filepath.Join(a.cfg.Paths.Output, fmt.Sprintf("combined_video_%s.mp4", timestamp()))
	return a.finishWithAudio(ctx, combined, narration, final)
}

// imageClip renders one still image into a timed clip with resize, the
// optional 1.1x to 1.0x zoom ramp, and the clip's fades.
func (a *Assembler) imageClip(ctx context.Context, image string, duration float64, effects ClipEffects, out string) error {
	v := a.cfg.Video
	fb := ffmpeg.NewFilterBuilder()
	if v.PanZoom {
		fb.ZoomRamp(1.1, 1.0, duration, v.FPS, v.Width, v.Height)
	} else {
		fb.Scale(v.Width, v.Height).FPS(v.FPS)
	}
	a.applyFades(fb, effects, duration)

	return a.ff.Run(ctx,
		"-loop", "1",
		"-i", image,
		"-t", fmt.Sprintf("%.2f", duration),
		"-vf", fb.Build(),
		"-r", fmt.Sprintf("%d", v.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		out)
}

// videoClip normalizes a pre-rendered clip to the output resolution and
// frame rate and applies its fades.
func (a *Assembler) videoClip(ctx context.Context, src string, effects ClipEffects, out string) error {
	duration, err := a.ff.Probe(ctx, src)
	if err != nil {
		return err
	}

	v := a.cfg.Video
	fb := ffmpeg.NewFilterBuilder()
	fb.Scale(v.Width, v.Height).FPS(v.FPS)
	a.applyFades(fb, effects, duration)

	return a.ff.Run(ctx,
		"-i", src,
		"-vf", fb.Build(),
		"-r", fmt.Sprintf("%d", v.FPS),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-an",
		out)
}

func (a *Assembler) applyFades(fb *ffmpeg.FilterBuilder, effects ClipEffects, clipDuration float64) {
	d := a.cfg.Video.TransitionDuration
	if effects.FadeIn {
		fb.FadeIn(d)
	}
	if effects.FadeOut {
		fb.FadeOut(clipDuration, d)
	}
}

func (a *Assembler) concatClips(ctx context.Context, clips []string, out string) error {
	listPath, err := ffmpeg.WriteConcatList(a.workDir, "video_concat.txt", clips)
	if err != nil {
		return err
	}
	return a.ff.Run(ctx,
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		out)
}

// finishWithAudio reconciles the narration to the video duration, mixes in
// the background tone when enabled, and muxes the result. Audio problems
// degrade to a silent video rather than failing the assembly.
func (a *Assembler) finishWithAudio(ctx context.Context, video, narration, final string) string {
	if err := os.MkdirAll(a.cfg.Paths.Output, 0755); err != nil {
		a.logger.Error().Err(err).Msg("could not create output directory")
		return ""
	}

	audioTrack := a.buildAudioTrack(ctx, video, narration)
	if audioTrack == "" {
		if err := copyFile(video, final); err != nil {
			a.logger.Error().Err(err).Msg("could not write final video")
			return ""
		}
		a.logger.Info().Str("path", final).Msg("final video written (silent)")
		return final
	}

	if err := a.ff.MuxAudio(ctx, video, audioTrack, final); err != nil {
		a.logger.Warn().Err(err).Msg("audio mux failed, writing silent video")
		if err := copyFile(video, final); err != nil {
			a.logger.Error().Err(err).Msg("could not write final video")
			return ""
		}
	}
	a.logger.Info().Str("path", final).Msg("final video written")
	return final
}

// buildAudioTrack returns the mixed audio for the video, or "" when there
// is nothing to attach.
func (a *Assembler) buildAudioTrack(ctx context.Context, video, narration string) string {
	videoDur, err := a.ff.Probe(ctx, video)
	if err != nil {
		a.logger.Warn().Err(err).Msg("could not probe combined video")
		return ""
	}

	voice := ""
	if narration != "" {
		narrDur, err := a.ff.Probe(ctx, narration)
		if err != nil {
			a.logger.Warn().Err(err).Msg("could not probe narration, dropping it")
		} else {
			reconciled := filepath.Join(a.workDir, "narration_fit.wav")
			if err := a.ff.ReconcileNarration(ctx, narration, narrDur, videoDur, reconciled); err != nil {
				a.logger.Warn().Err(err).Msg("narration reconciliation failed, dropping it")
			} else {
				voice = reconciled
			}
		}
	}

	music := ""
	if a.cfg.Music.Enabled {
		tone := filepath.Join(a.workDir, "bg_tone.wav")
		if err := a.ff.BackgroundTone(ctx, backgroundToneHz, videoDur, a.cfg.Music.Volume, tone); err != nil {
			a.logger.Warn().Err(err).Msg("background tone synthesis failed")
		} else {
			music = tone
		}
	}

	switch {
	case voice != "" && music != "":
		mixed := filepath.Join(a.workDir, "audio_mix.wav")
		if err := a.ff.MixAudio(ctx, voice, music, mixed); err != nil {
			a.logger.Warn().Err(err).Msg("audio mix failed, using narration only")
			return voice
		}
		return mixed
	case voice != "":
		return voice
	case music != "":
		return music
	default:
		return ""
	}
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
