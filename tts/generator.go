package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/ffmpeg"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

// scenePauseSec is the silence inserted between consecutive scenes when
// merging narration.
const scenePauseSec = 0.5

// Speaker is the speech-synthesis capability.
type Speaker interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Generator produces per-scene narration audio and merges it into one
// continuous track.
type Generator struct {
	cfg     *config.Config
	speaker Speaker
	ff      *ffmpeg.Executor
	workDir string
	logger  zerolog.Logger
}

// New creates a new narration Generator writing into workDir.
func New(cfg *config.Config, speaker Speaker, ff *ffmpeg.Executor, workDir string) *Generator {
	return &Generator{
		cfg:     cfg,
		speaker: speaker,
		ff:      ff,
		workDir: workDir,
		logger:  logging.WithComponent("tts"),
	}
}

// abbreviations expanded before synthesis for better pronunciation.
var abbreviations = []struct{ from, to string }{
	{"Dr.", "Doctor"},
	{"Mr.", "Mister"},
	{"Mrs.", "Misses"},
	{"Ms.", "Miss"},
	{"Prof.", "Professor"},
	{"vs.", "versus"},
	{"etc.", "etcetera"},
	{"&", "and"},
	{"%", "percent"},
	{"$", "dollars"},
	{"#", "number"},
	{"@", "at"},
}

// NormalizeText prepares scene text for speech synthesis: abbreviation
// expansion and forced terminal punctuation.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	for _, a := range abbreviations {
		text = strings.ReplaceAll(text, a.from, a.to)
	}
	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}

// SynthesizeScenes generates one WAV per scene, positionally aligned to
// the scene list. A scene whose synthesis fails gets an empty slot.
func (g *Generator) SynthesizeScenes(ctx context.Context, scenes []types.Scene) []string {
	paths := make([]string, len(scenes))
	for i, scene := range scenes {
		g.logger.Info().Int("scene", i+1).Int("total", len(scenes)).Msg("synthesizing narration")

		path, err := g.synthesizeScene(ctx, scene.Text, i+1)
		if err != nil {
			g.logger.Warn().Int("scene", i+1).Err(err).Msg("narration synthesis failed")
		} else {
			paths[i] = path
		}

		if i < len(scenes)-1 {
			gap := time.Duration(g.cfg.Retry.SpeechRequestGapSec * float64(time.Second))
			if gap > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(gap):
				}
			}
		}
	}

	ok := 0
	for _, p := range paths {
		if p != "" {
			ok++
		}
	}
	g.logger.Info().Int("ok", ok).Int("total", len(scenes)).Msg("narration synthesis finished")
	return paths
}

func (g *Generator) synthesizeScene(ctx context.Context, text string, sceneNumber int) (string, error) {
	audio, err := g.speaker.Speak(ctx, NormalizeText(text))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.workDir, 0755); err != nil {
		return "", err
	}
	mp3Path := filepath.Join(g.workDir, fmt.Sprintf("narration_%02d.mp3", sceneNumber))
	if err := os.WriteFile(mp3Path, audio, 0644); err != nil {
		return "", fmt.Errorf("save narration audio: %w", err)
	}

	// Uniform PCM keeps downstream duration math and mixing reliable.
	wavPath := strings.TrimSuffix(mp3Path, ".mp3") + ".wav"
	if err := g.ff.TranscodeToWAV(ctx, mp3Path, wavPath); err != nil {
		return "", err
	}
	_ = os.Remove(mp3Path)
	return wavPath, nil
}

// Merge concatenates all present per-scene tracks in scene order with a
// half-second pause between consecutive scenes. Returns "" when no scene
// audio succeeded; the caller treats that as silent video, not an error.
func (g *Generator) Merge(ctx context.Context, audioPaths []string) string {
	var valid []string
	for _, p := range audioPaths {
		if p != "" {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		g.logger.Warn().Msg("no narration audio to merge")
		return ""
	}

	pausePath := filepath.Join(g.workDir, "scene_pause.wav")
	if err := g.ff.Silence(ctx, scenePauseSec, pausePath); err != nil {
		g.logger.Warn().Err(err).Msg("could not generate inter-scene pause")
		return ""
	}

	var entries []string
	for i, p := range valid {
		entries = append(entries, p)
		if i < len(valid)-1 {
			entries = append(entries, pausePath)
		}
	}

	listPath, err := ffmpeg.WriteConcatList(g.workDir, "narration_concat.txt", entries)
	if err != nil {
		g.logger.Warn().Err(err).Msg("could not write narration concat list")
		return ""
	}

	narrationPath := filepath.Join(g.workDir, "full_narration.wav")
	if err := g.ff.ConcatAudio(ctx, listPath, narrationPath); err != nil {
		g.logger.Warn().Err(err).Msg("narration merge failed")
		return ""
	}

	g.logger.Info().Str("path", narrationPath).Int("scenes", len(valid)).Msg("narration merged")
	return narrationPath
}
