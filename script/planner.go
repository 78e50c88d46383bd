package script

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

const planSystemPrompt = `You are a professional video director and storyteller. You take any simple text input (an event description, product launch, campaign idea, or brand story) and transform it into a scene-by-scene video plan.

Instructions:
1. The video should last between 1-3 minutes.
2. Break the video into scenes of exactly 10 seconds each.
3. Output format must be:
SCENE 1: [Detailed, cinematic, modern visual description] | Duration: 10 seconds
SCENE 2: [Detailed, cinematic, modern visual description] | Duration: 10 seconds
... continue until the full story is covered.
4. Each scene should feel authentic, realistic, and engaging, like a professionally filmed live-action commercial or promotional video.
5. Use modern, clear, and visually compelling language. Make the viewer feel immersed.
6. Add text overlays where appropriate (event names, slogans, calls to action).
7. Maintain consistency of style and atmosphere across all scenes.
8. End with a strong closing scene that reinforces the main message.`

// realismPreamble is prefixed to every parsed scene description before it
// reaches image generation. VideoScript trims it back off.
const realismPreamble = "This is a high-quality scene of live film captured by camera not photo, not cartoon. Remember this. Everything of the scene(door, trees, people, etc.) is sharp and clear. This is the real scene. This is the most important thing. Like Real handsome men and beautiful women, Real Environment, Real scene. description: "

const (
	sceneMarker       = "SCENE"
	durationSeparator = "| Duration:"
)

// Completer is the text-completion capability the planner depends on.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Planner decomposes a prompt into an ordered, timed scene list.
type Planner struct {
	cfg    *config.Config
	llm    Completer
	logger zerolog.Logger
}

// New creates a new Planner
func New(cfg *config.Config, llm Completer) *Planner {
	return &Planner{
		cfg:    cfg,
		llm:    llm,
		logger: logging.WithComponent("script"),
	}
}

// Plan asks the LLM to break the prompt into timed scenes. It never
// returns an empty list for non-empty input: any LLM or parse failure
// falls back to a deterministic 4-scene template.
func (p *Planner) Plan(ctx context.Context, prompt string) []types.Scene {
	prompt = cleanPrompt(prompt)

	raw, err := p.llm.Complete(ctx, planSystemPrompt, prompt)
	if err != nil {
		p.logger.Warn().Err(err).Msg("scene planning call failed, using fallback scenes")
		return fallbackScenes(prompt)
	}

	scenes := p.parseScenes(raw)
	if len(scenes) == 0 {
		p.logger.Warn().Msg("no scenes parsed from response, using fallback scenes")
		return fallbackScenes(prompt)
	}

	scenes = p.adjustTiming(scenes)
	p.logger.Info().Int("scenes", len(scenes)).Float64("total_sec", types.TotalDuration(scenes)).Msg("scene plan ready")
	return scenes
}

// parseScenes extracts "SCENE n: description | Duration: N seconds" lines.
// Malformed lines are skipped with a warning. The result is sorted by scene
// number and retimed, repairing out-of-order emission.
func (p *Planner) parseScenes(response string) []types.Scene {
	var scenes []types.Scene

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, sceneMarker) || !strings.Contains(line, durationSeparator) {
			continue
		}

		scene, err := parseSceneLine(line)
		if err != nil {
			p.logger.Warn().Str("line", line).Err(err).Msg("skipping malformed scene line")
			continue
		}
		scenes = append(scenes, scene)
	}

	sort.Slice(scenes, func(i, j int) bool { return scenes[i].SceneNumber < scenes[j].SceneNumber })
	types.Retime(scenes)
	return scenes
}

func parseSceneLine(line string) (types.Scene, error) {
	head, tail, _ := strings.Cut(line, durationSeparator)

	marker, desc, ok := strings.Cut(head, ":")
	if !ok {
		return types.Scene{}, fmt.Errorf("no scene number separator")
	}
	fields := strings.Fields(marker)
	if len(fields) < 2 {
		return types.Scene{}, fmt.Errorf("no scene number")
	}
	number, err := strconv.Atoi(strings.TrimSuffix(fields[1], ":"))
	if err != nil {
		return types.Scene{}, fmt.Errorf("bad scene number %q: %w", fields[1], err)
	}

	durText := strings.TrimSpace(tail)
	durText = strings.ReplaceAll(durText, "seconds", "")
	durText = strings.ReplaceAll(durText, "second", "")
	duration, err := strconv.ParseFloat(strings.TrimSpace(durText), 64)
	if err != nil {
		return types.Scene{}, fmt.Errorf("bad duration %q: %w", tail, err)
	}
	if duration <= 0 {
		return types.Scene{}, fmt.Errorf("non-positive duration %v", duration)
	}

	return types.Scene{
		SceneNumber: number,
		Text:        realismPreamble + strings.TrimSpace(desc),
		Duration:    duration,
	}, nil
}

// fallbackScenes builds the fixed hook / main / features / call-to-action
// template from the raw prompt.
func fallbackScenes(prompt string) []types.Scene {
	main := prompt
	if r := []rune(main); len(r) > 100 {
		main = string(r[:100]) + "..."
	}
	scenes := []types.Scene{
		{SceneNumber: 1, Text: "Eye-catching opening shot with main visual element", Duration: 4},
		{SceneNumber: 2, Text: main, Duration: 8},
		{SceneNumber: 3, Text: "Highlighting key features and benefits", Duration: 6},
		{SceneNumber: 4, Text: "Call to action - visit, call, or take action now", Duration: 4},
	}
	types.Retime(scenes)
	return scenes
}

// adjustTiming scales durations proportionally when the plan exceeds the
// total duration budget, then retimes.
func (p *Planner) adjustTiming(scenes []types.Scene) []types.Scene {
	total := types.TotalDuration(scenes)
	if max := p.cfg.Video.TotalDurationMax; max > 0 && total > max {
		scale := max / total
		for i := range scenes {
			scenes[i].Duration *= scale
		}
		types.Retime(scenes)
		p.logger.Info().Float64("scale", scale).Msg("scene durations rescaled to fit total budget")
	}
	return scenes
}

// Summary returns the derived plan aggregate.
func (p *Planner) Summary(scenes []types.Scene) types.PlanSummary {
	return types.Summarize(scenes)
}

func cleanPrompt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text
}
