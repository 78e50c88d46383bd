package script

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/types"
)

type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return s.response, s.err
}

func checkTiming(t *testing.T, scenes []types.Scene) {
	t.Helper()
	if len(scenes) == 0 {
		t.Fatal("no scenes")
	}
	if scenes[0].StartTime != 0 {
		t.Errorf("first start = %v, want 0", scenes[0].StartTime)
	}
	for i := 1; i < len(scenes); i++ {
		want := scenes[i-1].StartTime + scenes[i-1].Duration
		if scenes[i].StartTime != want {
			t.Errorf("scene %d start = %v, want %v", i+1, scenes[i].StartTime, want)
		}
	}
}

func TestPlanParsesSceneLines(t *testing.T) {
	response := `Here is the plan:
SCENE 1: A sunny boutique storefront with a grand opening banner | Duration: 10 seconds
SCENE 2: Shoppers browsing colorful clothing racks | Duration: 10 seconds
SCENE 3: Bold 50% off headline with store details | Duration: 10 seconds`

	p := New(config.Default(), &stubCompleter{response: response})
	scenes := p.Plan(context.Background(), "Grand Opening Sale at Bella Boutique")

	if len(scenes) != 3 {
		t.Fatalf("got %d scenes, want 3", len(scenes))
	}
	for i, s := range scenes {
		if s.Duration != 10 {
			t.Errorf("scene %d duration = %v, want 10", i+1, s.Duration)
		}
		if s.SceneNumber != i+1 {
			t.Errorf("scene %d number = %d", i+1, s.SceneNumber)
		}
	}
	wantStarts := []float64{0, 10, 20}
	for i, want := range wantStarts {
		if scenes[i].StartTime != want {
			t.Errorf("scene %d start = %v, want %v", i+1, scenes[i].StartTime, want)
		}
	}
	checkTiming(t, scenes)

	if !strings.Contains(scenes[0].Text, "storefront") {
		t.Errorf("scene 1 text lost description: %q", scenes[0].Text)
	}
}

func TestPlanRepairsOutOfOrderScenes(t *testing.T) {
	response := `SCENE 3: closing shot | Duration: 4 seconds
SCENE 1: opening shot | Duration: 6 seconds
SCENE 2: middle shot | Duration: 8 seconds`

	p := New(config.Default(), &stubCompleter{response: response})
	scenes := p.Plan(context.Background(), "test prompt")

	if len(scenes) != 3 {
		t.Fatalf("got %d scenes, want 3", len(scenes))
	}
	for i, s := range scenes {
		if s.SceneNumber != i+1 {
			t.Errorf("position %d holds scene %d after sort", i, s.SceneNumber)
		}
	}
	checkTiming(t, scenes)
}

func TestPlanSkipsMalformedLines(t *testing.T) {
	response := `SCENE 1: good scene | Duration: 10 seconds
SCENE two: bad number | Duration: 10 seconds
SCENE 3: missing duration separator
SCENE 4: bad duration | Duration: soon
SCENE 5: another good one | Duration: 5 seconds`

	p := New(config.Default(), &stubCompleter{response: response})
	scenes := p.Plan(context.Background(), "test prompt")

	if len(scenes) != 2 {
		t.Fatalf("got %d scenes, want 2 (malformed skipped)", len(scenes))
	}
	if scenes[0].SceneNumber != 1 || scenes[1].SceneNumber != 5 {
		t.Errorf("kept scenes %d and %d, want 1 and 5", scenes[0].SceneNumber, scenes[1].SceneNumber)
	}
	checkTiming(t, scenes)
}

func TestPlanFallbackOnError(t *testing.T) {
	p := New(config.Default(), &stubCompleter{err: errors.New("service down")})
	scenes := p.Plan(context.Background(), "Grand Opening Sale at Bella Boutique")

	if len(scenes) != 4 {
		t.Fatalf("fallback produced %d scenes, want 4", len(scenes))
	}
	wantDur := []float64{4, 8, 6, 4}
	for i, want := range wantDur {
		if scenes[i].Duration != want {
			t.Errorf("fallback scene %d duration = %v, want %v", i+1, scenes[i].Duration, want)
		}
	}
	checkTiming(t, scenes)
}

func TestPlanFallbackOnUnparseableText(t *testing.T) {
	p := New(config.Default(), &stubCompleter{response: "I cannot help with that."})
	scenes := p.Plan(context.Background(), "any prompt")

	if len(scenes) == 0 {
		t.Fatal("plan returned empty list for non-empty prompt")
	}
	checkTiming(t, scenes)
}

func TestPlanFallbackTruncatesLongPrompt(t *testing.T) {
	long := strings.Repeat("x", 250)
	p := New(config.Default(), &stubCompleter{err: errors.New("down")})
	scenes := p.Plan(context.Background(), long)

	if got := scenes[1].Text; len(got) != 103 {
		t.Errorf("main scene text length = %d, want 103 (100 + ellipsis)", len(got))
	}
}

func TestPlanFallbackTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 250)
	p := New(config.Default(), &stubCompleter{err: errors.New("down")})
	scenes := p.Plan(context.Background(), long)

	got := scenes[1].Text
	if !utf8.ValidString(got) {
		t.Fatalf("fallback text is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 103 {
		t.Errorf("main scene rune count = %d, want 103 (100 + ellipsis)", n)
	}
}

func TestAdjustTimingRescalesToBudget(t *testing.T) {
	cfg := config.Default()
	cfg.Video.TotalDurationMax = 30

	var lines []string
	for i := 1; i <= 6; i++ {
		lines = append(lines, "SCENE "+string(rune('0'+i))+": scene | Duration: 10 seconds")
	}
	p := New(cfg, &stubCompleter{response: strings.Join(lines, "\n")})
	scenes := p.Plan(context.Background(), "test prompt")

	total := types.TotalDuration(scenes)
	if total > 30.0001 {
		t.Errorf("total after rescale = %v, want <= 30", total)
	}
	checkTiming(t, scenes)
}

func TestVideoScriptStripsPreamble(t *testing.T) {
	var captured string
	p := New(config.Default(), &stubCompleter{response: "A calm pan across the boutique."})
	p.llm = completerFunc(func(ctx context.Context, system, user string) (string, error) {
		captured = user
		return "A calm pan across the boutique.", nil
	})

	out, err := p.VideoScript(context.Background(), realismPreamble+"shoppers browsing racks")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(captured, realismPreamble) {
		t.Error("video script request still carries the realism preamble")
	}
	if !strings.Contains(captured, "shoppers browsing racks") {
		t.Errorf("request lost the description: %q", captured)
	}
	if !strings.HasPrefix(out, motionPreamble) {
		t.Error("video script missing motion preamble")
	}
}

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
