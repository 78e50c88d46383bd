package ffmpeg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilterBuilderChain(t *testing.T) {
	got := NewFilterBuilder().
		Scale(1920, 1080).
		FPS(30).
		FadeIn(1.0).
		Build()

	want := "scale=1920:1080:force_original_aspect_ratio=increase,crop=1920:1080,fps=30,fade=t=in:st=0:d=1.00"
	if got != want {
		t.Errorf("filter chain = %q, want %q", got, want)
	}
}

func TestFadeOutPlacement(t *testing.T) {
	got := NewFilterBuilder().FadeOut(10, 1.5).Build()
	if got != "fade=t=out:st=8.50:d=1.50" {
		t.Errorf("fade out = %q", got)
	}

	// Fade longer than the clip clamps to zero.
	got = NewFilterBuilder().FadeOut(0.5, 1.0).Build()
	if got != "fade=t=out:st=0.00:d=1.00" {
		t.Errorf("clamped fade out = %q", got)
	}
}

func TestZoomRamp(t *testing.T) {
	got := NewFilterBuilder().ZoomRamp(1.1, 1.0, 10, 30, 1920, 1080).Build()

	if !strings.Contains(got, "zoompan=z='1.100-0.100*on/300'") {
		t.Errorf("zoom expression wrong: %q", got)
	}
	if !strings.Contains(got, "d=300") {
		t.Errorf("frame count wrong: %q", got)
	}
	if !strings.Contains(got, "s=1920x1080") {
		t.Errorf("output size wrong: %q", got)
	}
}

func TestReconcileNarrationTruncates(t *testing.T) {
	args := ReconcileNarrationArgs("narration.wav", 25, 20, "out.wav")

	if contains(args, "-stream_loop") {
		t.Errorf("longer track must not loop: %v", args)
	}
	if !containsPair(args, "-t", "20.00") {
		t.Errorf("missing exact trim to 20s: %v", args)
	}
}

func TestReconcileNarrationLoopsThenTruncates(t *testing.T) {
	// 7s track, 20s target: loop to 21s, cut to exactly 20s.
	args := ReconcileNarrationArgs("narration.wav", 7, 20, "out.wav")

	if !containsPair(args, "-stream_loop", "2") {
		t.Errorf("want 2 extra loops for 7s into 20s: %v", args)
	}
	if !containsPair(args, "-t", "20.00") {
		t.Errorf("missing exact trim to 20s: %v", args)
	}
}

func TestReconcileNarrationExactFit(t *testing.T) {
	args := ReconcileNarrationArgs("narration.wav", 20, 20, "out.wav")
	if contains(args, "-stream_loop") {
		t.Errorf("exact-length track must not loop: %v", args)
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	list, err := WriteConcatList(dir, "list.txt", []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "it's.mp4"),
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "a.mp4'") {
		t.Errorf("list missing entry: %q", content)
	}
	if !strings.Contains(content, `it'\''s.mp4`) {
		t.Errorf("quote not escaped: %q", content)
	}
	if got := strings.Count(content, "file '"); got != 2 {
		t.Errorf("entries = %d, want 2", got)
	}
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
