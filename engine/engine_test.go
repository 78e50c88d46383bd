package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/types"
)

type stubPlanner struct {
	scenes []types.Scene
}

func (s *stubPlanner) Plan(context.Context, string) []types.Scene { return s.scenes }
func (s *stubPlanner) VideoScript(_ context.Context, text string) (string, error) {
	return "video script for: " + text, nil
}

type stubVisuals struct {
	dir          string
	imagesFail   bool
	videosFail   bool
	imagesCalled bool
	videosCalled bool
}

func (s *stubVisuals) GenerateImages(_ context.Context, scenes []types.Scene) []string {
	s.imagesCalled = true
	paths := make([]string, len(scenes))
	if s.imagesFail {
		return paths
	}
	for i := range scenes {
		paths[i] = writeStub(s.dir, "image", i)
	}
	return paths
}

func (s *stubVisuals) GenerateVideos(_ context.Context, scenes []types.Scene, _, _ []string) []string {
	s.videosCalled = true
	paths := make([]string, len(scenes))
	if s.videosFail {
		return paths
	}
	for i := range scenes {
		paths[i] = writeStub(s.dir, "video", i)
	}
	return paths
}

type stubNarration struct {
	dir  string
	fail bool
}

func (s *stubNarration) SynthesizeScenes(_ context.Context, scenes []types.Scene) []string {
	paths := make([]string, len(scenes))
	if s.fail {
		return paths
	}
	for i := range scenes {
		paths[i] = writeStub(s.dir, "audio", i)
	}
	return paths
}

func (s *stubNarration) Merge(_ context.Context, audioPaths []string) string {
	for _, p := range audioPaths {
		if p != "" {
			return writeStub(s.dir, "narration", 0)
		}
	}
	return ""
}

type stubAssembler struct {
	dir             string
	fail            bool
	concatCalled    bool
	imagesCalled    bool
	narrationSeen   string
	concatVideoArgs []string
}

func (s *stubAssembler) AssembleFromImages(_ context.Context, _ []types.Scene, _ []string, narration string) string {
	s.imagesCalled = true
	s.narrationSeen = narration
	if s.fail {
		return ""
	}
	return writeStub(s.dir, "final", 0)
}

func (s *stubAssembler) Concatenate(_ context.Context, videoPaths []string, narration string) string {
	s.concatCalled = true
	s.narrationSeen = narration
	s.concatVideoArgs = videoPaths
	if s.fail {
		return ""
	}
	return writeStub(s.dir, "final", 0)
}

func writeStub(dir, kind string, i int) string {
	path := filepath.Join(dir, kind+"_"+string(rune('a'+i))+".bin")
	_ = os.WriteFile(path, []byte(kind), 0644)
	return path
}

func bellaScenes() []types.Scene {
	scenes := []types.Scene{
		{SceneNumber: 1, Text: "storefront with grand opening banner", Duration: 10},
		{SceneNumber: 2, Text: "shoppers browsing clothing racks", Duration: 10},
		{SceneNumber: 3, Text: "bold 50 percent off headline", Duration: 10},
	}
	types.Retime(scenes)
	return scenes
}

func newTestEngine(t *testing.T, vis *stubVisuals, narr *stubNarration, asm *stubAssembler, state *types.RunState) *Engine {
	t.Helper()
	return New(config.Default(), &stubPlanner{scenes: bellaScenes()}, vis, narr, asm, state)
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir}
	state := types.NewRunState("t1", "Grand Opening Sale at Bella Boutique")

	eng := newTestEngine(t, vis, narr, asm, state)
	final := eng.Run(context.Background(), "Grand Opening Sale at Bella Boutique", false)

	if final == "" {
		t.Fatal("run returned absent for a fully successful pipeline")
	}
	if _, err := os.Stat(final); err != nil {
		t.Errorf("final output missing: %v", err)
	}
	if !asm.concatCalled {
		t.Error("expected video concatenation path")
	}
	if asm.narrationSeen == "" {
		t.Error("narration track not passed to assembler")
	}
	snap := state.Snapshot()
	if snap.Status != types.StatusCompleted {
		t.Errorf("state = %s, want completed", snap.Status)
	}
	if snap.OutputFile != final {
		t.Errorf("state output = %q, want %q", snap.OutputFile, final)
	}
}

func TestRunZeroImageSuccessAborts(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir, imagesFail: true}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir}
	state := types.NewRunState("t2", "prompt")

	eng := newTestEngine(t, vis, narr, asm, state)
	final := eng.Run(context.Background(), "prompt", false)

	if final != "" {
		t.Errorf("run returned %q, want absent", final)
	}
	if asm.concatCalled || asm.imagesCalled {
		t.Error("assembler must never run when every image failed")
	}
	if got := state.Snapshot().Status; got != types.StatusFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestRunNarrationFailureTolerated(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir}
	narr := &stubNarration{dir: dir, fail: true}
	asm := &stubAssembler{dir: dir}

	eng := newTestEngine(t, vis, narr, asm, nil)
	final := eng.Run(context.Background(), "prompt", false)

	if final == "" {
		t.Fatal("narration failure must not fail the run")
	}
	if asm.narrationSeen != "" {
		t.Errorf("assembler got narration %q, want none", asm.narrationSeen)
	}
}

func TestRunFallsBackToImagesWhenVideosFail(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir, videosFail: true}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir}

	eng := newTestEngine(t, vis, narr, asm, nil)
	final := eng.Run(context.Background(), "prompt", false)

	if final == "" {
		t.Fatal("run should fall back to image assembly")
	}
	if asm.concatCalled {
		t.Error("concatenation should be skipped with zero scene videos")
	}
	if !asm.imagesCalled {
		t.Error("image assembly fallback not invoked")
	}
}

func TestRunAssemblyFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir, fail: true}
	state := types.NewRunState("t3", "prompt")

	eng := newTestEngine(t, vis, narr, asm, state)
	final := eng.Run(context.Background(), "prompt", false)

	if final != "" {
		t.Errorf("run returned %q, want absent", final)
	}
	if got := state.Snapshot().Status; got != types.StatusFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestCleanupPreservesFinalOutput(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir}

	eng := newTestEngine(t, vis, narr, asm, nil)
	final := eng.Run(context.Background(), "prompt", true)

	if final == "" {
		t.Fatal("run failed")
	}
	if _, err := os.Stat(final); err != nil {
		t.Errorf("cleanup removed the final output: %v", err)
	}

	// Every per-scene intermediate is gone.
	for _, kind := range []string{"image", "video", "audio", "narration"} {
		matches, _ := filepath.Glob(filepath.Join(dir, kind+"_*"))
		for _, m := range matches {
			if m == final {
				continue
			}
			if _, err := os.Stat(m); err == nil {
				t.Errorf("intermediate %s survived cleanup", m)
			}
		}
	}
}

// Status polls arrive on the HTTP goroutine while the pipeline goroutine
// is still mutating the state; serializing a snapshot must be safe the
// whole way through the run.
func TestStatusPollDuringRun(t *testing.T) {
	dir := t.TempDir()
	state := types.NewRunState("t5", "prompt")
	eng := newTestEngine(t, &stubVisuals{dir: dir}, &stubNarration{dir: dir}, &stubAssembler{dir: dir}, state)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if _, err := json.Marshal(state.Snapshot()); err != nil {
					t.Error(err)
					return
				}
			}
		}
	}()

	final := eng.Run(context.Background(), "prompt", false)
	close(stop)
	wg.Wait()

	if final == "" {
		t.Fatal("run failed under concurrent polling")
	}
	if got := state.Snapshot().Status; got != types.StatusCompleted {
		t.Errorf("state = %s, want completed", got)
	}
}

type panickyPlanner struct{}

func (panickyPlanner) Plan(context.Context, string) []types.Scene { panic("boom") }
func (panickyPlanner) VideoScript(context.Context, string) (string, error) {
	return "", nil
}

func TestRunRecoversFromPanic(t *testing.T) {
	state := types.NewRunState("t4", "prompt")
	eng := New(config.Default(), panickyPlanner{}, &stubVisuals{}, &stubNarration{}, &stubAssembler{}, state)

	final := eng.Run(context.Background(), "prompt", false)

	if final != "" {
		t.Errorf("run returned %q after panic, want absent", final)
	}
	if got := state.Snapshot().Status; got != types.StatusFailed {
		t.Errorf("state = %s, want failed", got)
	}
}

func TestGenerateAllContentBestEffortExtras(t *testing.T) {
	dir := t.TempDir()
	vis := &stubVisuals{dir: dir}
	narr := &stubNarration{dir: dir}
	asm := &stubAssembler{dir: dir}

	eng := newTestEngine(t, vis, narr, asm, nil)
	// No imager or document maker attached: video alone must still work.
	res := eng.GenerateAllContent(context.Background(), "prompt", false)

	if res.VideoPath == "" {
		t.Fatal("video missing from multi-format result")
	}
	if res.ImagePath != "" || res.PDFPath != "" {
		t.Errorf("unexpected extras without capabilities: %+v", res)
	}
}
