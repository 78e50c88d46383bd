package assemble

import "testing"

func TestEffectsForCrossfade(t *testing.T) {
	const n = 5
	for i := 0; i < n; i++ {
		got := EffectsFor(i, n, ModeCrossfade)
		switch {
		case i == 0:
			if !got.FadeIn || got.FadeOut {
				t.Errorf("clip 0: %+v, want fade-in only", got)
			}
		case i == n-1:
			if got.FadeIn || !got.FadeOut {
				t.Errorf("clip %d: %+v, want fade-out only", i, got)
			}
		default:
			if !got.FadeIn || !got.FadeOut {
				t.Errorf("interior clip %d: %+v, want both fades", i, got)
			}
		}
	}
}

func TestEffectsForFadeUsesSamePolicy(t *testing.T) {
	for i := 0; i < 3; i++ {
		if EffectsFor(i, 3, ModeFade) != EffectsFor(i, 3, ModeCrossfade) {
			t.Errorf("fade and crossfade diverge at clip %d", i)
		}
	}
}

func TestEffectsForNone(t *testing.T) {
	for i := 0; i < 4; i++ {
		if got := EffectsFor(i, 4, ModeNone); got.FadeIn || got.FadeOut {
			t.Errorf("mode none clip %d: %+v, want no effects", i, got)
		}
	}
}

func TestEffectsForSingleClip(t *testing.T) {
	if got := EffectsFor(0, 1, ModeCrossfade); got.FadeIn || got.FadeOut {
		t.Errorf("single clip: %+v, want untouched", got)
	}
}

func TestStaleEffectsAfterLastClipDrops(t *testing.T) {
	// Planned three clips, the last failed to build. The survivors were
	// baked as [fade-in, both]; the second must become fade-out only.
	baked := []ClipEffects{
		{FadeIn: true},
		{FadeIn: true, FadeOut: true},
	}
	stale := StaleEffects(baked, ModeCrossfade)
	if stale[0] {
		t.Error("first clip already has the right fades")
	}
	if !stale[1] {
		t.Error("surviving final clip must be rebuilt with fade-out only")
	}
}

func TestStaleEffectsAfterFirstClipDrops(t *testing.T) {
	// Planned three clips, the first failed. Survivors were baked as
	// [both, fade-out]; the new first clip must become fade-in only.
	baked := []ClipEffects{
		{FadeIn: true, FadeOut: true},
		{FadeOut: true},
	}
	stale := StaleEffects(baked, ModeCrossfade)
	if !stale[0] {
		t.Error("new first clip must be rebuilt with fade-in only")
	}
	if stale[1] {
		t.Error("last clip already has the right fades")
	}
}

func TestStaleEffectsNoDrops(t *testing.T) {
	baked := []ClipEffects{
		{FadeIn: true},
		{FadeIn: true, FadeOut: true},
		{FadeOut: true},
	}
	for i, s := range StaleEffects(baked, ModeCrossfade) {
		if s {
			t.Errorf("clip %d marked stale with no drops", i)
		}
	}
}

func TestStaleEffectsSingleSurvivor(t *testing.T) {
	// One survivor of a multi-clip plan carries a fade it must lose.
	stale := StaleEffects([]ClipEffects{{FadeIn: true}}, ModeCrossfade)
	if !stale[0] {
		t.Error("sole surviving clip must be rebuilt without fades")
	}
}

func TestEffectsForTwoClips(t *testing.T) {
	first := EffectsFor(0, 2, ModeCrossfade)
	last := EffectsFor(1, 2, ModeCrossfade)
	if !first.FadeIn || first.FadeOut {
		t.Errorf("first of two: %+v, want fade-in only", first)
	}
	if last.FadeIn || !last.FadeOut {
		t.Errorf("last of two: %+v, want fade-out only", last)
	}
}
