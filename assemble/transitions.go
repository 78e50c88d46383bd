package assemble

// TransitionMode selects how clips blend at their boundaries.
type TransitionMode string

const (
	ModeCrossfade TransitionMode = "crossfade"
	ModeFade      TransitionMode = "fade"
	ModeNone      TransitionMode = "none"
)

// ClipEffects records which fades apply to one clip in a sequence.
type ClipEffects struct {
	FadeIn  bool
	FadeOut bool
}

// EffectsFor is the single transition policy for a clip at position index
// in a sequence of count clips: the first clip fades in only, the last
// fades out only, interior clips get both. Mode none skips everything,
// and a single clip is left untouched.
func EffectsFor(index, count int, mode TransitionMode) ClipEffects {
	if mode == ModeNone || count <= 1 {
		return ClipEffects{}
	}
	switch {
	case index == 0:
		return ClipEffects{FadeIn: true}
	case index == count-1:
		return ClipEffects{FadeOut: true}
	default:
		return ClipEffects{FadeIn: true, FadeOut: true}
	}
}

// StaleEffects compares the fades baked into each surviving clip against
// what its position in the final sequence requires. Dropped clips shift
// the survivors, so a clip can end up carrying the wrong fades; a true
// entry means that clip must be rebuilt.
func StaleEffects(baked []ClipEffects, mode TransitionMode) []bool {
	stale := make([]bool, len(baked))
	for i, b := range baked {
		stale[i] = b != EffectsFor(i, len(baked), mode)
	}
	return stale
}
