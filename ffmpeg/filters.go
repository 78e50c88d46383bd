package ffmpeg

import (
	"fmt"
	"strings"
)

// FilterBuilder accumulates video filter expressions into one -vf chain.
type FilterBuilder struct {
	filters []string
}

func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{}
}

// Scale resizes to fill the target frame, cropping overflow around center.
func (fb *FilterBuilder) Scale(width, height int) *FilterBuilder {
	fb.filters = append(fb.filters,
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", width, height),
		fmt.Sprintf("crop=%d:%d", width, height),
	)
	return fb
}

// FPS sets the output frame rate.
func (fb *FilterBuilder) FPS(fps int) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf("fps=%d", fps))
	return fb
}

// ZoomRamp applies a linear zoom from zoomStart to zoomEnd across the clip,
// cropped around center at the output resolution.
func (fb *FilterBuilder) ZoomRamp(zoomStart, zoomEnd, duration float64, fps, width, height int) *FilterBuilder {
	frames := int(duration * float64(fps))
	if frames < 1 {
		frames = 1
	}
	fb.filters = append(fb.filters, fmt.Sprintf(
		"zoompan=z='%.3f%+.3f*on/%d':d=%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%dx%d:fps=%d",
		zoomStart, zoomEnd-zoomStart, frames, frames, width, height, fps))
	return fb
}

// FadeIn fades the clip in from black starting at zero.
func (fb *FilterBuilder) FadeIn(duration float64) *FilterBuilder {
	fb.filters = append(fb.filters, fmt.Sprintf("fade=t=in:st=0:d=%.2f", duration))
	return fb
}

// FadeOut fades the clip to black ending at clipDuration.
func (fb *FilterBuilder) FadeOut(clipDuration, duration float64) *FilterBuilder {
	start := clipDuration - duration
	if start < 0 {
		start = 0
	}
	fb.filters = append(fb.filters, fmt.Sprintf("fade=t=out:st=%.2f:d=%.2f", start, duration))
	return fb
}

// Custom appends a raw filter expression.
func (fb *FilterBuilder) Custom(filter string) *FilterBuilder {
	fb.filters = append(fb.filters, filter)
	return fb
}

// Build joins the chain into a -vf argument value.
func (fb *FilterBuilder) Build() string {
	return strings.Join(fb.filters, ",")
}

// Empty reports whether any filters were added.
func (fb *FilterBuilder) Empty() bool {
	return len(fb.filters) == 0
}
