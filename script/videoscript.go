package script

import (
	"context"
	"fmt"
	"strings"
)

const videoScriptSystemPrompt = `Your role is to generate a prompt for video generation. The input is a scene description. A 9.5 second video must be generated from the scene description. The video must be realistic; sudden appearances and disappearances of people or objects are not permitted. Surrealistic phenomena, such as people flying, are also not permitted. The video must have a transition effect that lasts 0.5 seconds. The number of people and objects must not change.

Output a single paragraph describing the 9.5 second video, ending with: "A smooth cinematic transition effect of 0.5 seconds is used at the end of the video."`

// motionPreamble is prefixed to every generated video script so the
// synthesis model keeps motion continuous.
const motionPreamble = "This is a high-quality cinematic scene captured by a professional camera, not a photo, not a cartoon. The motion is continuous and natural - no sudden appearances or disappearances of people or objects, no surreal effects. "

// VideoScript expands one scene's description into a director-level
// instruction for the video synthesis model.
func (p *Planner) VideoScript(ctx context.Context, sceneText string) (string, error) {
	// The planner prefixed the realism preamble at parse time; the video
	// script call wants only the bare description.
	desc := strings.TrimPrefix(sceneText, realismPreamble)

	out, err := p.llm.Complete(ctx, videoScriptSystemPrompt, fmt.Sprintf("Now try with this %q", desc))
	if err != nil {
		return "", fmt.Errorf("video script generation: %w", err)
	}
	return motionPreamble + strings.TrimSpace(out), nil
}
