package engine

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/funnydev94625/AdGen/config"
)

// SetupCheck is one validated prerequisite.
type SetupCheck struct {
	Name string
	OK   bool
	Note string
}

// ValidateSetup checks credentials, tools, and directories before a run.
func ValidateSetup(cfg *config.Config) []SetupCheck {
	var checks []SetupCheck

	check := func(name string, ok bool, note string) {
		checks = append(checks, SetupCheck{Name: name, OK: ok, Note: note})
	}

	check("OPENAI_API_KEY", config.OpenAIKey() != "", "required for planning, narration, and image generation")
	check("RUNWAY_API_KEY", config.RunwayKey() != "", "required for scene image and video synthesis")

	_, ffErr := exec.LookPath("ffmpeg")
	check("ffmpeg", ffErr == nil, "required for media assembly")
	_, fpErr := exec.LookPath("ffprobe")
	check("ffprobe", fpErr == nil, "required for duration probing")

	for _, dir := range []string{cfg.Paths.Output, cfg.Paths.Temp} {
		err := os.MkdirAll(dir, 0755)
		check(fmt.Sprintf("directory %s", dir), err == nil, "must be writable")
	}

	return checks
}
