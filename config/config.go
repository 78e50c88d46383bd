package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Video  VideoConfig  `yaml:"video"`
	LLM    LLMConfig    `yaml:"llm"`
	Image  ImageConfig  `yaml:"image"`
	TTS    TTSConfig    `yaml:"tts"`
	Music  MusicConfig  `yaml:"music"`
	Retry  RetryConfig  `yaml:"retry"`
	PDF    PDFConfig    `yaml:"pdf"`
	Server ServerConfig `yaml:"server"`
	Paths  PathsConfig  `yaml:"paths"`
}

type VideoConfig struct {
	Width              int     `yaml:"width"`
	Height             int     `yaml:"height"`
	FPS                int     `yaml:"fps"`
	SceneDurationMin   float64 `yaml:"scene_duration_min"`
	SceneDurationMax   float64 `yaml:"scene_duration_max"`
	TotalDurationMax   float64 `yaml:"total_duration_max"`
	TransitionType     string  `yaml:"transition_type"`
	TransitionDuration float64 `yaml:"transition_duration"`
	PanZoom            bool    `yaml:"pan_zoom"`
	SynthDuration      int     `yaml:"synth_duration"`
	SynthRatio         string  `yaml:"synth_ratio"`
	SynthModel         string  `yaml:"synth_model"`
}

type LLMConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type ImageConfig struct {
	Size    string `yaml:"size"`
	Quality string `yaml:"quality"`
	Style   string `yaml:"style"`
	Model   string `yaml:"model"`
	Ratio   string `yaml:"ratio"`
}

type TTSConfig struct {
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

type MusicConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// ImageRetryDelaySec and VideoRetryDelaySec are independent on purpose:
// image tasks turn around faster, so their retry wait is shorter.
type RetryConfig struct {
	MaxRetries          int     `yaml:"max_retries"`
	ImageRetryDelaySec  float64 `yaml:"image_retry_delay_sec"`
	VideoRetryDelaySec  float64 `yaml:"video_retry_delay_sec"`
	ImageRequestGapSec  float64 `yaml:"image_request_gap_sec"`
	VideoRequestGapSec  float64 `yaml:"video_request_gap_sec"`
	SpeechRequestGapSec float64 `yaml:"speech_request_gap_sec"`
}

type PDFConfig struct {
	Enabled       bool    `yaml:"enabled"`
	PageSize      string  `yaml:"page_size"`
	FontSize      float64 `yaml:"font_size"`
	TitleFontSize float64 `yaml:"title_font_size"`
	HeadingSize   float64 `yaml:"heading_font_size"`
	ScenesPerPage int     `yaml:"scenes_per_page"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

// Load reads a YAML config file and fills in defaults for anything unset.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Video: VideoConfig{
			Width:              1920,
			Height:             1080,
			FPS:                30,
			SceneDurationMin:   10,
			SceneDurationMax:   20,
			TotalDurationMax:   180,
			TransitionType:     "crossfade",
			TransitionDuration: 1.0,
			PanZoom:            true,
			SynthDuration:      10,
			SynthRatio:         "1280:768",
			SynthModel:         "gen3a_turbo",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Image: ImageConfig{
			Size:    "1792x1024",
			Quality: "standard",
			Style:   "natural",
			Model:   "gen4_image",
			Ratio:   "1280:720",
		},
		TTS: TTSConfig{
			Model: "tts-1",
			Voice: "alloy",
		},
		Music: MusicConfig{
			Enabled: true,
			Volume:  0.3,
		},
		Retry: RetryConfig{
			MaxRetries:          3,
			ImageRetryDelaySec:  5,
			VideoRetryDelaySec:  10,
			ImageRequestGapSec:  2,
			VideoRequestGapSec:  5,
			SpeechRequestGapSec: 1,
		},
		PDF: PDFConfig{
			Enabled:       true,
			PageSize:      "A4",
			FontSize:      12,
			TitleFontSize: 24,
			HeadingSize:   16,
			ScenesPerPage: 3,
		},
		Server: ServerConfig{Addr: ":8080"},
		Paths: PathsConfig{
			Output: "output",
			Temp:   "temp",
		},
	}
}

// OpenAIKey returns the OpenAI credential from the environment.
func OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

// RunwayKey returns the RunwayML credential from the environment.
func RunwayKey() string { return os.Getenv("RUNWAY_API_KEY") }
