package visuals

import (
	"context"
	"strings"

	"github.com/funnydev94625/AdGen/types"
)

// VisualContext holds the per-run style metadata consulted when building
// every generation prompt. One per pipeline run, never shared.
type VisualContext struct {
	Brand         string
	Audience      string
	Characters    string
	Setting       string
	Style         string
	ColorPalette  string
	Lighting      string
	CameraAngle   string
	TextElements  string
	Advertisement bool
}

const adAnalysisPrompt = `Analyze this advertisement content and extract visual elements for promotional video generation.

Please identify and extract:
1. Brand/Product elements (logos, products, key visuals)
2. Target audience (who this is for)
3. Setting/location (where this takes place)
4. Visual style (modern, classic, playful, professional, etc.)
5. Color palette (brand colors, mood colors)
6. Lighting (bright, warm, dramatic, etc.)
7. Camera style (close-up, wide shot, etc.)
8. Text elements (headlines, prices, contact info)

Format your response as:
BRAND: [brand/product elements]
AUDIENCE: [target audience]
SETTING: [setting description]
STYLE: [visual style]
COLORS: [color palette]
LIGHTING: [lighting description]
CAMERA: [camera style]
TEXT: [key text elements]`

const narrativeAnalysisPrompt = `Analyze this story and extract consistent visual elements for video generation.

Please identify and extract:
1. Main characters (appearance, clothing, age)
2. Setting/location (environment, time period, atmosphere)
3. Visual style (realistic, cartoon, cinematic, etc.)
4. Color palette (dominant colors, mood)
5. Lighting (time of day, mood lighting)
6. Camera style (close-up, wide shot, etc.)

Format your response as:
CHARACTERS: [character descriptions]
SETTING: [setting description]
STYLE: [visual style]
COLORS: [color palette]
LIGHTING: [lighting description]
CAMERA: [camera style]`

var adKeywords = []string{
	"flyer", "menu", "sale", "promo", "promotion", "advertisement", "ad",
	"event", "opening", "discount", "offer", "deal", "special", "limited time",
	"buy now", "shop", "store", "restaurant", "cafe", "boutique", "fair",
	"festival", "concert", "show", "exhibition", "launch", "announcement",
}

func isAdvertisement(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range adKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// AnalyzeContext derives the run's visual context from the full scene
// text with one analysis call. Any failure yields deterministic defaults.
func (g *Generator) AnalyzeContext(ctx context.Context, scenes []types.Scene) *VisualContext {
	texts := make([]string, len(scenes))
	for i, s := range scenes {
		texts[i] = s.Text
	}
	full := strings.Join(texts, " ")
	ad := isAdvertisement(full)

	system := narrativeAnalysisPrompt
	if ad {
		system = adAnalysisPrompt
	}

	analysis, err := g.llm.Complete(ctx, system, full)
	if err != nil {
		g.logger.Warn().Err(err).Msg("visual context analysis failed, using defaults")
		return defaultContext(ad)
	}

	vc := parseContext(analysis)
	vc.Advertisement = ad
	g.logger.Info().Str("style", vc.Style).Str("setting", vc.Setting).Bool("ad", ad).Msg("visual context ready")
	return vc
}

func parseContext(analysis string) *VisualContext {
	vc := &VisualContext{}
	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "BRAND":
			vc.Brand = value
		case "AUDIENCE":
			vc.Audience = value
		case "CHARACTERS":
			vc.Characters = value
		case "SETTING":
			vc.Setting = value
		case "STYLE":
			vc.Style = value
		case "COLORS":
			vc.ColorPalette = value
		case "LIGHTING":
			vc.Lighting = value
		case "CAMERA":
			vc.CameraAngle = value
		case "TEXT":
			vc.TextElements = value
		}
	}
	return vc
}

func defaultContext(ad bool) *VisualContext {
	if ad {
		return &VisualContext{
			Brand:         "professional brand elements",
			Audience:      "general audience",
			Setting:       "modern, clean environment",
			Style:         "professional, realistic, eye-catching",
			ColorPalette:  "vibrant, attention-grabbing colors",
			Lighting:      "well-lit, professional lighting",
			CameraAngle:   "medium shot",
			TextElements:  "clear, readable text",
			Advertisement: true,
		}
	}
	return &VisualContext{
		Characters:   "realistic human characters",
		Setting:      "realistic environment",
		Style:        "cinematic, professional photography",
		ColorPalette: "natural colors",
		Lighting:     "well-lit, natural lighting",
		CameraAngle:  "medium shot",
	}
}

// Enrich appends the context's consistency elements to a scene prompt,
// capped to keep the generation service's prompt limit.
func (vc *VisualContext) Enrich(prompt string) string {
	var elems []string
	add := func(format, v string) {
		if v != "" {
			elems = append(elems, format+v)
		}
	}
	if vc.Advertisement {
		add("featuring ", vc.Brand)
		add("appealing to ", vc.Audience)
	} else {
		add("featuring ", vc.Characters)
	}
	add("in ", vc.Setting)
	if vc.Style != "" {
		elems = append(elems, "in "+vc.Style+" style")
	}
	add("with ", vc.ColorPalette)
	add("with ", vc.Lighting)
	add("shot from ", vc.CameraAngle)
	if vc.Advertisement {
		add("with ", vc.TextElements)
	}

	enhanced := prompt
	if len(elems) > 0 {
		enhanced += ", " + strings.Join(elems, ", ")
	}
	if vc.Advertisement {
		enhanced += ", professional advertisement, high quality promotional image, eye-catching"
	} else {
		enhanced += ", cinematic, professional photography"
	}

	if r := []rune(enhanced); len(r) > 1000 {
		enhanced = string(r[:1000]) + "..."
	}
	return enhanced
}
