package pdfdoc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/funnydev94625/AdGen/config"
	"github.com/funnydev94625/AdGen/logging"
	"github.com/funnydev94625/AdGen/types"
)

// Generator renders a scene plan (with its generated images) to a PDF.
type Generator struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates a new PDF Generator
func New(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, logger: logging.WithComponent("pdf")}
}

// FromScenes writes a storyboard document: a title, the plan summary, and
// one block per scene with its timing, text, and image when present.
func (g *Generator) FromScenes(scenes []types.Scene, imagePaths []string, title string) (string, error) {
	if len(scenes) == 0 {
		return "", fmt.Errorf("no scenes to document")
	}
	if err := os.MkdirAll(g.cfg.Paths.Output, 0755); err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", g.cfg.PDF.PageSize, "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", g.cfg.PDF.TitleFontSize)
	pdf.MultiCell(0, 12, truncate(title, 120), "", "C", false)
	pdf.Ln(4)

	summary := types.Summarize(scenes)
	pdf.SetFont("Helvetica", "", g.cfg.PDF.FontSize)
	pdf.MultiCell(0, 6, fmt.Sprintf("%d scenes, %.0f seconds total, %d words",
		summary.SceneCount, summary.TotalDuration, summary.TotalWords), "", "C", false)
	pdf.Ln(6)

	perPage := g.cfg.PDF.ScenesPerPage
	if perPage <= 0 {
		perPage = 3
	}

	for i, scene := range scenes {
		if i > 0 && i%perPage == 0 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", g.cfg.PDF.HeadingSize)
		pdf.MultiCell(0, 8, fmt.Sprintf("Scene %d: %.0fs - %.0fs",
			scene.SceneNumber, scene.StartTime, scene.EndTime), "", "L", false)

		pdf.SetFont("Helvetica", "", g.cfg.PDF.FontSize)
		pdf.MultiCell(0, 5, truncate(scene.Text, 600), "", "L", false)
		pdf.SetFont("Helvetica", "I", g.cfg.PDF.FontSize-2)
		pdf.MultiCell(0, 5, fmt.Sprintf("Duration: %.1fs  |  %d words",
			scene.Duration, len(strings.Fields(scene.Text))), "", "L", false)

		if i < len(imagePaths) && imagePaths[i] != "" {
			if _, err := os.Stat(imagePaths[i]); err == nil {
				pdf.ImageOptions(imagePaths[i], -1, -1, 120, 0, true,
					fpdf.ImageOptions{ReadDpi: true}, 0, "")
			}
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Ln(4)
	pdf.MultiCell(0, 5, "Generated "+time.Now().Format("2006-01-02 15:04"), "", "R", false)

	out := filepath.Join(g.cfg.Paths.Output, fmt.Sprintf("script_%s.pdf", time.Now().Format("20060102_150405")))
	if err := pdf.OutputFileAndClose(out); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	g.logger.Info().Str("path", out).Int("scenes", len(scenes)).Msg("script pdf written")
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
