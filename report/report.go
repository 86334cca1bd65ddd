// CLAUDE:SUMMARY Assembles screenshots and the feedback summary into a PDF dossier.

// Package report assembles a session's screenshots and feedback summary into
// a single PDF dossier. The cover page carries the summary text; every
// screenshot becomes one page.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pagegloss/gloss/payload"
)

// Shot is one captured screenshot destined for the dossier.
type Shot struct {
	// Name labels the page, e.g. "full page" or the element selector.
	Name string
	PNG  []byte
}

// Dossier describes one export.
type Dossier struct {
	Title       string
	PageURL     string
	GeneratedAt time.Time
	Summary     []string
	Shots       []Shot
}

// Summarize renders the payload as the cover page lines.
func Summarize(p payload.Payload) []string {
	var lines []string
	if len(p.Items) > 0 {
		lines = append(lines, fmt.Sprintf("%d annotation(s) pending", len(p.Items)))
		for _, item := range p.Items {
			line := fmt.Sprintf("  %s %s", item.Kind, item.ID)
			if item.Comment != "" {
				line += ": " + clip(item.Comment, 80)
			}
			if item.Selector != "" {
				line += " @ " + item.Selector
			}
			lines = append(lines, line)
		}
	}
	if len(p.StyleChanges) > 0 {
		lines = append(lines, fmt.Sprintf("%d style change(s)", len(p.StyleChanges)))
		for _, row := range p.StyleChanges {
			lines = append(lines, fmt.Sprintf("  %s %s: %s -> %s",
				row.Selector, row.Property, row.Original, row.Modified))
		}
	}
	if len(p.SpacingChanges) > 0 {
		lines = append(lines, fmt.Sprintf("%d spacing token change(s)", len(p.SpacingChanges)))
		for _, row := range p.SpacingChanges {
			current := row.Current
			if row.Deleted {
				current = "(deleted)"
			}
			lines = append(lines, fmt.Sprintf("  %s: %s -> %s", row.TokenPath, row.Original, current))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "Nothing pending.")
	}
	return lines
}

// WriteFile writes the dossier PDF to outFile. Image pages are imported with
// pdfcpu defaults (A4); the cover text is stamped onto page one.
func (d Dossier) WriteFile(outFile string) error {
	work, err := os.MkdirTemp("", "gloss-report-*")
	if err != nil {
		return fmt.Errorf("report: workdir: %w", err)
	}
	defer os.RemoveAll(work)

	cover := filepath.Join(work, "cover.png")
	if err := os.WriteFile(cover, blankCover(), 0o644); err != nil {
		return fmt.Errorf("report: write cover: %w", err)
	}
	files := []string{cover}
	for i, shot := range d.Shots {
		if len(shot.PNG) == 0 {
			continue
		}
		path := filepath.Join(work, fmt.Sprintf("shot_%03d.png", i))
		if err := os.WriteFile(path, shot.PNG, 0o644); err != nil {
			return fmt.Errorf("report: write shot %q: %w", shot.Name, err)
		}
		files = append(files, path)
	}

	if err := api.ImportImagesFile(files, outFile, nil, nil); err != nil {
		return fmt.Errorf("report: import images: %w", err)
	}

	desc := "fontname:Helvetica, points:11, scale:1 abs, pos:tl, off:40 -40, rot:0"
	if err := api.AddTextWatermarksFile(outFile, outFile, []string{"1"}, true, d.coverText(), desc, nil); err != nil {
		return fmt.Errorf("report: stamp cover: %w", err)
	}
	return nil
}

// coverText renders the cover page block.
func (d Dossier) coverText() string {
	var sb strings.Builder
	title := d.Title
	if title == "" {
		title = "Page feedback"
	}
	sb.WriteString(title)
	sb.WriteByte('\n')
	if d.PageURL != "" {
		sb.WriteString(d.PageURL)
		sb.WriteByte('\n')
	}
	if !d.GeneratedAt.IsZero() {
		sb.WriteString("Generated " + d.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
		sb.WriteByte('\n')
	}
	for _, line := range d.Summary {
		sb.WriteByte('\n')
		sb.WriteString(line)
	}
	return sb.String()
}

// blankCover renders a white A4-ratio PNG for the cover page. pdfcpu imports
// images only, so the text page starts from a blank sheet.
func blankCover() []byte {
	const w, h = 1240, 1754
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
