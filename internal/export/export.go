// Package export renders a project roadmap as a PDF document.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/go-pdf/fpdf"
)

const (
	pageMargin = 15.0
	tileGap    = 4.0
)

// Report is everything one export needs.
type Report struct {
	Project       models.Project
	StatusUpdates []models.StatusUpdate
	Goals         *catalog.Catalog
	GeneratedAt   time.Time
}

// Filename returns the attachment name for a project export.
func Filename(projectName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', ':', '*', '?', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(projectName))
	if name == "" {
		name = "project"
	}
	return name + "-roadmap.pdf"
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	w   float64 // usable width
}

// Render writes the roadmap PDF for rep to w.
func Render(w io.Writer, rep Report) error {
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now()
	}
	date := rep.GeneratedAt.Format("January 2, 2006")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(rep.Project.Name+" Roadmap", true)
	pdf.AliasNbPages("")

	pageW, _ := pdf.GetPageSize()
	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), w: pageW - 2*pageMargin}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(r.w/2, 6, r.tr("Generated via GM Insights Roadmap • "+date), "", 0, "L", false, 0, "")
		pdf.CellFormat(r.w/2, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	r.header(rep.Project.Name, date)
	r.section("Summary")
	r.paragraph(rep.Project.Summary)
	r.tiles("Key Performance Indicators", []string(rep.Project.KPIs), [3]int{232, 240, 254})
	r.tiles("Team Goals", goalLabels(rep.Goals, rep.Project.Goals), [3]int{236, 253, 245})
	r.statusUpdates(rep.StatusUpdates)
	r.milestones(rep.Project.Milestones)

	return pdf.Output(w)
}

func (r *renderer) header(name, date string) {
	r.pdf.SetFillColor(30, 58, 138)
	r.pdf.Rect(0, 0, r.w+2*pageMargin, 32, "F")
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Helvetica", "B", 20)
	r.pdf.SetXY(pageMargin, 9)
	r.pdf.CellFormat(r.w, 9, r.tr(name), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.CellFormat(r.w, 6, r.tr("Project roadmap, generated "+date), "", 1, "L", false, 0, "")
	r.pdf.SetY(40)
}

func (r *renderer) section(title string) {
	r.pdf.Ln(3)
	r.pdf.SetTextColor(30, 58, 138)
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.CellFormat(r.w, 8, r.tr(title), "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *renderer) paragraph(text string) {
	r.pdf.SetTextColor(40, 40, 40)
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.MultiCell(r.w, 5, r.tr(text), "", "L", false)
}

// tiles lays labels out three per row.
func (r *renderer) tiles(title string, labels []string, fill [3]int) {
	if len(labels) == 0 {
		return
	}
	r.section(title)

	const perRow, h = 3, 10.0
	tileW := (r.w - tileGap*(perRow-1)) / perRow
	r.pdf.SetFont("Helvetica", "B", 9)
	r.pdf.SetTextColor(40, 40, 40)
	r.pdf.SetFillColor(fill[0], fill[1], fill[2])
	for i, label := range labels {
		col := i % perRow
		if col == 0 && i > 0 {
			r.pdf.Ln(h + tileGap)
		}
		r.pdf.SetX(pageMargin + float64(col)*(tileW+tileGap))
		r.pdf.CellFormat(tileW, h, r.tr(label), "", 0, "C", true, 0, "")
	}
	r.pdf.Ln(h + tileGap)
}

func (r *renderer) statusUpdates(updates []models.StatusUpdate) {
	if len(updates) == 0 {
		return
	}
	r.section("Status Updates")

	groups := []struct {
		label   string
		color   [3]int
		entries []models.StatusUpdate
	}{
		{models.StatusCompleted, [3]int{22, 163, 74}, nil},
		{models.StatusInProgress, [3]int{37, 99, 235}, nil},
		{models.StatusNotStarted, [3]int{107, 114, 128}, nil},
	}
	for _, u := range updates {
		for i := range groups {
			if groups[i].label == u.Status {
				groups[i].entries = append(groups[i].entries, u)
			}
		}
	}

	for _, g := range groups {
		if len(g.entries) == 0 {
			continue
		}
		r.pdf.SetFont("Helvetica", "B", 10)
		r.pdf.SetTextColor(g.color[0], g.color[1], g.color[2])
		r.pdf.CellFormat(r.w, 6, r.tr(fmt.Sprintf("%s (%d)", g.label, len(g.entries))), "", 1, "L", false, 0, "")
		r.pdf.SetFont("Helvetica", "", 9)
		r.pdf.SetTextColor(40, 40, 40)
		for _, u := range g.entries {
			r.pdf.SetX(pageMargin + 4)
			r.pdf.MultiCell(r.w-4, 5, r.tr("• "+u.Content+"  ("+u.CreatedAt.Format("Jan 2, 2006")+")"), "", "L", false)
		}
		r.pdf.Ln(1)
	}
}

func (r *renderer) milestones(ms []models.Milestone) {
	if len(ms) == 0 {
		return
	}
	r.section("Milestones")

	const barH = 3.0
	for _, m := range ms {
		r.pdf.SetFont("Helvetica", "B", 10)
		r.pdf.SetTextColor(40, 40, 40)
		r.pdf.CellFormat(r.w-30, 6, r.tr(m.Title), "", 0, "L", false, 0, "")
		r.pdf.SetFont("Helvetica", "", 9)
		r.pdf.SetTextColor(107, 114, 128)
		r.pdf.CellFormat(30, 6, r.tr(m.Date), "", 1, "R", false, 0, "")

		if m.Description != "" {
			r.pdf.SetTextColor(40, 40, 40)
			r.pdf.MultiCell(r.w, 4.5, r.tr(m.Description), "", "L", false)
		}

		completion := clamp(m.Completion)
		y := r.pdf.GetY() + 1
		r.pdf.SetFillColor(229, 231, 235)
		r.pdf.Rect(pageMargin, y, r.w-20, barH, "F")
		r.pdf.SetFillColor(37, 99, 235)
		r.pdf.Rect(pageMargin, y, (r.w-20)*float64(completion)/100, barH, "F")
		r.pdf.SetXY(pageMargin+r.w-18, y-1.5)
		r.pdf.CellFormat(18, 6, fmt.Sprintf("%d%%", completion), "", 1, "R", false, 0, "")

		for _, n := range m.Notes {
			r.pdf.SetX(pageMargin + 4)
			r.pdf.SetTextColor(75, 85, 99)
			r.pdf.MultiCell(r.w-4, 4.5, r.tr(fmt.Sprintf("[%s] %s", strings.ToUpper(n.Type), n.Content)), "", "L", false)
		}
		r.pdf.Ln(3)
	}
}

func goalLabels(c *catalog.Catalog, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c != nil {
			if g, ok := c.Lookup(id); ok {
				out = append(out, g.Label)
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

func clamp(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}
