package export

import (
	"fmt"
	"io"
	"strings"

	"ai-supply-planner/internal/inventory"

	"github.com/go-pdf/fpdf"
)

const (
	PlanPDFFilename         = "godisnji-plan-nabave.pdf"
	ShoppingPlanPDFFilename = "plan-kupovine.pdf"

	ShoppingPlanTitle = "Aktivni Plan Kupovine"

	utf8Family   = "PlanFont"
	coreFamily   = "Helvetica"
	bottomMargin = 15.0
	lineHeight   = 5.0
	cellPadding  = 1.5
)

type rgb struct{ r, g, b int }

// latinFold covers the Croatian letters cp1252 has no code point for.
var latinFold = strings.NewReplacer("č", "c", "ć", "c", "đ", "d", "Č", "C", "Ć", "C", "Đ", "D")

var (
	planHeaderFill     = rgb{3, 105, 161}
	shoppingHeaderFill = rgb{22, 163, 74}
)

// PDFOptions controls font selection. With an empty FontPath the core
// Helvetica font is used and text is translated to cp1252.
type PDFOptions struct {
	FontPath string
}

type table struct {
	title   string
	headers []string
	widths  []float64
	fill    rgb
	rows    [][]string
	footer  []string
}

// PlanPDF writes the annual plan as a one-table PDF.
func PlanPDF(w io.Writer, plan []inventory.PlanItem, opts PDFOptions) error {
	t := table{
		title:   PlanTitle,
		headers: []string{"Kategorija", "Mjesečna Potreba", "Godišnji Total", "Preporučena Zaliha (20%)"},
		widths:  []float64{70, 36, 36, 40},
		fill:    planHeaderFill,
	}
	for _, it := range plan {
		t.rows = append(t.rows, []string{it.Category, it.MonthlyNeed, it.AnnualTotal, it.RecommendedStock})
	}
	return writeTable(w, "P", t, opts)
}

// ShoppingPlanPDF writes one row per item using its selected offer.
func ShoppingPlanPDF(w io.Writer, items []inventory.ShoppingItem, opts PDFOptions) error {
	t := table{
		title:   ShoppingPlanTitle,
		headers: []string{"Stavka", "Količina", "Cijena", "Trgovina", "Ukupni Trošak", "Ušteda"},
		widths:  []float64{70, 35, 35, 55, 40, 25},
		fill:    shoppingHeaderFill,
	}
	for _, it := range items {
		offer, ok := it.SelectedOffer()
		if !ok {
			t.rows = append(t.rows, []string{it.Item, it.Quantity, "-", "-", "-", "-"})
			continue
		}
		savings := offer.EstimatedSavings
		if savings == "" {
			savings = "-"
		}
		t.rows = append(t.rows, []string{it.Item, it.Quantity, offer.Price, offer.Shop, offer.TotalCost, savings})
	}

	if total, skipped := inventory.SelectedTotal(items); skipped < len(items) {
		label := "Ukupno"
		if skipped > 0 {
			label = fmt.Sprintf("Ukupno (bez %d stavki)", skipped)
		}
		t.footer = []string{label, "", "", "", total.StringFixed(2) + " €", ""}
	}
	return writeTable(w, "L", t, opts)
}

func writeTable(w io.Writer, orientation string, t table, opts PDFOptions) error {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetAutoPageBreak(false, bottomMargin)

	family := coreFamily
	tr := func(s string) string { return s }
	if opts.FontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", opts.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", opts.FontPath)
		family = utf8Family
	} else {
		cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
		tr = func(s string) string { return cp1252(latinFold.Replace(s)) }
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 16)
	pdf.Text(14, 16, tr(t.title))
	pdf.SetXY(14, 20)

	drawHeader := func() {
		pdf.SetFont(family, "B", 10)
		pdf.SetFillColor(t.fill.r, t.fill.g, t.fill.b)
		pdf.SetTextColor(255, 255, 255)
		drawRow(pdf, t.widths, translateAll(tr, t.headers), true)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(family, "", 9)
	}

	drawHeader()
	_, pageHeight := pdf.GetPageSize()
	for _, row := range append(t.rows, nonEmpty(t.footer)...) {
		cells := translateAll(tr, row)
		if pdf.GetY()+rowHeight(pdf, t.widths, cells) > pageHeight-bottomMargin {
			pdf.AddPage()
			pdf.SetXY(14, 14)
			drawHeader()
		}
		drawRow(pdf, t.widths, cells, false)
	}

	if pdf.Err() {
		return fmt.Errorf("building pdf: %w", pdf.Error())
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func drawRow(pdf *fpdf.Fpdf, widths []float64, cells []string, fill bool) {
	height := rowHeight(pdf, widths, cells)
	x, y := pdf.GetXY()
	left := x
	for i, cell := range cells {
		style := "D"
		if fill {
			style = "FD"
		}
		pdf.Rect(x, y, widths[i], height, style)
		pdf.SetXY(x+cellPadding, y+cellPadding/2)
		pdf.MultiCell(widths[i]-2*cellPadding, lineHeight, cell, "", "L", false)
		x += widths[i]
	}
	pdf.SetXY(left, y+height)
}

func rowHeight(pdf *fpdf.Fpdf, widths []float64, cells []string) float64 {
	lines := 1
	for i, cell := range cells {
		avail := widths[i] - 2*cellPadding - 2*pdf.GetCellMargin()
		if n := lineCount(pdf, cell, avail); n > lines {
			lines = n
		}
	}
	return float64(lines)*lineHeight + cellPadding
}

// lineCount estimates how many lines MultiCell needs for s, wrapping at
// spaces and splitting words longer than the line.
func lineCount(pdf *fpdf.Fpdf, s string, avail float64) int {
	words := strings.Fields(s)
	if len(words) == 0 || avail <= 0 {
		return 1
	}
	space := pdf.GetStringWidth(" ")
	lines, cur := 1, 0.0
	for _, word := range words {
		ww := pdf.GetStringWidth(word)
		if cur > 0 && cur+space+ww <= avail {
			cur += space + ww
			continue
		}
		if cur > 0 {
			lines++
		}
		cur = ww
		for cur > avail {
			lines++
			cur -= avail
		}
	}
	return lines
}

func translateAll(tr func(string) string, in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = tr(s)
	}
	return out
}

func nonEmpty(row []string) [][]string {
	if row == nil {
		return nil
	}
	return [][]string{row}
}
