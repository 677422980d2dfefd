package export

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strings"

	"ai-supply-planner/internal/inventory"

	"github.com/PuerkitoBio/goquery"
)

const (
	PlanTitle  = "Godišnji Plan Nabave"
	printTitle = "Ispis Plana"
)

// ErrNoPlanOutput is returned when a page has no #plan-output element.
var ErrNoPlanOutput = errors.New("page has no #plan-output element")

//go:embed templates/*.html
var templateFS embed.FS

var fragmentTmpl = template.Must(template.ParseFS(templateFS, "templates/plan_fragment.html"))

type fragmentRow struct {
	inventory.PlanItem
	Icon  inventory.CategoryIcon
	Emoji string
}

// RenderPlanFragment renders the plan table wrapped in div#plan-output.
func RenderPlanFragment(plan []inventory.PlanItem) (template.HTML, error) {
	rows := make([]fragmentRow, 0, len(plan))
	for _, it := range plan {
		icon := inventory.IconForCategory(it.Category)
		rows = append(rows, fragmentRow{PlanItem: it, Icon: icon, Emoji: icon.Emoji()})
	}

	var buf bytes.Buffer
	if err := fragmentTmpl.ExecuteTemplate(&buf, "plan_fragment.html", rows); err != nil {
		return "", fmt.Errorf("rendering plan fragment: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// PrintableHTML extracts #plan-output from page and wraps its contents in a
// standalone print document headed by the plan title.
func PrintableHTML(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	sel := doc.Find("#plan-output").First()
	if sel.Length() == 0 {
		return "", ErrNoPlanOutput
	}
	inner, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("extracting plan output: %w", err)
	}

	var b strings.Builder
	b.WriteString("<html><head><title>" + printTitle + "</title>")
	b.WriteString(`<style>body{font-family:sans-serif;padding:2rem}table{border-collapse:collapse;width:100%}th,td{border:1px solid #ccc;padding:.4rem;text-align:left}</style>`)
	b.WriteString("</head><body>")
	b.WriteString(`<div style="text-align: center; margin-bottom: 1rem;"><h1 style="font-size: 1.5rem; font-weight: bold;">`)
	b.WriteString(html.EscapeString(PlanTitle))
	b.WriteString("</h1></div>")
	b.WriteString(inner)
	b.WriteString("</body></html>")
	return b.String(), nil
}
