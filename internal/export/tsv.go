// Package export renders plans for clipboard, print and PDF.
package export

import (
	"strings"

	"ai-supply-planner/internal/inventory"
)

const planTSVHeader = "Kategorija\tMjesečna Potreba\tGodišnji Total\tPreporučena Zaliha (20%)\n"

// PlanTSV renders the plan as tab-separated text with a header row.
// Tabs and newlines inside values are replaced by spaces.
func PlanTSV(plan []inventory.PlanItem) string {
	rows := make([]string, 0, len(plan))
	for _, it := range plan {
		rows = append(rows, strings.Join([]string{
			tsvCell(it.Category),
			tsvCell(it.MonthlyNeed),
			tsvCell(it.AnnualTotal),
			tsvCell(it.RecommendedStock),
		}, "\t"))
	}
	return planTSVHeader + strings.Join(rows, "\n")
}

var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func tsvCell(s string) string {
	return tsvReplacer.Replace(s)
}
