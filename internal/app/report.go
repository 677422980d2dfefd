package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"ai-supply-planner/internal/inventory"
)

// WritePlan prints the annual plan as an aligned console table.
func WritePlan(w io.Writer, plan []inventory.PlanItem) error {
	fmt.Fprintln(w, "=== GODIŠNJI PLAN NABAVE ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tKategorija\tMjesečno\tGodišnje\tZaliha (20%)")
	for _, it := range plan {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			inventory.IconForCategory(it.Category).Emoji(), it.Category, it.MonthlyNeed, it.AnnualTotal, it.RecommendedStock)
	}
	return tw.Flush()
}

// WriteShopping prints every offer per item, marking the selected one, and
// the total of the selected offers.
func WriteShopping(w io.Writer, items []inventory.ShoppingItem) error {
	fmt.Fprintln(w, "=== AKTIVNI PLAN KUPOVINE ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, it := range items {
		fmt.Fprintf(tw, "%d. %s\t%s\t\t\t\n", i+1, it.Item, it.Quantity)
		for j, o := range it.Offers {
			mark := " "
			if j == it.SelectedOfferIndex {
				mark = "*"
			}
			fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\t%s\n", mark, o.Shop, o.Price, o.TotalCost, o.EstimatedSavings, o.WebShopURL)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total, skipped := inventory.SelectedTotal(items)
	if len(items) > skipped {
		fmt.Fprintf(w, "\nUkupno: %s €\n", total.StringFixed(2))
	}
	if skipped > 0 {
		fmt.Fprintf(w, "(%d stavki bez čitljive cijene nije uključeno u ukupan iznos)\n", skipped)
	}
	return nil
}
