package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/planner"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type formField struct {
	Name  string
	Label string
	Value int
}

type offerView struct {
	Index    int
	Selected bool
	inventory.ShopOffer
}

type shoppingRow struct {
	Index    int
	Item     string
	Quantity string
	Offers   []offerView
}

type pageData struct {
	Fields        []formField
	Plan          template.HTML
	HasPlan       bool
	Shopping      []shoppingRow
	ShoppingTotal string
	Running       string
}

func formFields(in inventory.FormInput) []formField {
	return []formField{
		{"seasonLength", "Prosječna Dužina Sezone (dana)", in.SeasonLength},
		{"avgNightsPerUnit", "Prosječan broj noćenja po jedinici", in.AvgNightsPerUnit},
		{"avgNightsPerBooking", "Prosječan broj noćenja po rezervaciji", in.AvgNightsPerBooking},
		{"totalArea", "Ukupna Veličina Objekta (m²)", in.TotalArea},
		{"units", "Broj Smještajnih Jedinica", in.Units},
		{"avgUnitArea", "Prosječna Veličina Jedinice (m²)", in.AvgUnitArea},
		{"cleaners", "Broj Čistačica", in.Cleaners},
	}
}

func renderPage(st planner.State) (string, error) {
	input := st.Input
	if input == (inventory.FormInput{}) {
		input = inventory.DefaultFormInput()
	}
	data := pageData{
		Fields:  formFields(input),
		HasPlan: len(st.InventoryPlan) > 0,
		Running: string(st.Running),
	}
	if data.HasPlan {
		frag, err := export.RenderPlanFragment(st.InventoryPlan)
		if err != nil {
			return "", err
		}
		data.Plan = frag
	}

	for i, it := range st.ShoppingPlan {
		row := shoppingRow{Index: i, Item: it.Item, Quantity: it.Quantity}
		for j, o := range it.Offers {
			row.Offers = append(row.Offers, offerView{Index: j, Selected: j == it.SelectedOfferIndex, ShopOffer: o})
		}
		data.Shopping = append(data.Shopping, row)
	}
	data.ShoppingTotal = newStateView(st).ShoppingTotal

	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}
