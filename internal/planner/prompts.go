package planner

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"

	"google.golang.org/genai"
)

//go:embed prompts/*.md
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.md"))

// BuildInventoryPlanRequest asks for the annual plan in schema mode.
func BuildInventoryPlanRequest(input inventory.FormInput) (llm.Request, error) {
	prompt, err := render("inventory_prompt.md", input)
	if err != nil {
		return llm.Request{}, err
	}
	instruction, err := render("inventory_instruction.md", nil)
	if err != nil {
		return llm.Request{}, err
	}
	return llm.Request{
		Prompt:            prompt,
		SystemInstruction: instruction,
		Schema:            InventoryPlanSchema(),
	}, nil
}

// InventoryPlanSchema declares an array of plan items with four required strings.
func InventoryPlanSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Description: `Kategorija potrošnog sredstva (npr. "Sredstva za čišćenje kupaonice").`,
				},
				"monthlyNeed": {
					Type:        genai.TypeString,
					Description: `Procijenjena mjesečna potreba, uključujući jedinicu (npr. "5L").`,
				},
				"annualTotal": {
					Type:        genai.TypeString,
					Description: `Ukupna godišnja količina, uključujući jedinicu (npr. "60L").`,
				},
				"recommendedStock": {
					Type:        genai.TypeString,
					Description: `Preporučena zaliha (20% od godišnjeg totala), uključujući jedinicu (npr. "12L").`,
				},
			},
			Required:         []string{"category", "monthlyNeed", "annualTotal", "recommendedStock"},
			PropertyOrdering: []string{"category", "monthlyNeed", "annualTotal", "recommendedStock"},
		},
	}
}

// BuildShoppingPlanRequest asks for offers for every item of the annual plan.
func BuildShoppingPlanRequest(plan []inventory.PlanItem) (llm.Request, error) {
	return offersRequest("shopping_prompt.md", plan)
}

// BuildPriceRefreshRequest asks for fresh offers knowing only item and quantity.
func BuildPriceRefreshRequest(items []inventory.ItemQuantity) (llm.Request, error) {
	return offersRequest("refresh_prompt.md", items)
}

// BuildWebShopLookupRequest asks for the homepage of every shop in the list.
func BuildWebShopLookupRequest(shops []string) (llm.Request, error) {
	data, err := json.Marshal(shops)
	if err != nil {
		return llm.Request{}, fmt.Errorf("failed to encode shop list: %w", err)
	}
	prompt, err := render("webshop_prompt.md", string(data))
	if err != nil {
		return llm.Request{}, err
	}
	instruction, err := render("webshop_instruction.md", nil)
	if err != nil {
		return llm.Request{}, err
	}
	return llm.Request{Prompt: prompt, SystemInstruction: instruction, Search: true}, nil
}

func offersRequest(name string, payload any) (llm.Request, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return llm.Request{}, fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	prompt, err := render(name, string(data))
	if err != nil {
		return llm.Request{}, err
	}
	instruction, err := render("shopping_instruction.md", nil)
	if err != nil {
		return llm.Request{}, err
	}
	return llm.Request{Prompt: prompt, SystemInstruction: instruction, Search: true}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
