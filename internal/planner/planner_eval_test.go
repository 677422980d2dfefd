package planner

import (
	"context"
	"testing"

	"ai-supply-planner/internal/config"
	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"
)

// TestWorkflow_LiveEval runs the full workflow against the real Gemini API.
// Run with: go test -v ./internal/planner -run TestWorkflow_LiveEval
func TestWorkflow_LiveEval(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live eval in short mode")
	}

	ctx := context.Background()
	cfg, err := config.NewFromEnv()
	if err != nil {
		t.Skip("Skipping: No API keys found in environment")
	}

	gen, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create Gemini client: %v", err)
	}
	s := NewSession(NewPlanner(gen))

	plan, err := s.GenerateInventoryPlan(ctx, inventory.DefaultFormInput())
	if err != nil {
		t.Fatalf("inventory plan failed: %v (%s)", err, UserMessage(err))
	}
	if len(plan) == 0 {
		t.Fatal("expected at least one category")
	}
	for i, it := range plan {
		if it.Category == "" || it.MonthlyNeed == "" || it.AnnualTotal == "" || it.RecommendedStock == "" {
			t.Errorf("item %d has an empty field: %+v", i, it)
		}
	}

	items, err := s.GenerateShoppingPlan(ctx)
	if err != nil {
		t.Fatalf("shopping plan failed: %v (%s)", err, UserMessage(err))
	}
	for _, it := range items {
		if len(it.Offers) == 0 || len(it.Offers) > maxOffers {
			t.Errorf("%s: expected 1-3 offers, got %d", it.Item, len(it.Offers))
		}
		if !inventory.OffersAscending(it.Offers) {
			t.Logf("%s: offers not ordered by price: %+v", it.Item, it.Offers)
		}
	}
	t.Logf("plan: %d categories, shopping plan: %d items", len(plan), len(items))
}
