package planner

import (
	"context"
	"fmt"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/logger"
	"ai-supply-planner/internal/shared"
)

const (
	agentInventory = "InventoryPlanner"
	agentOffers    = "OfferFinder"
	agentWebShops  = "WebShopLocator"

	maxOffers = 3
)

// Recorder receives the metadata of every oracle round trip.
type Recorder interface {
	ObserveAgent(meta shared.AgentMeta, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAgent(shared.AgentMeta, error) {}

// Planner runs the plan workflows. It holds no plan state; see Session.
type Planner struct {
	gateway  *llm.Gateway
	locator  ShopLocator
	recorder Recorder
	log      *logger.Logger
}

type Option func(*Planner)

// WithShopLocator replaces the oracle-backed web-shop lookup.
func WithShopLocator(l ShopLocator) Option {
	return func(p *Planner) { p.locator = l }
}

func WithRecorder(r Recorder) Option {
	return func(p *Planner) { p.recorder = r }
}

func WithLogger(l *logger.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// NewPlanner creates a new Planner instance.
func NewPlanner(gen llm.Generator, opts ...Option) *Planner {
	p := &Planner{
		gateway:  llm.NewGateway(gen),
		recorder: nopRecorder{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.locator == nil {
		p.locator = NewGeminiShopLocator(p.gateway)
	}
	return p
}

// InventoryPlan validates the form and asks the oracle for the annual plan.
// Invalid input never reaches the oracle. Session validates on its own before
// touching its state; the check here guards callers using the Planner directly.
func (p *Planner) InventoryPlan(ctx context.Context, input inventory.FormInput) ([]inventory.PlanItem, error) {
	if err := input.Validate(); err != nil {
		return nil, opError(OpInventoryPlan, "", err)
	}

	req, err := BuildInventoryPlanRequest(input)
	if err != nil {
		return nil, opError(OpInventoryPlan, "", err)
	}

	var plan []inventory.PlanItem
	meta, err := p.gateway.StructuredJSON(ctx, agentInventory, req, &plan)
	if err == nil {
		err = checkPlan(plan)
	}
	p.observe(ctx, meta, err)
	if err != nil {
		return nil, opError(OpInventoryPlan, "", err)
	}

	p.log.Info(p.log.WithField(ctx, "categories", len(plan)), "inventory plan generated")
	return plan, nil
}

// ShoppingPlan finds offers for every plan item and attaches shop URLs.
func (p *Planner) ShoppingPlan(ctx context.Context, plan []inventory.PlanItem) ([]inventory.ShoppingItem, error) {
	if len(plan) == 0 {
		return nil, opError(OpShoppingPlan, "", ErrNoInventoryPlan)
	}
	req, err := BuildShoppingPlanRequest(plan)
	if err != nil {
		return nil, opError(OpShoppingPlan, "", err)
	}
	return p.offersAndShops(ctx, OpShoppingPlan, req)
}

// RefreshPrices reprices a shopping plan from scratch. Only item names and
// quantities are sent; old offers, URLs and selections are forgotten.
func (p *Planner) RefreshPrices(ctx context.Context, items []inventory.ShoppingItem) ([]inventory.ShoppingItem, error) {
	if len(items) == 0 {
		return nil, opError(OpRefreshPrices, "", ErrNoShoppingPlan)
	}
	req, err := BuildPriceRefreshRequest(inventory.ToItemQuantities(items))
	if err != nil {
		return nil, opError(OpRefreshPrices, "", err)
	}
	return p.offersAndShops(ctx, OpRefreshPrices, req)
}

func (p *Planner) offersAndShops(ctx context.Context, op Operation, req llm.Request) ([]inventory.ShoppingItem, error) {
	ctx = p.log.WithField(ctx, "operation", string(op))

	var items []inventory.ShoppingItem
	meta, err := p.gateway.SearchJSON(ctx, agentOffers, req, &items)
	p.observe(ctx, meta, err)
	if err != nil {
		return nil, opError(op, op, err)
	}

	items = p.normalizeOffers(ctx, items)
	if len(items) == 0 {
		err := &llm.Error{Kind: llm.KindEmptyResponse, Agent: agentOffers, Err: fmt.Errorf("no item came back with offers: %w", llm.ErrEmptyResponse)}
		return nil, opError(op, op, err)
	}

	items, err = p.attachShopURLs(ctx, items)
	if err != nil {
		return nil, opError(op, OpWebShopLookup, err)
	}
	return items, nil
}

// normalizeOffers enforces 1 to 3 offers per item and resets the selection.
func (p *Planner) normalizeOffers(ctx context.Context, items []inventory.ShoppingItem) []inventory.ShoppingItem {
	out := items[:0]
	for _, it := range items {
		itemCtx := p.log.WithField(ctx, "item", it.Item)
		switch {
		case len(it.Offers) == 0:
			p.log.Warn(itemCtx, "dropping item without offers")
			continue
		case len(it.Offers) > maxOffers:
			p.log.Warn(p.log.WithField(itemCtx, "offers", len(it.Offers)), "truncating offers")
			it.Offers = it.Offers[:maxOffers]
		}
		if !inventory.OffersAscending(it.Offers) {
			p.log.Warn(itemCtx, "offers are not ordered by price")
		}
		for j := range it.Offers {
			it.Offers[j].WebShopURL = ""
		}
		it.SelectedOfferIndex = 0
		out = append(out, it)
	}
	return out
}

func (p *Planner) attachShopURLs(ctx context.Context, items []inventory.ShoppingItem) ([]inventory.ShoppingItem, error) {
	shops := uniqueShops(items)
	if len(shops) == 0 {
		return items, nil
	}

	found, meta, err := p.locator.LocateShops(ctx, shops)
	p.observe(ctx, meta, err)
	if err != nil {
		return nil, err
	}

	urls := newShopIndex(found)
	for i := range items {
		for j := range items[i].Offers {
			items[i].Offers[j].WebShopURL = urls.lookup(items[i].Offers[j].Shop)
		}
	}

	p.log.Info(p.log.WithFields(ctx, map[string]any{
		"items":    len(items),
		"shops":    len(shops),
		"resolved": urls.resolved(),
	}), "shopping plan generated")
	return items, nil
}

func (p *Planner) observe(ctx context.Context, meta shared.AgentMeta, err error) {
	p.recorder.ObserveAgent(meta, err)

	ctx = p.log.WithFields(ctx, map[string]any{
		"agent":             meta.AgentName,
		"latency_ms":        meta.Latency.Milliseconds(),
		"prompt_tokens":     meta.Usage.PromptTokens,
		"completion_tokens": meta.Usage.CompletionTokens,
		"search_queries":    len(meta.SearchQueries),
	})
	if err != nil {
		p.log.Error(ctx, "agent call failed", err)
		return
	}
	p.log.Debug(ctx, "agent call finished")
}

func checkPlan(plan []inventory.PlanItem) error {
	if len(plan) == 0 {
		return &llm.Error{Kind: llm.KindEmptyResponse, Agent: agentInventory, Err: fmt.Errorf("plan has no categories: %w", llm.ErrEmptyResponse)}
	}
	for i, it := range plan {
		if it.Category == "" || it.MonthlyNeed == "" || it.AnnualTotal == "" || it.RecommendedStock == "" {
			return &llm.Error{Kind: llm.KindMalformedResponse, Agent: agentInventory, Err: fmt.Errorf("JSON item %d is missing a required field", i)}
		}
	}
	return nil
}
