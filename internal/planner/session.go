package planner

import (
	"context"
	"sync"

	"ai-supply-planner/internal/inventory"
)

// State is a copy of a session at one point in time. Mutating it has no
// effect on the session.
type State struct {
	// Input is the form the last annual plan was requested with, or the zero
	// value before the first request.
	Input         inventory.FormInput
	InventoryPlan []inventory.PlanItem
	ShoppingPlan  []inventory.ShoppingItem
	// Running is the operation in flight, or "".
	Running Operation
}

// Session holds one host's current plans. The mutex is never held across
// an oracle call; only one operation may run at a time.
type Session struct {
	planner *Planner

	mu            sync.Mutex
	input         inventory.FormInput
	inventoryPlan []inventory.PlanItem
	shoppingPlan  []inventory.ShoppingItem
	running       Operation
}

func NewSession(p *Planner) *Session {
	return &Session{planner: p}
}

// GenerateInventoryPlan replaces the annual plan. Both plans are cleared up
// front and the input is kept for the next render of the form.
func (s *Session) GenerateInventoryPlan(ctx context.Context, input inventory.FormInput) ([]inventory.PlanItem, error) {
	if err := input.Validate(); err != nil {
		return nil, opError(OpInventoryPlan, "", err)
	}
	if err := s.begin(OpInventoryPlan, func() {
		s.input = input
		s.inventoryPlan = nil
		s.shoppingPlan = nil
	}); err != nil {
		return nil, err
	}

	plan, err := s.planner.InventoryPlan(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = ""
	if err != nil {
		return nil, err
	}
	s.inventoryPlan = plan
	return inventory.ClonePlan(plan), nil
}

// GenerateShoppingPlan builds a shopping plan from the current annual plan.
// The old shopping plan is cleared up front and stays cleared on failure.
func (s *Session) GenerateShoppingPlan(ctx context.Context) ([]inventory.ShoppingItem, error) {
	var plan []inventory.PlanItem
	if err := s.begin(OpShoppingPlan, func() {
		plan = inventory.ClonePlan(s.inventoryPlan)
		s.shoppingPlan = nil
	}); err != nil {
		return nil, err
	}

	items, err := s.planner.ShoppingPlan(ctx, plan)
	return s.finishShopping(items, err)
}

// RefreshShoppingPlanPrices reprices the current shopping plan. On failure
// the previous shopping plan is kept.
func (s *Session) RefreshShoppingPlanPrices(ctx context.Context) ([]inventory.ShoppingItem, error) {
	var current []inventory.ShoppingItem
	if err := s.begin(OpRefreshPrices, func() {
		current = inventory.CloneShoppingPlan(s.shoppingPlan)
	}); err != nil {
		return nil, err
	}

	items, err := s.planner.RefreshPrices(ctx, current)
	return s.finishShopping(items, err)
}

// SelectOffer picks offer j for item i. It reports false and changes nothing
// when there is no shopping plan or an index is out of range.
func (s *Session) SelectOffer(i, j int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.shoppingPlan) {
		return false
	}
	if j < 0 || j >= len(s.shoppingPlan[i].Offers) {
		return false
	}
	s.shoppingPlan[i].SelectedOfferIndex = j
	return true
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Input:         s.input,
		InventoryPlan: inventory.ClonePlan(s.inventoryPlan),
		ShoppingPlan:  inventory.CloneShoppingPlan(s.shoppingPlan),
		Running:       s.running,
	}
}

// Busy reports whether an operation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running != ""
}

func (s *Session) begin(op Operation, prepare func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running != "" {
		return opError(op, "", ErrBusy)
	}
	s.running = op
	prepare()
	return nil
}

func (s *Session) finishShopping(items []inventory.ShoppingItem, err error) ([]inventory.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = ""
	if err != nil {
		return nil, err
	}
	s.shoppingPlan = items
	return inventory.CloneShoppingPlan(items), nil
}
