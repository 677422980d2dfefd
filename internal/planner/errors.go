package planner

import (
	"errors"
	"fmt"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"
)

// Operation names a user-visible workflow step.
type Operation string

const (
	OpInventoryPlan Operation = "inventory_plan"
	OpShoppingPlan  Operation = "shopping_plan"
	OpRefreshPrices Operation = "refresh_prices"
	OpWebShopLookup Operation = "webshop_lookup"
)

var (
	ErrNoInventoryPlan = errors.New("no inventory plan has been generated")
	ErrNoShoppingPlan  = errors.New("no shopping plan has been generated")
	ErrBusy            = errors.New("another operation is in progress")
)

const (
	msgPlanFailed      = "Došlo je do pogreške prilikom generiranja plana. Molimo provjerite svoju internetsku vezu i pokušajte ponovo. Ako se problem nastavi, ulazni podaci možda nisu dovoljno precizni."
	msgPlanNoJSON      = "Model nije uspio generirati ispravan JSON format. Molimo pokušajte ponovo s malo drugačijim vrijednostima."
	msgShoppingFailed  = "Došlo je do neočekivane pogreške prilikom generiranja plana kupovine. Molimo provjerite svoju internetsku vezu i pokušajte ponovo."
	msgRefreshFailed   = "Došlo je do neočekivane pogreške prilikom osvježavanja cijena. Molimo provjerite svoju internetsku vezu i pokušajte ponovo."
	msgWebShopFailed   = "Došlo je do neočekivane pogreške prilikom pretraživanja web trgovina."
	msgMalformed       = "AI je vratio odgovor u neočekivanom formatu. To se ponekad događa kod složenih upita. Molimo pokušajte generirati plan ponovo."
	msgInvalidArgument = "Zahtjev je neispravan. Provjerite jesu li podaci ispravni i pokušajte ponovo."
	msgInvalidInput    = "Molimo ispunite sva polja ispravnim vrijednostima (najmanje 1)."
	msgNoInventoryPlan = "Najprije generirajte godišnji plan nabave."
	msgNoShoppingPlan  = "Nema aktivnog plana kupovine za osvježavanje."
	msgBusy            = "Operacija je već u tijeku. Pričekajte da završi."
	msgUnexpected      = "Došlo je do neočekivane pogreške."
)

// OperationError is returned by every Planner and Session operation.
// Op is the workflow the caller started; Stage is the step that failed.
type OperationError struct {
	Op    Operation
	Stage Operation
	Err   error
}

func (e *OperationError) Error() string {
	if e.Stage != "" && e.Stage != e.Op {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// UserMessage is the fixed Croatian message shown to the host.
func (e *OperationError) UserMessage() string {
	stage := e.Stage
	if stage == "" {
		stage = e.Op
	}

	switch {
	case errors.Is(e.Err, ErrBusy):
		return msgBusy
	case errors.Is(e.Err, inventory.ErrInvalidInput):
		return msgInvalidInput
	case errors.Is(e.Err, ErrNoInventoryPlan):
		return msgNoInventoryPlan
	case errors.Is(e.Err, ErrNoShoppingPlan):
		return msgNoShoppingPlan
	case llm.KindOf(e.Err) == llm.KindMalformedResponse:
		return msgMalformed
	case llm.IsInvalidArgument(e.Err):
		return msgInvalidArgument
	case stage == OpInventoryPlan && llm.KindOf(e.Err) == llm.KindEmptyResponse:
		return msgPlanNoJSON
	}

	switch stage {
	case OpInventoryPlan:
		return msgPlanFailed
	case OpShoppingPlan:
		return msgShoppingFailed
	case OpRefreshPrices:
		return msgRefreshFailed
	case OpWebShopLookup:
		return msgWebShopFailed
	}
	return msgUnexpected
}

// UserMessage extracts the host-facing message from any error.
func UserMessage(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.UserMessage()
	}
	return (&OperationError{Err: err}).UserMessage()
}

func opError(op, stage Operation, err error) error {
	return &OperationError{Op: op, Stage: stage, Err: err}
}
