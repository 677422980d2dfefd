package inventory

// FormInput captures the property parameters a host submits.
type FormInput struct {
	SeasonLength        int `json:"seasonLength" validate:"required,min=1"`
	AvgNightsPerUnit    int `json:"avgNightsPerUnit" validate:"required,min=1"`
	AvgNightsPerBooking int `json:"avgNightsPerBooking" validate:"required,min=1"`
	TotalArea           int `json:"totalArea" validate:"required,min=1"`
	Units               int `json:"units" validate:"required,min=1"`
	AvgUnitArea         int `json:"avgUnitArea" validate:"required,min=1"`
	Cleaners            int `json:"cleaners" validate:"required,min=1"`
}

// DefaultFormInput returns the values the form is pre-filled with.
func DefaultFormInput() FormInput {
	return FormInput{
		SeasonLength:        365,
		AvgNightsPerUnit:    180,
		AvgNightsPerBooking: 2,
		TotalArea:           100,
		Units:               4,
		AvgUnitArea:         20,
		Cleaners:            2,
	}
}

// PlanItem is one consumable category of the annual inventory plan.
// Quantities are free text with units ("5L") exactly as the model wrote them.
type PlanItem struct {
	Category         string `json:"category"`
	MonthlyNeed      string `json:"monthlyNeed"`
	AnnualTotal      string `json:"annualTotal"`
	RecommendedStock string `json:"recommendedStock"`
}

// ShopOffer is one retailer's offer for a shopping item.
type ShopOffer struct {
	Shop             string `json:"shop"`
	Price            string `json:"price"`
	TotalCost        string `json:"totalCost"`
	EstimatedSavings string `json:"estimatedSavings,omitempty"`
	WebShopURL       string `json:"webShopUrl,omitempty"`
}

// ShoppingItem is one line of the shopping plan. Offers are ordered best first.
type ShoppingItem struct {
	Item               string      `json:"item"`
	Quantity           string      `json:"quantity"`
	Offers             []ShopOffer `json:"offers"`
	SelectedOfferIndex int         `json:"selectedOfferIndex"`
}

// SelectedOffer returns the offer the host picked, falling back to the best one.
func (s ShoppingItem) SelectedOffer() (ShopOffer, bool) {
	if len(s.Offers) == 0 {
		return ShopOffer{}, false
	}
	if s.SelectedOfferIndex < 0 || s.SelectedOfferIndex >= len(s.Offers) {
		return s.Offers[0], true
	}
	return s.Offers[s.SelectedOfferIndex], true
}

// ItemQuantity is the reduced form of a shopping item used to reprice a plan.
type ItemQuantity struct {
	Item     string `json:"item"`
	Quantity string `json:"quantity"`
}

// ToItemQuantities drops offers, URLs and selection from a shopping plan.
func ToItemQuantities(items []ShoppingItem) []ItemQuantity {
	out := make([]ItemQuantity, 0, len(items))
	for _, it := range items {
		out = append(out, ItemQuantity{Item: it.Item, Quantity: it.Quantity})
	}
	return out
}

// ClonePlan returns a deep copy of an inventory plan.
func ClonePlan(plan []PlanItem) []PlanItem {
	if plan == nil {
		return nil
	}
	out := make([]PlanItem, len(plan))
	copy(out, plan)
	return out
}

// CloneShoppingPlan returns a deep copy of a shopping plan, offers included.
func CloneShoppingPlan(items []ShoppingItem) []ShoppingItem {
	if items == nil {
		return nil
	}
	out := make([]ShoppingItem, len(items))
	for i, it := range items {
		out[i] = it
		out[i].Offers = append([]ShopOffer(nil), it.Offers...)
	}
	return out
}
