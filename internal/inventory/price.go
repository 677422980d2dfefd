package inventory

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var numberPattern = regexp.MustCompile(`\d[\d.,\s]*`)

// ParsePrice pulls the first amount out of a free-text price such as
// "12,99 €", "€3.49/kom" or "1.299,00 EUR". Both decimal comma and decimal
// point are accepted; the last separator followed by one or two digits is the
// decimal one. The second return is false when no amount can be found.
func ParsePrice(s string) (decimal.Decimal, bool) {
	raw := numberPattern.FindString(s)
	raw = strings.TrimSpace(strings.ReplaceAll(raw, " ", ""))
	raw = strings.TrimRight(raw, ".,")
	if raw == "" {
		return decimal.Zero, false
	}

	sep := strings.LastIndexAny(raw, ".,")
	var normalized string
	switch {
	case sep == -1:
		normalized = raw
	case len(raw)-sep-1 <= 2:
		intPart := strings.NewReplacer(".", "", ",", "").Replace(raw[:sep])
		normalized = intPart + "." + raw[sep+1:]
	default:
		// "1.299" or "1,299": thousands separator only
		normalized = strings.NewReplacer(".", "", ",", "").Replace(raw)
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OffersAscending reports whether every parseable price is not lower than the
// one before it. Unparseable prices are skipped.
func OffersAscending(offers []ShopOffer) bool {
	var prev *decimal.Decimal
	for _, o := range offers {
		p, ok := ParsePrice(o.Price)
		if !ok {
			continue
		}
		if prev != nil && p.LessThan(*prev) {
			return false
		}
		prev = &p
	}
	return true
}

// SelectedTotal sums the total cost of the selected offer of every item.
// The second return counts the items whose cost could not be parsed.
func SelectedTotal(items []ShoppingItem) (decimal.Decimal, int) {
	total := decimal.Zero
	skipped := 0
	for _, it := range items {
		offer, ok := it.SelectedOffer()
		if !ok {
			skipped++
			continue
		}
		cost, ok := ParsePrice(offer.TotalCost)
		if !ok {
			skipped++
			continue
		}
		total = total.Add(cost)
	}
	return total, skipped
}
