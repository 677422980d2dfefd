package planner

import (
	"context"
	"strings"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/shared"
)

// ShopLocator resolves shop names to web-shop URLs. The returned map is keyed
// by shop name as the backend spelled it; unknown shops may be missing or "".
type ShopLocator interface {
	LocateShops(ctx context.Context, shops []string) (map[string]string, shared.AgentMeta, error)
}

type webShopRow struct {
	Shop       string `json:"shop"`
	WebShopURL string `json:"webShopUrl"`
}

type geminiShopLocator struct {
	gateway *llm.Gateway
}

// NewGeminiShopLocator looks shops up with a single search-grounded oracle call.
func NewGeminiShopLocator(gateway *llm.Gateway) ShopLocator {
	return &geminiShopLocator{gateway: gateway}
}

func (l *geminiShopLocator) LocateShops(ctx context.Context, shops []string) (map[string]string, shared.AgentMeta, error) {
	req, err := BuildWebShopLookupRequest(shops)
	if err != nil {
		return nil, shared.AgentMeta{AgentName: agentWebShops}, err
	}

	var rows []webShopRow
	meta, err := l.gateway.SearchJSON(ctx, agentWebShops, req, &rows)
	if err != nil {
		return nil, meta, err
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if _, seen := out[r.Shop]; !seen || out[r.Shop] == "" {
			out[r.Shop] = strings.TrimSpace(r.WebShopURL)
		}
	}
	return out, meta, nil
}

// NormalizeShop is the join key between offers and lookup results.
func NormalizeShop(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// uniqueShops lists every distinct shop across all offers, keeping the first spelling.
func uniqueShops(items []inventory.ShoppingItem) []string {
	seen := make(map[string]struct{})
	var shops []string
	for _, it := range items {
		for _, o := range it.Offers {
			key := NormalizeShop(o.Shop)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			shops = append(shops, o.Shop)
		}
	}
	return shops
}

type shopIndex map[string]string

func newShopIndex(found map[string]string) shopIndex {
	idx := make(shopIndex, len(found))
	for shop, url := range found {
		key := NormalizeShop(shop)
		if existing, ok := idx[key]; ok && existing != "" {
			// two spellings of one shop: the smaller non-empty URL wins
			if url == "" || existing <= url {
				continue
			}
		}
		idx[key] = url
	}
	return idx
}

func (s shopIndex) lookup(shop string) string {
	return s[NormalizeShop(shop)]
}

func (s shopIndex) resolved() int {
	n := 0
	for _, url := range s {
		if url != "" {
			n++
		}
	}
	return n
}
