package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/metrics"
	"ai-supply-planner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func usageText() string {
	d := inventory.DefaultFormInput()
	return fmt.Sprintf("👋 *AI Planer Nabave*\n\n"+
		"Pošaljite /plan za plan sa zadanim vrijednostima ili navedite svih 7 brojeva redom:\n"+
		"`/plan sezona noćenja_po_jedinici noćenja_po_rezervaciji m2 jedinice m2_po_jedinici čistačice`\n\n"+
		"Zadano: `/plan %d %d %d %d %d %d %d`",
		d.SeasonLength, d.AvgNightsPerUnit, d.AvgNightsPerBooking, d.TotalArea, d.Units, d.AvgUnitArea, d.Cleaners)
}

func errorText(err error) string {
	return "❌ " + esc(planner.UserMessage(err))
}

func statusText(h metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("🧠 *Stanje sustava*\n")
	fmt.Fprintf(&sb, "• Uptime: %s\n", h.Uptime)
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", h.AllocMB, h.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", h.Goroutines)
	fmt.Fprintf(&sb, "• Sesije: %d\n", h.Sessions)
	return sb.String()
}

// planMessages renders the annual plan as one or more Markdown messages.
func planMessages(plan []inventory.PlanItem) []string {
	blocks := make([]string, 0, len(plan))
	for _, it := range plan {
		blocks = append(blocks, fmt.Sprintf("%s *%s*\nMjesečno: %s · Godišnje: %s · Zaliha: %s\n\n",
			inventory.IconForCategory(it.Category).Emoji(), esc(it.Category),
			esc(it.MonthlyNeed), esc(it.AnnualTotal), esc(it.RecommendedStock)))
	}
	return chunkMessages("📋 *Godišnji Plan Nabave*\n\n", blocks, "")
}

// shoppingMessages renders the shopping plan as one or more Markdown
// messages. The total closes the last one.
func shoppingMessages(items []inventory.ShoppingItem) []string {
	blocks := make([]string, 0, len(items))
	for i, it := range items {
		var sb strings.Builder
		fmt.Fprintf(&sb, "*%d. %s* (%s)\n", i+1, esc(it.Item), esc(it.Quantity))
		for j, o := range it.Offers {
			mark := "▫️"
			if j == it.SelectedOfferIndex {
				mark = "✅"
			}
			shop := esc(o.Shop)
			if o.WebShopURL != "" {
				shop = fmt.Sprintf("[%s](%s)", shop, o.WebShopURL)
			}
			fmt.Fprintf(&sb, "%s %s: %s, ukupno %s", mark, shop, esc(o.Price), esc(o.TotalCost))
			if o.EstimatedSavings != "" {
				fmt.Fprintf(&sb, " (ušteda %s)", esc(o.EstimatedSavings))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		blocks = append(blocks, sb.String())
	}

	var footer strings.Builder
	if total, skipped := inventory.SelectedTotal(items); len(items) > skipped {
		fmt.Fprintf(&footer, "*Ukupno:* %s €", total.StringFixed(2))
	}
	if n := selectableItems(items); n < len(items) && hasChoice(items[n:]) {
		fmt.Fprintf(&footer, "\n\n_Odabir ponude gumbima dostupan je za stavke 1-%d._", n)
	}
	return chunkMessages("🛒 *Aktivni Plan Kupovine*\n\n", blocks, footer.String())
}

// chunkMessages packs header, blocks and footer into messages of at most
// maxMessageLen runes. Blocks are never split, so every message keeps its
// Markdown entities whole. A block longer than the limit gets a message of
// its own and is clipped there.
func chunkMessages(header string, blocks []string, footer string) []string {
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	add := func(s string) {
		size := utf8.RuneCountInString(s)
		if n > 0 && n+size > maxMessageLen {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
		if size > maxMessageLen {
			s, size = clip(s), maxMessageLen+1
		}
		cur.WriteString(s)
		n += size
	}

	add(header)
	for _, b := range blocks {
		add(b)
	}
	if footer != "" {
		add(footer)
	}
	if n > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func planKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Plan kupovine", cbShopping),
			tgbotapi.NewInlineKeyboardButtonData("📄 PDF", cbPlanPDF),
		),
	)
}

// maxKeyboardButtons is the number of inline buttons Telegram accepts on a message.
const maxKeyboardButtons = 100

// selectableItems is how many leading items get a row of offer buttons
// without the keyboard going over maxKeyboardButtons.
func selectableItems(items []inventory.ShoppingItem) int {
	budget := maxKeyboardButtons - 2 // refresh and PDF
	for i, it := range items {
		if len(it.Offers) < 2 {
			continue
		}
		if len(it.Offers) > budget {
			return i
		}
		budget -= len(it.Offers)
	}
	return len(items)
}

func hasChoice(items []inventory.ShoppingItem) bool {
	for _, it := range items {
		if len(it.Offers) > 1 {
			return true
		}
	}
	return false
}

// shoppingKeyboard has one row of offer buttons per item, then the actions.
func shoppingKeyboard(items []inventory.ShoppingItem) tgbotapi.InlineKeyboardMarkup {
	items = items[:selectableItems(items)]
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+1)
	for i, it := range items {
		if len(it.Offers) < 2 {
			continue
		}
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(it.Offers))
		for j, o := range it.Offers {
			label := fmt.Sprintf("%d. %s", i+1, o.Shop)
			if j == it.SelectedOfferIndex {
				label = "✓ " + label
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d|%d", cbSelectPfx, i, j)))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Osvježi cijene", cbRefresh),
		tgbotapi.NewInlineKeyboardButtonData("📄 PDF", cbShopPDF),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
