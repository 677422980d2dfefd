package inventory

import "strings"

type CategoryIcon string

const (
	IconCleaning CategoryIcon = "cleaning"
	IconBathroom CategoryIcon = "bathroom"
	IconKitchen  CategoryIcon = "kitchen"
	IconLinens   CategoryIcon = "linens"
	IconDefault  CategoryIcon = "default"
)

// Keyword stems are Croatian since the model answers in Croatian.
// Order matters: the first group that matches wins.
var iconKeywords = []struct {
	icon  CategoryIcon
	stems []string
}{
	{IconCleaning, []string{"čišćenje", "deterdžent", "sredstv"}},
	{IconBathroom, []string{"kupaonic", "toalet", "wc", "sapun", "šampon", "gel"}},
	{IconKitchen, []string{"kuhinj", "kava", "čaj", "šećer", "sol", "ulje", "spužv"}},
	{IconLinens, []string{"posteljin", "ručnik", "plaht", "krp"}},
}

// IconForCategory picks a display icon for an inventory category.
func IconForCategory(category string) CategoryIcon {
	cat := strings.ToLower(category)
	for _, group := range iconKeywords {
		for _, stem := range group.stems {
			if strings.Contains(cat, stem) {
				return group.icon
			}
		}
	}
	return IconDefault
}

// Emoji is used by text front-ends that cannot draw SVG icons.
func (i CategoryIcon) Emoji() string {
	switch i {
	case IconCleaning:
		return "🧽"
	case IconBathroom:
		return "🛁"
	case IconKitchen:
		return "☕"
	case IconLinens:
		return "🛏️"
	default:
		return "📦"
	}
}
