// Package menu holds the kitchen menu and the allergy filter behind
// the AI-menu flow. Filtering runs locally against ingredient tags;
// when a Gemini API key is configured the model is asked first and the
// local filter acts as the fallback.
package menu

import (
	"strings"

	"github.com/ermekov/club-table-reservation/internal/model"
)

// Item is a dish with localized names and lowercase ingredient tags in
// both languages. Tags are what guest allergy input is matched against.
type Item struct {
	Names       map[model.Language]string
	Ingredients []string
}

// Catalog is the static menu. It is fixed at startup like the venue
// topology; a real kitchen integration would replace the item list,
// not the filter.
type Catalog struct {
	items  []Item
	gemini *GeminiFilter // nil when no API key is configured
}

// New returns the default catalog. The optional GeminiFilter enables
// model-backed filtering.
func New(g *GeminiFilter) *Catalog {
	return &Catalog{gemini: g, items: defaultItems()}
}

func defaultItems() []Item {
	return []Item{
		{
			Names:       map[model.Language]string{model.LangRU: "Салат", model.LangEN: "Salad"},
			Ingredients: []string{"овощи", "орехи", "vegetables", "nuts"},
		},
		{
			Names:       map[model.Language]string{model.LangRU: "Пицца", model.LangEN: "Pizza"},
			Ingredients: []string{"глютен", "сыр", "молоко", "gluten", "cheese", "milk"},
		},
		{
			Names:       map[model.Language]string{model.LangRU: "Стейк", model.LangEN: "Steak"},
			Ingredients: []string{"говядина", "beef"},
		},
		{
			Names:       map[model.Language]string{model.LangRU: "Десерт", model.LangEN: "Dessert"},
			Ingredients: []string{"сахар", "молоко", "яйца", "sugar", "milk", "eggs"},
		},
	}
}

// ParseAllergies splits comma-separated guest input into normalized
// allergy tokens. Inputs meaning "none" produce an empty list.
func ParseAllergies(input string) []string {
	norm := strings.ToLower(strings.TrimSpace(input))
	if norm == "" || norm == "нет" || norm == "no" || norm == "none" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(norm, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterLocal returns the names of items whose ingredient tags do not
// contain any of the given allergy tokens. Matching is a substring
// check in either direction, so "орех" excludes items tagged "орехи".
func (c *Catalog) FilterLocal(lang model.Language, allergies []string) []string {
	var out []string
	for _, item := range c.items {
		if itemSafe(item, allergies) {
			out = append(out, itemName(item, lang))
		}
	}
	return out
}

func itemSafe(item Item, allergies []string) bool {
	for _, a := range allergies {
		for _, ing := range item.Ingredients {
			if strings.Contains(ing, a) || strings.Contains(a, ing) {
				return false
			}
		}
	}
	return true
}

func itemName(item Item, lang model.Language) string {
	if n, ok := item.Names[lang]; ok {
		return n
	}
	return item.Names[model.LangEN]
}
