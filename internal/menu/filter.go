package menu

import (
	"strings"

	"github.com/foodflame/storefront/internal/model"
)

// Filter returns the items in category (every item for CategoryAll) whose
// name or description contains term, ignoring case. An empty term matches
// everything. The result is never nil.
func Filter(items []model.FoodItem, category model.Category, term string) []model.FoodItem {
	lower := strings.ToLower(term)
	out := make([]model.FoodItem, 0, len(items))
	for _, item := range items {
		if item.Matches(category, lower) {
			out = append(out, item)
		}
	}
	return out
}
