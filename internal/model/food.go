package model

import "strings"

// Category is a menu category. The set is closed.
type Category string

// Menu categories. CategoryAll is only meaningful as a filter.
const (
	CategoryAll       Category = "All"
	CategoryPizza     Category = "Pizza"
	CategoryBurgers   Category = "Burgers"
	CategoryChinese   Category = "Chinese"
	CategoryDesserts  Category = "Desserts"
	CategoryBeverages Category = "Beverages"
)

// Categories lists the filter values in display order.
var Categories = []Category{
	CategoryAll,
	CategoryPizza,
	CategoryBurgers,
	CategoryChinese,
	CategoryDesserts,
	CategoryBeverages,
}

// ParseCategory matches s against the known categories, ignoring case.
// An empty string selects CategoryAll.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryAll, true
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// FoodItem is a purchasable menu entry. Items are read-only for clients.
type FoodItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Category    Category `json:"category"`
	Rating      float64  `json:"rating"`
	PrepTime    string   `json:"prep_time"`
}

// Matches reports whether the item passes both the category and the
// search predicate. The term must already be lower-cased.
func (f FoodItem) Matches(category Category, lowerTerm string) bool {
	if category != CategoryAll && f.Category != category {
		return false
	}
	if lowerTerm == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Name), lowerTerm) ||
		strings.Contains(strings.ToLower(f.Description), lowerTerm)
}
