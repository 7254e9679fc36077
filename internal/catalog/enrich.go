package catalog

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/foodflame/storefront/internal/model"
)

// IDPrefix marks items that come from the catalog.
const IDPrefix = "mealdb-"

var prepTimes = []string{"10-15 min", "15-20 min", "15-25 min", "20-30 min", "25-35 min", "30-40 min"}

// ToFoodItem reshapes a catalog meal into a menu item. The catalog has no
// price, rating or preparation time, so those are derived from a hash of
// the meal id and stay stable across fetches.
func ToFoodItem(m Meal, subcategory string) model.FoodItem {
	h := xxhash.Sum64String(m.ID)

	// 7.99 .. 22.99
	price := 7.99 + float64(h%16)
	// 3.5 .. 5.0 in 0.1 steps
	rating := 3.5 + float64((h>>8)%16)/10
	rating = math.Round(rating*10) / 10

	return model.FoodItem{
		ID:          IDPrefix + m.ID,
		Name:        m.Name,
		Description: fmt.Sprintf("%s from our %s kitchen", m.Name, subcategory),
		Price:       math.Round(price*100) / 100,
		Image:       m.Thumb,
		Category:    InferCategory(m.Name),
		Rating:      rating,
		PrepTime:    prepTimes[(h>>16)%uint64(len(prepTimes))],
	}
}
