// Package menu holds the storefront menu: where items come from, how they
// are paged in, and how the visible list is filtered.
package menu

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/foodflame/storefront/internal/catalog"
	"github.com/foodflame/storefront/internal/model"
)

// Source fetches one page of menu items. Pages are 1-based.
type Source interface {
	Fetch(ctx context.Context, page int) ([]model.FoodItem, error)
}

var builtinItems = []model.FoodItem{
	{
		ID: "1", Name: "Margherita Pizza",
		Description: "Fresh tomato sauce, mozzarella, and basil",
		Price:       12.99, Rating: 4.8, PrepTime: "20-30 min",
		Image:    "https://images.unsplash.com/photo-1604068549290-dea0e4a305ca?w=400",
		Category: model.CategoryPizza,
	},
	{
		ID: "2", Name: "Pepperoni Pizza",
		Description: "Classic pepperoni with mozzarella cheese",
		Price:       14.99, Rating: 4.7, PrepTime: "25-35 min",
		Image:    "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400",
		Category: model.CategoryPizza,
	},
	{
		ID: "3", Name: "Classic Burger",
		Description: "Beef patty, lettuce, tomato, cheese, and sauce",
		Price:       9.99, Rating: 4.6, PrepTime: "15-25 min",
		Image:    "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=400",
		Category: model.CategoryBurgers,
	},
	{
		ID: "4", Name: "Chicken Burger",
		Description: "Grilled chicken breast with fresh vegetables",
		Price:       11.99, Rating: 4.5, PrepTime: "18-28 min",
		Image:    "https://images.unsplash.com/photo-1572802419224-296b0aeee0d9?w=400",
		Category: model.CategoryBurgers,
	},
	{
		ID: "5", Name: "Sweet & Sour Chicken",
		Description: "Crispy chicken with sweet and sour sauce",
		Price:       13.99, Rating: 4.7, PrepTime: "20-30 min",
		Image:    "https://images.unsplash.com/photo-1546833999-b9f581a1996d?w=400",
		Category: model.CategoryChinese,
	},
	{
		ID: "6", Name: "Fried Rice",
		Description: "Wok-fried rice with vegetables and egg",
		Price:       8.99, Rating: 4.4, PrepTime: "15-20 min",
		Image:    "https://images.unsplash.com/photo-1603133872878-684f208fb84b?w=400",
		Category: model.CategoryChinese,
	},
	{
		ID: "7", Name: "Chocolate Brownie",
		Description: "Rich, fudgy brownie with chocolate chips",
		Price:       6.99, Rating: 4.9, PrepTime: "10-15 min",
		Image:    "https://images.unsplash.com/photo-1606313564200-e75d5e30476c?w=400",
		Category: model.CategoryDesserts,
	},
	{
		ID: "8", Name: "Cheesecake",
		Description: "Creamy New York style cheesecake",
		Price:       7.99, Rating: 4.8, PrepTime: "5-10 min",
		Image:    "https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?w=400",
		Category: model.CategoryDesserts,
	},
	{
		ID: "9", Name: "Fresh Orange Juice",
		Description: "Freshly squeezed orange juice",
		Price:       3.99, Rating: 4.6, PrepTime: "2-5 min",
		Image:    "https://images.unsplash.com/photo-1621506289937-a8e4df240d0b?w=400",
		Category: model.CategoryBeverages,
	},
	{
		ID: "10", Name: "Iced Coffee",
		Description: "Cold brew coffee with ice",
		Price:       4.99, Rating: 4.5, PrepTime: "3-7 min",
		Image:    "https://images.unsplash.com/photo-1461023058943-07fcbe16d735?w=400",
		Category: model.CategoryBeverages,
	},
}

// Builtin returns a copy of the built-in menu.
func Builtin() []model.FoodItem {
	out := make([]model.FoodItem, len(builtinItems))
	copy(out, builtinItems)
	return out
}

// Fallback is the list substituted when a live fetch fails.
func Fallback() []model.FoodItem {
	return Builtin()
}

// StaticSource serves the built-in menu as a single page.
type StaticSource struct{}

// Fetch returns the built-in items for page 1 and nothing afterwards.
func (StaticSource) Fetch(_ context.Context, page int) ([]model.FoodItem, error) {
	if page != 1 {
		return []model.FoodItem{}, nil
	}
	return Builtin(), nil
}

// DefaultSubcategories are the catalog categories queried by CatalogSource.
var DefaultSubcategories = []string{"Beef", "Chicken", "Dessert", "Pasta", "Seafood"}

// DefaultPerCategory is how many meals each subcategory contributes per page.
const DefaultPerCategory = 4

// CatalogSource builds pages from the meal catalog, one request per
// subcategory. A failure of any request fails the whole page.
type CatalogSource struct {
	catalog       catalog.Catalog
	subcategories []string
	perCategory   int
}

// NewCatalogSource creates a CatalogSource. Zero values select the defaults.
func NewCatalogSource(c catalog.Catalog, subcategories []string, perCategory int) *CatalogSource {
	if len(subcategories) == 0 {
		subcategories = DefaultSubcategories
	}
	if perCategory <= 0 {
		perCategory = DefaultPerCategory
	}
	return &CatalogSource{
		catalog:       c,
		subcategories: append([]string(nil), subcategories...),
		perCategory:   perCategory,
	}
}

// Fetch returns the items of page in subcategory order.
func (s *CatalogSource) Fetch(ctx context.Context, page int) ([]model.FoodItem, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}

	results := make([][]model.FoodItem, len(s.subcategories))
	g, gctx := errgroup.WithContext(ctx)

	for i, sub := range s.subcategories {
		g.Go(func() error {
			meals, err := s.catalog.MealsByCategory(gctx, sub)
			if err != nil {
				return fmt.Errorf("subcategory %s: %w", sub, err)
			}

			window := pageWindow(meals, page, s.perCategory)
			items := make([]model.FoodItem, 0, len(window))
			for _, m := range window {
				items = append(items, catalog.ToFoodItem(m, sub))
			}
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []model.FoodItem
	for _, items := range results {
		out = append(out, items...)
	}
	if out == nil {
		out = []model.FoodItem{}
	}
	return out, nil
}

func pageWindow(meals []catalog.Meal, page, n int) []catalog.Meal {
	start := (page - 1) * n
	if start >= len(meals) {
		return nil
	}
	return meals[start:min(start+n, len(meals))]
}
