package catalog

import (
	"strings"
	"unicode"

	"github.com/foodflame/storefront/internal/model"
)

// DefaultCategory is assigned when no keyword rule matches.
const DefaultCategory = model.CategoryChinese

type categoryRule struct {
	keywords []string
	category model.Category
}

// categoryRules are checked in order; the first rule with a keyword that
// matches whole words of the lower-cased name wins. A keyword also matches
// its plural with a trailing "s" or "es".
var categoryRules = []categoryRule{
	{[]string{"pizza", "calzone", "focaccia"}, model.CategoryPizza},
	{[]string{"burger", "sandwich", "hot dog", "wrap"}, model.CategoryBurgers},
	{[]string{
		"cake", "pie", "tart", "pudding", "brownie", "cookie", "crumble",
		"pancake", "cheesecake", "ice cream", "mousse", "trifle", "custard",
		"doughnut", "donut", "muffin", "chocolate",
	}, model.CategoryDesserts},
	{[]string{"juice", "coffee", "tea", "smoothie", "shake", "lemonade", "drink"}, model.CategoryBeverages},
	{[]string{
		"chow mein", "kung pao", "sweet and sour", "sweet & sour", "fried rice",
		"wonton", "dumpling", "noodle", "szechuan", "teriyaki", "stir fry",
		"stir-fry", "spring roll",
	}, model.CategoryChinese},
}

// InferCategory derives a menu category from a meal name.
func InferCategory(name string) model.Category {
	padded := " " + normalizeName(name) + " "
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if containsWord(padded, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}

// normalizeName lower-cases name, turns punctuation other than '&' and '-'
// into spaces and collapses runs of spaces.
func normalizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '-' {
			return unicode.ToLower(r)
		}
		return ' '
	}, name)
	return strings.Join(strings.Fields(cleaned), " ")
}

// containsWord reports whether kw, or its plural, occurs in padded bounded
// by spaces on both sides.
func containsWord(padded, kw string) bool {
	for _, suffix := range []string{"", "s", "es"} {
		if strings.Contains(padded, " "+kw+suffix+" ") {
			return true
		}
	}
	return false
}
