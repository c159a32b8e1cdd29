// Package categorize infers a transaction category from a free-text
// description using a keyword bag per category.
package categorize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category ids returned without keyword scoring.
const (
	CategoryIncome   = "income"
	CategoryTransfer = "transfer"
	CategoryOther    = "other"
)

// Category pairs a category id with the keywords that vote for it.
type Category struct {
	ID       string
	Keywords []string
}

// Categories is the scoring order; earlier entries win ties.
var Categories = []Category{
	{ID: "food", Keywords: []string{
		"restaurant", "cafe", "coffee", "starbucks", "mcdonald", "burger",
		"pizza", "sushi", "lunch", "dinner", "breakfast", "bakery", "bar",
		"food", "eat", "kitchen", "deli", "takeout", "delivery",
	}},
	{ID: "groceries", Keywords: []string{
		"grocery", "groceries", "supermarket", "market", "walmart",
		"costco", "aldi", "lidl", "produce", "butcher",
	}},
	{ID: "transport", Keywords: []string{
		"uber", "lyft", "taxi", "bus", "train", "metro", "subway", "fuel",
		"gas station", "petrol", "parking", "toll", "grab",
	}},
	{ID: "shopping", Keywords: []string{
		"amazon", "shop", "store", "mall", "clothing", "clothes", "shoes",
		"electronics", "ikea", "purchase",
	}},
	{ID: "entertainment", Keywords: []string{
		"netflix", "spotify", "cinema", "movie", "concert", "game",
		"steam", "theatre", "ticket", "museum",
	}},
	{ID: "utilities", Keywords: []string{
		"electric", "electricity", "water bill", "internet", "broadband",
		"phone", "mobile", "utility", "heating",
	}},
	{ID: "bills", Keywords: []string{
		"bill", "invoice", "insurance", "premium", "subscription",
		"membership", "tax",
	}},
	{ID: "health", Keywords: []string{
		"pharmacy", "doctor", "dentist", "hospital", "clinic", "medicine",
		"gym", "fitness",
	}},
	{ID: "housing", Keywords: []string{
		"rent", "mortgage", "landlord", "lease", "apartment",
	}},
	{ID: "education", Keywords: []string{
		"tuition", "course", "school", "university", "book", "udemy",
	}},
	{ID: "travel", Keywords: []string{
		"flight", "airline", "hotel", "airbnb", "booking", "hostel",
		"vacation", "trip",
	}},
}

// transferKeywords short-circuit scoring before any category is
// considered.
var transferKeywords = []string{
	"transfer", "wire", "to savings", "from savings", "moved to",
	"between accounts",
}

// Categorize scores each category by the total character length of its
// keywords found case-insensitively in the description; the highest
// score wins and ties break by enumeration order. Income entries
// short-circuit to "income", transfer phrasing to "transfer", and an
// empty description falls back to "other". The amount is accepted for
// interface symmetry; inference is text-only today.
func Categorize(description string, _ decimal.Decimal, isIncome bool) string {
	if isIncome {
		return CategoryIncome
	}

	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return CategoryOther
	}

	for _, kw := range transferKeywords {
		if strings.Contains(desc, kw) {
			return CategoryTransfer
		}
	}

	best := CategoryOther
	bestScore := 0
	for _, cat := range Categories {
		score := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(desc, kw) {
				score += len(kw)
			}
		}
		if score > bestScore {
			best = cat.ID
			bestScore = score
		}
	}

	return best
}
