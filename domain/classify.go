package domain

import "strings"

// Keyword tables mirror the heuristics of the lead extractors: spice leads
// score on cuisine hints, cooking-oil leads on fryer-heavy trade names.
var (
	spiceHighKeywords   = []string{"indian", "curry", "tandoori", "chinese", "thai", "asian"}
	spiceMediumKeywords = []string{"restaurant", "kitchen", "takeaway"}
	oilHighKeywords     = []string{"fish and chips", "fried chicken", "kebab", "fast food"}
	oilMediumKeywords   = []string{"restaurant", "cafe", "diner", "grill"}
)

// categoryKeywords maps trade words to the closed category buckets. Order
// matters: the more specific buckets win over Restaurant.
var categoryKeywords = []struct {
	bucket   string
	keywords []string
}{
	{"Takeaway", []string{"takeaway", "take away", "kebab", "fried chicken", "fish and chips", "fish & chips", "fast food", "pizza"}},
	{"Cafe", []string{"cafe", "caff", "coffee", "diner"}},
	{"Grocery", []string{"grocery", "supermarket", "mini market", "minimarket", "convenience", "food store"}},
	{"Wholesale", []string{"wholesale", "cash and carry", "cash & carry", "distribut"}},
	{"Restaurant", []string{"restaurant", "kitchen", "grill", "curry", "tandoori", "bistro"}},
}

// keywordHaystack folds name and cuisine into one searchable string.
// OpenStreetMap cuisine tags join words with underscores ("fish_and_chips"),
// so those are flattened to spaces first.
func keywordHaystack(name, cuisineType string) string {
	hay := strings.ToLower(name + " " + cuisineType)
	return strings.ReplaceAll(hay, "_", " ")
}

// ClassifyPriority derives a priority tier from the business name and cuisine
// when the source row does not carry one. Unmatched names fall to LOW.
func ClassifyPriority(leadType, name, cuisineType string) string {
	hay := keywordHaystack(name, cuisineType)

	high, medium := spiceHighKeywords, spiceMediumKeywords
	if leadType == LeadTypeOil {
		high, medium = oilHighKeywords, oilMediumKeywords
	}
	for _, kw := range high {
		if strings.Contains(hay, kw) {
			return PriorityHigh
		}
	}
	for _, kw := range medium {
		if strings.Contains(hay, kw) {
			return PriorityMedium
		}
	}
	return PriorityLow
}

// Categorize assigns one of the closed category buckets, or "" when nothing
// in the name or cuisine matches.
func Categorize(name, cuisineType string) string {
	hay := keywordHaystack(name, cuisineType)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(hay, kw) {
				return c.bucket
			}
		}
	}
	return ""
}
