package domain

import "strings"

// FilterCriteria holds one selection per filterable field. Empty or "All"
// means the criterion is inactive. Active criteria combine with AND.
type FilterCriteria struct {
	Search   string `json:"search,omitempty"`
	Borough  string `json:"borough"`
	Postcode string `json:"postcode"`
	LeadType string `json:"leadType"`
	Priority string `json:"priority"`
	Category string `json:"category"`
}

// normalized promotes empty selections to the wildcard and resets the
// postcode to the wildcard when it is not a valid choice for the selected
// borough, so a stale postcode never silently filters to nothing.
func (c FilterCriteria) normalized(businesses []Business) FilterCriteria {
	for _, field := range []*string{&c.Borough, &c.Postcode, &c.LeadType, &c.Priority, &c.Category} {
		if *field == "" {
			*field = All
		}
	}
	if c.Postcode != All {
		valid := false
		for _, pc := range postcodesFor(businesses, c.Borough) {
			if pc == c.Postcode {
				valid = true
				break
			}
		}
		if !valid {
			c.Postcode = All
		}
	}
	return c
}

// matches reports whether b passes every active criterion.
func (c FilterCriteria) matches(b Business) bool {
	if c.Search != "" && !matchesSearch(b, c.Search) {
		return false
	}
	return matchesExact(c.Borough, b.Borough) &&
		matchesExact(c.Postcode, b.Postcode) &&
		matchesExact(c.LeadType, b.LeadType) &&
		matchesExact(c.Priority, b.Priority) &&
		matchesExact(c.Category, b.Category)
}

// matchesExact treats empty and All as inactive. A record with an empty
// field never matches a concrete selection.
func matchesExact(want, got string) bool {
	return want == "" || want == All || want == got
}

// matchesSearch is a case-insensitive substring match against name or
// address. Records missing both fields never match.
func matchesSearch(b Business, term string) bool {
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(b.Name), t) ||
		strings.Contains(strings.ToLower(b.Address), t)
}

// Filter returns the businesses passing every active criterion, preserving
// the input order. The input slice is never modified.
func Filter(businesses []Business, criteria FilterCriteria) []Business {
	filtered := make([]Business, 0, len(businesses))
	for _, b := range businesses {
		if criteria.matches(b) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}
