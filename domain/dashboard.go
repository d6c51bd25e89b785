package domain

import (
	"sort"
	"time"
)

// priorityColors is the fixed badge palette the dashboard renders tiers with.
var priorityColors = map[string]string{
	PriorityHigh:   "#D32F2F",
	PriorityMedium: "#F57C00",
	PriorityLow:    "#388E3C",
}

// Metrics summarize the filtered subset.
type Metrics struct {
	Total          int             `json:"total"`
	HighPriority   int             `json:"highPriority"`
	MediumPriority int             `json:"mediumPriority"`
	LowPriority    int             `json:"lowPriority"`
	WithPhone      int             `json:"withPhone"`
	WithWebsite    int             `json:"withWebsite"`
	Categories     []CategoryCount `json:"categories"`
}

// CategoryCount is the record count for one category bucket.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PrioritySlice is one tier of the priority chart.
type PrioritySlice struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// BoroughCount is one bar of the borough chart.
type BoroughCount struct {
	Borough string `json:"borough"`
	Count   int    `json:"count"`
}

// Options are the selectable filter values, derived from the unfiltered
// snapshot so choices never vanish while filters are active.
type Options struct {
	Boroughs   []string `json:"boroughs"`
	Postcodes  []string `json:"postcodes"`
	LeadTypes  []string `json:"leadTypes"`
	Priorities []string `json:"priorities"`
	Categories []string `json:"categories"`
}

// Dashboard bundles everything the view needs for one render: the effective
// criteria after normalization, the filtered subset, and the derived
// aggregates. Building one never mutates the snapshot.
type Dashboard struct {
	Criteria      FilterCriteria  `json:"criteria"`
	Businesses    []Business      `json:"businesses"`
	Metrics       Metrics         `json:"metrics"`
	PriorityChart []PrioritySlice `json:"priorityChart"`
	BoroughChart  []BoroughCount  `json:"boroughChart"`
	Options       Options         `json:"options"`
	LoadedAt      time.Time       `json:"loadedAt"`
}

// BuildDashboard derives the full dashboard state from a snapshot and the
// requested criteria. It is pure: same inputs, same outputs, no caching of
// intermediate results. A nil snapshot yields an empty dashboard.
func BuildDashboard(snap *Snapshot, criteria FilterCriteria) Dashboard {
	var businesses []Business
	var loadedAt time.Time
	if snap != nil {
		businesses = snap.Businesses
		loadedAt = snap.LoadedAt
	}

	effective := criteria.normalized(businesses)
	filtered := Filter(businesses, effective)

	return Dashboard{
		Criteria:      effective,
		Businesses:    filtered,
		Metrics:       buildMetrics(filtered),
		PriorityChart: buildPriorityChart(filtered),
		BoroughChart:  buildBoroughChart(filtered),
		Options:       buildOptions(businesses, effective.Borough),
		LoadedAt:      loadedAt,
	}
}

func buildMetrics(businesses []Business) Metrics {
	m := Metrics{Total: len(businesses)}
	byCategory := make(map[string]int, len(Categories))
	for _, b := range businesses {
		switch b.Priority {
		case PriorityHigh:
			m.HighPriority++
		case PriorityMedium:
			m.MediumPriority++
		case PriorityLow:
			m.LowPriority++
		}
		if b.Phone != "" {
			m.WithPhone++
		}
		if b.Website != "" {
			m.WithWebsite++
		}
		byCategory[b.Category]++
	}
	m.Categories = make([]CategoryCount, 0, len(Categories))
	for _, name := range Categories {
		m.Categories = append(m.Categories, CategoryCount{Name: name, Count: byCategory[name]})
	}
	return m
}

func buildPriorityChart(businesses []Business) []PrioritySlice {
	counts := make(map[string]int, len(Priorities))
	for _, b := range businesses {
		counts[b.Priority]++
	}
	chart := make([]PrioritySlice, 0, len(Priorities))
	for _, tier := range Priorities {
		chart = append(chart, PrioritySlice{Tier: tier, Count: counts[tier], Color: priorityColors[tier]})
	}
	return chart
}

// buildBoroughChart counts per borough in first-encountered order, so the
// chart keeps the ordering of the underlying subset.
func buildBoroughChart(businesses []Business) []BoroughCount {
	index := make(map[string]int)
	chart := make([]BoroughCount, 0)
	for _, b := range businesses {
		if b.Borough == "" {
			continue
		}
		i, ok := index[b.Borough]
		if !ok {
			i = len(chart)
			index[b.Borough] = i
			chart = append(chart, BoroughCount{Borough: b.Borough})
		}
		chart[i].Count++
	}
	return chart
}

func buildOptions(businesses []Business, borough string) Options {
	return Options{
		Boroughs:   distinctValues(businesses, func(b Business) string { return b.Borough }),
		Postcodes:  postcodesFor(businesses, borough),
		LeadTypes:  distinctValues(businesses, func(b Business) string { return b.LeadType }),
		Priorities: append([]string(nil), Priorities...),
		Categories: distinctValues(businesses, func(b Business) string { return b.Category }),
	}
}

// distinctValues collects the distinct non-empty values of one field, sorted
// ascending.
func distinctValues(businesses []Business, field func(Business) string) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, b := range businesses {
		v := field(b)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// postcodesFor narrows the postcode choices to the selected borough; the
// wildcard keeps every postcode selectable.
func postcodesFor(businesses []Business, borough string) []string {
	return distinctValues(businesses, func(b Business) string {
		if !matchesExact(borough, b.Borough) {
			return ""
		}
		return b.Postcode
	})
}
