package domain

import "time"

// Priority tiers for a lead, in display order.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// Lead types a record can carry.
const (
	LeadTypeSpice   = "Spice"
	LeadTypeOil     = "Cooking Oil"
	LeadTypeGeneral = "General"
)

// All is the wildcard filter value; a criterion set to it is inactive.
const All = "All"

// Priorities lists the tiers in the order the dashboard renders them.
var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Categories is the closed set of business category buckets.
var Categories = []string{"Restaurant", "Takeaway", "Cafe", "Grocery", "Wholesale"}

// Business represents a single lead record. Name is the unique key within a
// snapshot. Optional string fields use "" for absent; Latitude and Longitude
// are either both set or both nil.
type Business struct {
	Name          string   `json:"name"`
	Priority      string   `json:"priority"`
	LeadType      string   `json:"leadType"`
	Borough       string   `json:"borough"`
	Postcode      string   `json:"postcode"`
	Address       string   `json:"address"`
	Phone         string   `json:"phone,omitempty"`
	Website       string   `json:"website,omitempty"`
	CuisineType   string   `json:"cuisineType,omitempty"`
	Category      string   `json:"category,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	Source        string   `json:"source,omitempty"`
	Contacted     bool     `json:"contacted"`
	ContactedDate string   `json:"contactedDate,omitempty"`
	ContactNotes  string   `json:"contactNotes,omitempty"`
}

// ContactUpdate carries the outcome of reaching out to a lead.
type ContactUpdate struct {
	Contacted bool   `json:"contacted"`
	Notes     string `json:"notes"`
}

// Snapshot is an immutable point-in-time view of the lead collection.
// Holders swap the whole snapshot on reload; its contents are never mutated.
type Snapshot struct {
	Businesses []Business `json:"businesses"`
	LoadedAt   time.Time  `json:"loadedAt"`
}

// Count reports the number of records in the snapshot. Safe on nil.
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Businesses)
}
