package domain

import "testing"

func TestClassifyPrioritySpice(t *testing.T) {
	cases := []struct {
		name, cuisine, want string
	}{
		{"Taj Mahal Indian Restaurant", "", PriorityHigh},
		{"Bamboo Garden", "Chinese", PriorityHigh},
		{"The Corner Kitchen", "", PriorityMedium},
		{"Hackney Takeaway", "", PriorityMedium},
		{"Bloom Florists", "", PriorityLow},
	}
	for _, c := range cases {
		if got := ClassifyPriority(LeadTypeSpice, c.name, c.cuisine); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestClassifyPriorityOil(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"Golden Fish and Chips", PriorityHigh},
		{"Kebab House", PriorityHigh},
		{"Sunrise Cafe", PriorityMedium},
		{"Corner Grill", PriorityMedium},
		{"Bloom Florists", PriorityLow},
	}
	for _, c := range cases {
		if got := ClassifyPriority(LeadTypeOil, c.name, ""); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
}

func TestClassifyPriorityGeneralUsesSpiceTables(t *testing.T) {
	if got := ClassifyPriority(LeadTypeGeneral, "Curry Palace", ""); got != PriorityHigh {
		t.Fatalf("expected HIGH, got %s", got)
	}
}

func TestCategorizeBuckets(t *testing.T) {
	cases := []struct {
		name, cuisine, want string
	}{
		{"Golden Fish and Chips", "", "Takeaway"},
		{"Coffee Corner", "", "Cafe"},
		{"Hackney Mini Market", "", "Grocery"},
		{"Evergreen Cash and Carry", "", "Wholesale"},
		{"Spice Garden", "Indian Restaurant", "Restaurant"},
		{"Bloom Florists", "", ""},
	}
	for _, c := range cases {
		if got := Categorize(c.name, c.cuisine); got != c.want {
			t.Fatalf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
}

func TestCategorizeSpecificBucketWinsOverRestaurant(t *testing.T) {
	// "Kebab Kitchen" carries both a takeaway and a restaurant keyword.
	if got := Categorize("Kebab Kitchen", ""); got != "Takeaway" {
		t.Fatalf("expected Takeaway, got %q", got)
	}
}

func TestClassifyUnderscoredCuisine(t *testing.T) {
	// OpenStreetMap tags use underscores: "fish_and_chips", "fast_food".
	if got := ClassifyPriority(LeadTypeOil, "Golden Fry", "fish_and_chips"); got != PriorityHigh {
		t.Fatalf("expected HIGH, got %s", got)
	}
	if got := Categorize("Golden Fry", "fish_and_chips"); got != "Takeaway" {
		t.Fatalf("expected Takeaway, got %q", got)
	}
}
