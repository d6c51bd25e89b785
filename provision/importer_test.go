package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jerryola1/evergreen/domain"
)

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const spiceCSV = `Spice Priority,Business Name,Cuisine Type,Address,Postcode,Phone,Website,Email,Rating,Latitude,Longitude,Source
HIGH,Taj Spice,indian,"3 Kingsland High St, Dalston",E8 2JS,020 7001 0002,https://tajspice.example,info@tajspice.example,4.5,51.5465,-0.0754,openstreetmap
,Golden Wok,chinese,"9 Mare Street, Hackney",E8 4RP,,,,,,,google_places
,The Corner Kitchen,,"1 Morning Lane, Hackney",E9 6ND,,,,,,,google_places
`

const oilCSV = `Oil Priority,Business Name,Cuisine Type,Address,Postcode,Phone,Website,Latitude,Longitude,Source
HIGH,Golden Fry,fish_and_chips,"11 West Green Road, Tottenham",N15 4QD,020 8001 0001,,51.588,-0.072,openstreetmap
MEDIUM,Taj Spice,,"3 Kingsland High St, Dalston",E8 2JS,,,,,openstreetmap
LOW,Bloom Florists,,"4 Lordship Lane, Wood Green",N22 5QW,,,,,openstreetmap
`

func TestImportCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "hackney_spice_businesses_20260815.csv", spiceCSV)
	writeDataFile(t, dir, filepath.Join("haringey", "haringey_cooking_oil_businesses_20260815.csv"), oilCSV)
	writeDataFile(t, dir, "notes.txt", "not a data file")

	businesses, err := importCSVFiles(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	wantNames := []string{"Bloom Florists", "Golden Fry", "Golden Wok", "Taj Spice", "The Corner Kitchen"}
	if len(businesses) != len(wantNames) {
		t.Fatalf("expected %d businesses, got %d: %#v", len(wantNames), len(businesses), businesses)
	}
	for i, want := range wantNames {
		if businesses[i].Name != want {
			t.Fatalf("expected %q at %d, got %q", want, i, businesses[i].Name)
		}
	}

	byName := make(map[string]domain.Business, len(businesses))
	for _, b := range businesses {
		byName[b.Name] = b
	}

	taj := byName["Taj Spice"]
	if taj.LeadType != domain.LeadTypeSpice || taj.Phone != "020 7001 0002" || taj.Website == "" {
		t.Fatalf("expected richer spice row to win the duplicate, got %#v", taj)
	}
	if taj.Borough != "Hackney" || taj.Postcode != "E8" {
		t.Fatalf("unexpected location fields: %#v", taj)
	}
	if taj.Latitude == nil || *taj.Latitude != 51.5465 {
		t.Fatalf("expected latitude carried over, got %#v", taj.Latitude)
	}

	fry := byName["Golden Fry"]
	if fry.LeadType != domain.LeadTypeOil || fry.Borough != "Haringey" || fry.Postcode != "N15" {
		t.Fatalf("unexpected oil lead: %#v", fry)
	}
	if fry.Category != "Takeaway" {
		t.Fatalf("expected Takeaway category, got %q", fry.Category)
	}

	if got := byName["Golden Wok"].Priority; got != domain.PriorityHigh {
		t.Fatalf("expected classification to fill missing priority, got %s", got)
	}
	kitchen := byName["The Corner Kitchen"]
	if kitchen.Priority != domain.PriorityMedium || kitchen.Category != "Restaurant" {
		t.Fatalf("unexpected classified row: %#v", kitchen)
	}
	if got := byName["Bloom Florists"].Priority; got != domain.PriorityLow {
		t.Fatalf("expected LOW priority preserved, got %s", got)
	}

	for _, b := range businesses {
		if b.Contacted || b.ContactedDate != "" || b.ContactNotes != "" {
			t.Fatalf("expected fresh imports un-contacted, got %#v", b)
		}
	}
}

func TestImportSkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "hackney_spice_businesses_1.csv", spiceCSV)
	writeDataFile(t, dir, "broken_oil_businesses_1.csv", "Oil Priority,Business Name\nHIGH,Solo,extra-field\n")

	businesses, err := importCSVFiles(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(businesses) != 3 {
		t.Fatalf("expected only the readable file's rows, got %d", len(businesses))
	}
}

func TestImportMissingDirErrors(t *testing.T) {
	if _, err := importCSVFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing data dir")
	}
}

func TestLeadTypeForFile(t *testing.T) {
	cases := []struct {
		path, want string
	}{
		{path: "data/hackney_spice_businesses_1.csv", want: domain.LeadTypeSpice},
		{path: "data/haringey/haringey_cooking_oil_businesses_.csv", want: domain.LeadTypeOil},
		{path: "data/high_priority_spice_businesses_1.csv", want: domain.LeadTypeSpice},
		{path: "data/london_businesses_1.csv", want: domain.LeadTypeGeneral},
	}
	for _, c := range cases {
		if got := leadTypeForFile(c.path); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.path, c.want, got)
		}
	}
}

func TestBoroughForFile(t *testing.T) {
	cases := []struct {
		path, want string
	}{
		{path: "data/hackney_spice_businesses_1.csv", want: "Hackney"},
		{path: "data/haringey/some_oil_businesses_1.csv", want: "Haringey"},
		{path: "data/Haringey/some_oil_businesses_1.csv", want: "Haringey"},
		{path: "data/westminster_general_businesses_1.csv", want: "Other"},
		{path: "out/HACKNEY/subdir/misc_businesses_backup.csv", want: "Hackney"},
	}
	for _, c := range cases {
		if got := boroughForFile(c.path); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.path, c.want, got)
		}
	}
}

func TestDistrict(t *testing.T) {
	cases := []struct {
		full, want string
	}{
		{full: "N15 4QD", want: "N15"},
		{full: "E8", want: "E8"},
		{full: " E9 6ND ", want: "E9"},
		{full: "", want: ""},
	}
	for _, c := range cases {
		if got := district(c.full); got != c.want {
			t.Fatalf("%q: expected %q, got %q", c.full, c.want, got)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{raw: "HIGH", want: domain.PriorityHigh},
		{raw: "high", want: domain.PriorityHigh},
		{raw: " Medium", want: domain.PriorityMedium},
		{raw: "low", want: domain.PriorityLow},
		{raw: "urgent", want: ""},
		{raw: "", want: ""},
	}
	for _, c := range cases {
		if got := normalizePriority(c.raw); got != c.want {
			t.Fatalf("%q: expected %q, got %q", c.raw, c.want, got)
		}
	}
}

func TestDedupeKeepsRichestRow(t *testing.T) {
	poor := domain.Business{Name: "Taj Spice", Address: "3 Kingsland High St, Dalston", Priority: domain.PriorityMedium}
	rich := domain.Business{Name: "TAJ SPICE", Address: "3 Kingsland High St", Priority: domain.PriorityHigh, Phone: "020", Website: "https://x"}
	other := domain.Business{Name: "Golden Fry", Address: "11 West Green Road"}

	out := dedupe([]domain.Business{poor, other, rich})
	if len(out) != 2 {
		t.Fatalf("expected 2 businesses, got %d", len(out))
	}
	if out[0].Phone != "020" {
		t.Fatalf("expected richer duplicate to replace first occurrence in place, got %#v", out[0])
	}
	if out[1].Name != "Golden Fry" {
		t.Fatalf("expected non-duplicate untouched, got %#v", out[1])
	}
}

func TestDedupeDistinctAddressesKept(t *testing.T) {
	a := domain.Business{Name: "Golden Fry", Address: "11 West Green Road"}
	b := domain.Business{Name: "Golden Fry", Address: "200 Seven Sisters Road"}

	if out := dedupe([]domain.Business{a, b}); len(out) != 2 {
		t.Fatalf("expected both branches kept, got %d", len(out))
	}
}
