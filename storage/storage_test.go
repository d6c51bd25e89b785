package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jerryola1/evergreen/domain"
)

func TestDecodeBusinessEntity(t *testing.T) {
	data := []byte(`{"PartitionKey":"business","RowKey":"Taj Spice","Name":"Taj Spice","Priority":"HIGH","LeadType":"Spice","Borough":"Hackney","Postcode":"E8","Address":"12 Mare St","Phone":"020 1111","Latitude":51.5461,"Longitude":-0.0554,"Contacted":true,"ContactedDate":"2026-02-01","ContactNotes":"spoke to owner"}`)
	b, err := decodeBusinessEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Name != "Taj Spice" || b.Priority != "HIGH" || b.Borough != "Hackney" || b.Phone != "020 1111" {
		t.Fatalf("unexpected business: %#v", b)
	}
	if b.Latitude == nil || *b.Latitude != 51.5461 || b.Longitude == nil || *b.Longitude != -0.0554 {
		t.Fatalf("unexpected coordinates: %#v", b)
	}
	if !b.Contacted || b.ContactedDate != "2026-02-01" || b.ContactNotes != "spoke to owner" {
		t.Fatalf("unexpected contact fields: %#v", b)
	}
}

func TestDecodeBusinessEntityFallsBackToRowKey(t *testing.T) {
	data := []byte(`{"PartitionKey":"business","RowKey":"Golden Fry","Priority":"MEDIUM"}`)
	b, err := decodeBusinessEntity(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Name != "Golden Fry" {
		t.Fatalf("expected row key fallback, got %q", b.Name)
	}
	if b.Latitude != nil || b.Longitude != nil {
		t.Fatalf("expected absent coordinates to stay nil: %#v", b)
	}
}

func TestEncodeBusinessEntityKeysAndColumnTypes(t *testing.T) {
	lat, lon := 51.5887, -0.0727
	ent := encodeBusinessEntity(domain.Business{Name: "Fish & Chips #1", Priority: "HIGH", Borough: "Haringey", Latitude: &lat, Longitude: &lon})
	if ent.PartitionKey != businessPartition {
		t.Fatalf("unexpected partition key: %q", ent.PartitionKey)
	}
	if ent.RowKey != "Fish & Chips -1" {
		t.Fatalf("unexpected row key: %q", ent.RowKey)
	}
	if ent.Name != "Fish & Chips #1" {
		t.Fatalf("expected display name preserved, got %q", ent.Name)
	}
	if ent.LatitudeType != edmDouble || ent.LongitudeType != edmDouble {
		t.Fatalf("expected double annotations: %#v", ent)
	}

	plain := encodeBusinessEntity(domain.Business{Name: "Corner Cafe"})
	if plain.LatitudeType != "" || plain.LongitudeType != "" {
		t.Fatalf("expected no annotations without coordinates: %#v", plain)
	}
}

func TestRowKeyForName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Taj Spice", "Taj Spice"},
		{"A/B\\C#D?E", "A-B-C-D-E"},
		{"Nando's", "Nando's"},
	}
	for _, c := range cases {
		if got := rowKeyForName(c.in); got != c.want {
			t.Fatalf("rowKeyForName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestContactUpdateEntityStampsAndClearsDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ent := contactUpdateEntity("Taj Spice", domain.ContactUpdate{Contacted: true, Notes: "call back monday"}, now)
	if ent.PartitionKey != businessPartition || ent.RowKey != "Taj Spice" {
		t.Fatalf("unexpected keys: %#v", ent.Entity)
	}
	if !ent.Contacted || ent.ContactedDate != "2026-03-01" || ent.ContactNotes != "call back monday" {
		t.Fatalf("unexpected payload: %#v", ent)
	}

	cleared := contactUpdateEntity("Taj Spice", domain.ContactUpdate{Contacted: false}, now)
	if cleared.Contacted || cleared.ContactedDate != "" || cleared.ContactNotes != "" {
		t.Fatalf("expected cleared contact fields: %#v", cleared)
	}
}

func TestContactUpdatePayloadAlwaysWritesAllColumns(t *testing.T) {
	// Merge mode only touches provided columns, so clearing depends on the
	// date and notes being serialized even when empty.
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(contactUpdateEntity("Taj Spice", domain.ContactUpdate{Contacted: false}, now))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, col := range []string{"\"Contacted\":false", "\"ContactedDate\":\"\"", "\"ContactNotes\":\"\""} {
		if !strings.Contains(string(payload), col) {
			t.Fatalf("expected %s in payload, got %s", col, payload)
		}
	}
}
