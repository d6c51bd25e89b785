package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func ptrFloat64(f float64) *float64 { return &f }

func TestBusinessMarshalOmitsAbsentOptionals(t *testing.T) {
	b := Business{Name: "Taj Spice", Priority: PriorityHigh, LeadType: LeadTypeSpice, Borough: "Hackney", Postcode: "E8", Address: "12 Mare St"}

	payload, err := sonic.Marshal(b)
	if err != nil {
		t.Fatalf("marshal business: %v", err)
	}
	s := string(payload)
	if strings.Contains(s, "phone") || strings.Contains(s, "latitude") || strings.Contains(s, "contactedDate") {
		t.Fatalf("expected absent optionals to be omitted, got %s", s)
	}
	if !strings.Contains(s, "\"contacted\":false") {
		t.Fatalf("expected contacted flag to always be present, got %s", s)
	}
}

func TestBusinessMarshalKeepsCoordinatePair(t *testing.T) {
	b := Business{Name: "Golden Fry", Latitude: ptrFloat64(51.5461), Longitude: ptrFloat64(-0.0554)}

	payload, err := sonic.Marshal(b)
	if err != nil {
		t.Fatalf("marshal business: %v", err)
	}
	s := string(payload)
	if !strings.Contains(s, "\"latitude\":51.5461") || !strings.Contains(s, "\"longitude\":-0.0554") {
		t.Fatalf("expected both coordinates, got %s", s)
	}
}

func TestSnapshotCountNilSafe(t *testing.T) {
	var snap *Snapshot
	if snap.Count() != 0 {
		t.Fatalf("expected 0 for nil snapshot")
	}
	snap = &Snapshot{Businesses: []Business{{Name: "A"}, {Name: "B"}}}
	if snap.Count() != 2 {
		t.Fatalf("expected 2, got %d", snap.Count())
	}
}
