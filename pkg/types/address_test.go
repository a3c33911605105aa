package types

import (
	"encoding/json"
	"testing"
)

func TestCoordinateCoercesStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`" -73.99 "`, -73.99},
		{`null`, 0},
		{`""`, 0},
	}
	for _, tc := range cases {
		var c Coordinate
		if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if float64(c) != tc.want {
			t.Fatalf("coordinate %s = %v, want %v", tc.raw, float64(c), tc.want)
		}
	}
}

func TestCoordinateRejectsGarbage(t *testing.T) {
	var c Coordinate
	if err := json.Unmarshal([]byte(`"north"`), &c); err == nil {
		t.Fatal("expected error for non-numeric coordinate")
	}
}

func TestAddressNormalizeDefaultsCountry(t *testing.T) {
	addr := Address{Line1: " 1 Market St ", City: "Oakland", State: "CA", PostalCode: "94607"}
	addr.Normalize()
	if addr.Country != "US" {
		t.Fatalf("country = %q, want US", addr.Country)
	}
	if addr.Line1 != "1 Market St" {
		t.Fatalf("line1 = %q", addr.Line1)
	}
}
