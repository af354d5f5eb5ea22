package types

import (
	"encoding/json"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain decimal", "15.00", "15"},
		{"decimal comma", "15,00", "15"},
		{"thousands dot with comma", "1.234,56", "1234.56"},
		{"millions", "1.234.567,89", "1234567.89"},
		{"currency prefix", "R$ 2.500,00", "2500"},
		{"integer", "300", "300"},
		{"garbage normalizes to zero", "n/a", "0"},
		{"empty", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if got.Decimal.String() != tt.want {
				t.Errorf("ParsePrice(%q) = %s, want %s", tt.in, got.Decimal.String(), tt.want)
			}
		})
	}
}

func TestPriceUnmarshalJSON(t *testing.T) {
	var doc struct {
		Price Price `json:"price"`
	}

	if err := json.Unmarshal([]byte(`{"price": "1.250,50"}`), &doc); err != nil {
		t.Fatalf("unmarshal string price: %v", err)
	}
	if doc.Price.Decimal.String() != "1250.5" {
		t.Errorf("string price = %s, want 1250.5", doc.Price.Decimal.String())
	}

	if err := json.Unmarshal([]byte(`{"price": 42.75}`), &doc); err != nil {
		t.Fatalf("unmarshal numeric price: %v", err)
	}
	if doc.Price.Decimal.String() != "42.75" {
		t.Errorf("numeric price = %s, want 42.75", doc.Price.Decimal.String())
	}

	if err := json.Unmarshal([]byte(`{"price": null}`), &doc); err != nil {
		t.Fatalf("unmarshal null price: %v", err)
	}
	if !doc.Price.Decimal.IsZero() {
		t.Errorf("null price = %s, want 0", doc.Price.Decimal.String())
	}
}
