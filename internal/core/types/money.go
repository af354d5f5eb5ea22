// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a monetary amount submitted by clients. Documents arrive with
// prices either as JSON numbers or as pt-BR formatted strings
// ("1.234,56": thousands dot, decimal comma). Unparseable input
// normalizes to zero rather than failing document ingestion.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal as a Price.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// ParsePrice parses a localized or plain decimal string. Returns zero on
// any input it cannot make sense of.
func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{Decimal: decimal.Zero}
	}

	// Currency prefixes occasionally leak in from imports ("R$ 1.234,56").
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))

	if strings.Contains(s, ",") {
		// pt-BR format: dots are thousands separators, comma is the
		// decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{Decimal: decimal.Zero}
	}
	return Price{Decimal: d}
}

// MarshalJSON encodes the price as a JSON number with two decimal places.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a localized string.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			p.Decimal = decimal.Zero
			return nil
		}
		*p = ParsePrice(s)
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		p.Decimal = decimal.Zero
		return nil
	}
	p.Decimal = d
	return nil
}
