package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"

	"rebanho/internal/core/types"
)

func price(s string) types.Price {
	return types.ParsePrice(s)
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{
			name: "animal per head",
			item: LineItem{Kind: types.KindAnimal, EarringTag: "RPT-101", UnitPrice: price("2.500,00")},
			want: "2500",
		},
		{
			name: "animal batch",
			item: LineItem{Kind: types.KindAnimal, BatchQuantity: 12, UnitPrice: price("1.800,00")},
			want: "21600",
		},
		{
			name: "semen doses",
			item: LineItem{Kind: types.KindSemen, BullName: "Nelore FIV", Doses: 20, UnitPrice: price("15,00")},
			want: "300",
		},
		{
			name: "embryos",
			item: LineItem{Kind: types.KindEmbryo, Embryos: 5, UnitPrice: price("450,00")},
			want: "2250",
		},
		{
			name: "zero price stays zero",
			item: LineItem{Kind: types.KindSemen, Doses: 100, UnitPrice: price("não informado")},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(tt.item)
			if got.String() != tt.want {
				t.Errorf("LineAmount() = %s, want %s", got.String(), tt.want)
			}
		})
	}
}

func TestComputeTotal(t *testing.T) {
	items := []LineItem{
		{Kind: types.KindSemen, Doses: 20, UnitPrice: price("15,00")},
		{Kind: types.KindAnimal, EarringTag: "RPT-7", UnitPrice: price("1.234,56")},
	}

	total := ComputeTotal(items)
	want := decimal.RequireFromString("1534.56")
	if !total.Equal(want) {
		t.Errorf("ComputeTotal() = %s, want %s", total, want)
	}
}

func TestComputeTotalRounding(t *testing.T) {
	// 3 doses at 0.335 each: 1.005 rounds to 1.01.
	items := []LineItem{
		{Kind: types.KindSemen, Doses: 3, UnitPrice: types.Price{Decimal: decimal.RequireFromString("0.335")}},
	}
	total := ComputeTotal(items)
	if total.String() != "1.01" {
		t.Errorf("ComputeTotal() = %s, want 1.01", total)
	}
}

func TestComputeTotalEmpty(t *testing.T) {
	if total := ComputeTotal(nil); !total.IsZero() {
		t.Errorf("ComputeTotal(nil) = %s, want 0", total)
	}
}
