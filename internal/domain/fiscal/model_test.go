package fiscal

import (
	"testing"
	"time"

	"rebanho/internal/core/apperror"
	"rebanho/internal/core/types"
)

func validDoc() *NotaFiscal {
	return &NotaFiscal{
		Number:           "NF-1001",
		IssueDate:        time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Direction:        types.DirectionInbound,
		Kind:             types.KindSemen,
		CounterpartyName: "Central Genetica Ltda",
		Tag:              "compra-semen",
		Items: []LineItem{
			{Kind: types.KindSemen, LineNo: 1, BullName: "Nelore FIV", Doses: 20, UnitPrice: price("15,00")},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NotaFiscal)
		ok     bool
	}{
		{"valid semen document", func(*NotaFiscal) {}, true},
		{"missing number", func(d *NotaFiscal) { d.Number = "" }, false},
		{"missing issue date", func(d *NotaFiscal) { d.IssueDate = time.Time{} }, false},
		{"bad direction", func(d *NotaFiscal) { d.Direction = "sideways" }, false},
		{"bad kind", func(d *NotaFiscal) { d.Kind = "tractor" }, false},
		{"missing counterparty", func(d *NotaFiscal) { d.CounterpartyName = "" }, false},
		{"no items", func(d *NotaFiscal) { d.Items = nil }, false},
		{"semen line without bull", func(d *NotaFiscal) { d.Items[0].BullName = "" }, false},
		{"semen line without doses", func(d *NotaFiscal) { d.Items[0].Doses = 0 }, false},
		{"negative price", func(d *NotaFiscal) { d.Items[0].UnitPrice = price("-1,00") }, false},
		{"animal line needs tag or batch", func(d *NotaFiscal) {
			d.Items[0] = LineItem{Kind: types.KindAnimal, LineNo: 1, UnitPrice: price("100,00")}
		}, false},
		{"animal batch line is fine", func(d *NotaFiscal) {
			d.Items[0] = LineItem{Kind: types.KindAnimal, LineNo: 1, BatchQuantity: 10, UnitPrice: price("100,00")}
		}, true},
		{"embryo line needs count", func(d *NotaFiscal) {
			d.Items[0] = LineItem{Kind: types.KindEmbryo, LineNo: 1, UnitPrice: price("100,00")}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(doc)
			err := doc.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if appErr, ok := apperror.AsAppError(err); !ok || appErr.Code != apperror.CodeValidation {
					t.Errorf("Validate() code = %v, want VALIDATION_ERROR", err)
				}
			}
		})
	}
}

func TestNormalizeDefaultsArrivalDate(t *testing.T) {
	doc := validDoc()
	doc.ArrivalDate = time.Time{}
	doc.Normalize()
	if !doc.ArrivalDate.Equal(doc.IssueDate) {
		t.Errorf("ArrivalDate = %v, want issue date %v", doc.ArrivalDate, doc.IssueDate)
	}
}

func TestNormalizeAssignsLineNumbersAndKind(t *testing.T) {
	doc := validDoc()
	doc.Items = append(doc.Items, LineItem{BullName: " Gir PO ", Doses: 5, UnitPrice: price("10,00")})
	doc.Normalize()

	if doc.Items[1].LineNo != 2 {
		t.Errorf("LineNo = %d, want 2", doc.Items[1].LineNo)
	}
	if doc.Items[1].Kind != types.KindSemen {
		t.Errorf("Kind = %s, want inherited semen", doc.Items[1].Kind)
	}
	if doc.Items[1].BullName != "Gir PO" {
		t.Errorf("BullName = %q, want trimmed", doc.Items[1].BullName)
	}
}

func TestIsRecipientIntake(t *testing.T) {
	doc := validDoc()
	if doc.IsRecipientIntake() {
		t.Error("plain inbound document must not be a recipient intake")
	}
	// The batch id alone does not make an intake; the flag does.
	doc.RecipientBatch = "Lote 3"
	if doc.IsRecipientIntake() {
		t.Error("a batch id without the flag must not make an intake")
	}
	doc.RecipientBatch = ""
	doc.RecipientIntake = true
	if !doc.IsRecipientIntake() {
		t.Error("flagged inbound document is an intake even without a batch id")
	}
	doc.Direction = types.DirectionOutbound
	if doc.IsRecipientIntake() {
		t.Error("outbound document is never a recipient intake")
	}
}
