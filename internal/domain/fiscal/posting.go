package fiscal

import (
	"fmt"

	"rebanho/internal/core/types"
	"rebanho/internal/domain/ledger"
)

// ClassifierInfo projects the document into what the ledger classifier
// looks at.
func (n *NotaFiscal) ClassifierInfo() ledger.DocumentInfo {
	return ledger.DocumentInfo{
		Number:            n.Number,
		Direction:         n.Direction,
		CounterpartyName:  n.CounterpartyName,
		CounterpartyTaxID: n.CounterpartyTaxID,
		Tag:               n.Tag,
	}
}

// BuildMovements expands the document into ledger movements, one per line,
// valued the same way the document total is. The tag comes from the
// classifier decision, not the raw document, so inferred tags post too.
func (n *NotaFiscal) BuildMovements(tag string) []ledger.Movement {
	movements := make([]ledger.Movement, 0, len(n.Items))
	for i := range n.Items {
		li := &n.Items[i]
		movements = append(movements, ledger.Movement{
			DocumentNumber: n.Number,
			Direction:      n.Direction,
			MovementDate:   n.IssueDate,
			Amount:         LineAmount(*li).Round(2),
			Description:    movementDescription(n, li),
			Tag:            tag,
			Extras:         movementExtras(n, li),
		})
	}
	return movements
}

// movementExtras carries enough of the source line to reconcile a posted
// movement without opening the document: the number, the counterparty and
// the kind-specific quantities.
func movementExtras(n *NotaFiscal, li *LineItem) ledger.Extras {
	extras := ledger.Extras{
		"document_number":    n.Number,
		"counterparty_name":  n.CounterpartyName,
		"counterparty_taxid": n.CounterpartyTaxID,
		"line_no":            li.LineNo,
		"kind":               string(li.Kind),
		"unit_price":         li.UnitPrice.StringFixed(2),
	}
	switch li.Kind {
	case types.KindAnimal:
		if li.EarringTag != "" {
			extras["earring_tag"] = li.EarringTag
		}
		if li.BatchQuantity > 0 {
			extras["batch_quantity"] = li.BatchQuantity
		}
	case types.KindSemen:
		extras["bull_name"] = li.BullName
		extras["doses"] = li.Doses
	case types.KindEmbryo:
		extras["embryos"] = li.Embryos
	}
	return extras
}

func movementDescription(n *NotaFiscal, li *LineItem) string {
	subject := li.Description
	if subject == "" {
		switch {
		case li.EarringTag != "":
			subject = li.EarringTag
		case li.BullName != "":
			subject = fmt.Sprintf("%s x%d doses", li.BullName, li.Doses)
		case li.Embryos > 0:
			subject = fmt.Sprintf("%d embryos", li.Embryos)
		default:
			subject = string(li.Kind)
		}
	}
	return fmt.Sprintf("NF %s - %s - %s", n.Number, n.CounterpartyName, subject)
}
