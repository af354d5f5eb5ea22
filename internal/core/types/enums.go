package types

// Direction marks a document as an inbound (purchase/intake) or outbound
// (sale/transfer-out) operation. Wire values keep the pt-BR terms used by
// the farm's paperwork.
type Direction string

const (
	DirectionInbound  Direction = "entrada"
	DirectionOutbound Direction = "saida"
)

// Valid reports whether the direction is one of the known values.
func (d Direction) Valid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// ProductKind discriminates what a document (or one of its line items)
// moves: live animals, semen doses, or embryos.
type ProductKind string

const (
	KindAnimal ProductKind = "animal"
	KindSemen  ProductKind = "semen"
	KindEmbryo ProductKind = "embryo"
)

// Valid reports whether the kind is one of the known values.
func (k ProductKind) Valid() bool {
	return k == KindAnimal || k == KindSemen || k == KindEmbryo
}
