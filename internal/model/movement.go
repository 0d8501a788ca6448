package model

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

const (
	ReferenceOutgoing  = "outgoing"
	ReferenceReceiving = "receiving"
)

// Movement is one append-only ledger entry. Rows are never updated or deleted.
type Movement struct {
	ID             string       `db:"id" json:"id"`
	PartID         string       `db:"part_id" json:"part_id"`
	MovementType   MovementType `db:"movement_type" json:"movement_type"`
	PIC            string       `db:"pic" json:"pic"`
	Quantity       int          `db:"quantity" json:"quantity"`
	QuantityBefore int          `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int          `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string      `db:"reference_type" json:"reference_type"`
	ReferenceID    *string      `db:"reference_id" json:"reference_id"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
