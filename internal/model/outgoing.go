package model

import "time"

// Outgoing is one dispatched part inside a batch. (outgoing_number, part_id) is unique.
type Outgoing struct {
	ID             string    `db:"id" json:"id"`
	OutgoingNumber string    `db:"outgoing_number" json:"outgoing_number"`
	PartID         string    `db:"part_id" json:"part_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	RequestItemID  *string   `db:"request_item_id" json:"request_item_id"`
	DispatchedBy   string    `db:"dispatched_by" json:"dispatched_by"`
	DispatchedAt   time.Time `db:"dispatched_at" json:"dispatched_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
