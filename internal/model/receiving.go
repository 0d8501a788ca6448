package model

import "time"

type ReceivingStatus string

const (
	ReceivingDraft     ReceivingStatus = "draft"
	ReceivingCompleted ReceivingStatus = "completed"
	ReceivingCancelled ReceivingStatus = "cancelled"
)

type SourceType string

const (
	SourceInhouse SourceType = "INHOUSE"
	SourceSubcont SourceType = "SUBCONT"
)

// Receiving is one part line of a receipt batch. All rows of a batch share number and status.
type Receiving struct {
	ID              string          `db:"id" json:"id"`
	ReceivingNumber string          `db:"receiving_number" json:"receiving_number"`
	SourceType      SourceType      `db:"source_type" json:"source_type"`
	PartID          string          `db:"part_id" json:"part_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
	ReceivedBy      string          `db:"received_by" json:"received_by"`
	ReceivedAt      time.Time       `db:"received_at" json:"received_at"`
	Status          ReceivingStatus `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
