package dto

import (
	"time"

	"github.com/fekuna/rims-inventory-service/internal/model"
)

// BatchInput may leave ReceivingNumber empty for INHOUSE batches to have one generated.
type BatchInput struct {
	ReceivingNumber string           `json:"receiving_number" validate:"max=64"`
	SourceType      model.SourceType `json:"source_type" validate:"required,oneof=INHOUSE SUBCONT"`
	Actor           string           `json:"actor" validate:"required,max=64"`
	ReceivedAt      *time.Time       `json:"received_at"`
	Items           []BatchItem      `json:"items" validate:"required,min=1,dive"`
}

type BatchItem struct {
	PartID   string `json:"part_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}
