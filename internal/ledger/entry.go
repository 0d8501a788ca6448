package ledger

import (
	"time"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/google/uuid"
)

// NewEntry builds the movement for an adjustment of qty that left the part at resultingQty.
func NewEntry(partID string, direction model.MovementType, actor string, qty, resultingQty int, refType, refID string) *model.Movement {
	before := resultingQty + qty
	if direction == model.MovementIn {
		before = resultingQty - qty
	}
	m := &model.Movement{
		ID:             uuid.New().String(),
		PartID:         partID,
		MovementType:   direction,
		PIC:            actor,
		Quantity:       qty,
		QuantityBefore: before,
		QuantityAfter:  resultingQty,
		CreatedAt:      time.Now().UTC(),
	}
	if refType != "" {
		m.ReferenceType = &refType
	}
	if refID != "" {
		m.ReferenceID = &refID
	}
	return m
}
