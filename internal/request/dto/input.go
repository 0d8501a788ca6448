package dto

import "time"

type CreateRequestInput struct {
	Destination string            `json:"destination" validate:"required,max=100"`
	RequestedBy string            `json:"requested_by" validate:"required,max=64"`
	RequestedAt *time.Time        `json:"requested_at"`
	Items       []CreateItemInput `json:"items" validate:"required,min=1,dive"`
}

type CreateItemInput struct {
	PartID   string `json:"part_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	IsUrgent bool   `json:"is_urgent"`
}
