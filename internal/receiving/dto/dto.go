package dto

import (
	"time"

	"github.com/fekuna/rims-inventory-service/internal/model"
)

type BatchFilters struct {
	Status       string `form:"status" json:"status"`
	SourceType   string `form:"source_type" json:"source_type"`
	NumberPrefix string `form:"number" json:"number_prefix"`
	Page         int    `form:"page" json:"page"`
	PageSize     int    `form:"page_size" json:"page_size"`
}

type BatchResult struct {
	ReceivingNumber string                `json:"receiving_number"`
	Status          model.ReceivingStatus `json:"status"`
	TotalItems      int                   `json:"total_items"`
	TotalQuantity   int                   `json:"total_quantity"`
}

type Batch struct {
	ReceivingNumber string                `json:"receiving_number"`
	SourceType      model.SourceType      `json:"source_type"`
	Status          model.ReceivingStatus `json:"status"`
	ReceivedBy      string                `json:"received_by"`
	ReceivedAt      time.Time             `json:"received_at"`
	Items           []model.Receiving     `json:"items"`
}

type BatchSummary struct {
	ReceivingNumber string                `db:"receiving_number" json:"receiving_number"`
	SourceType      model.SourceType      `db:"source_type" json:"source_type"`
	Status          model.ReceivingStatus `db:"status" json:"status"`
	ReceivedBy      string                `db:"received_by" json:"received_by"`
	ReceivedAt      time.Time             `db:"received_at" json:"received_at"`
	TotalItems      int                   `db:"total_items" json:"total_items"`
	TotalQuantity   int                   `db:"total_quantity" json:"total_quantity"`
}
