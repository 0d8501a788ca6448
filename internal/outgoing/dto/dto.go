package dto

import (
	"github.com/fekuna/rims-inventory-service/internal/model"
	requestDto "github.com/fekuna/rims-inventory-service/internal/request/dto"
)

type DispatchFilters struct {
	OutgoingNumber string `form:"outgoing_number"`
	PartID         string `form:"part_id"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

type BatchResult struct {
	OutgoingNumber string                    `json:"outgoing_number"`
	TotalItems     int                       `json:"total_items"`
	TotalQuantity  int                       `json:"total_quantity"`
	Supplies       []requestDto.SupplyResult `json:"supplies,omitempty"`
}

type SupplyOneResult struct {
	OutgoingNumber string                   `json:"outgoing_number"`
	PartID         string                   `json:"part_id"`
	Quantity       int                      `json:"quantity"`
	RemainingStock int                      `json:"remaining_stock"`
	Supply         *requestDto.SupplyResult `json:"supply"`
}

// PreparedItem is what the dispatch screen stages after a scan.
type PreparedItem struct {
	Part         *model.Part            `json:"part"`
	SuggestedQty int                    `json:"suggested_qty"`
	LineItem     *model.RequestLineItem `json:"line_item,omitempty"`
}
