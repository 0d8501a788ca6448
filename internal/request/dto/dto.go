package dto

import "github.com/fekuna/rims-inventory-service/internal/model"

type RequestFilters struct {
	Status      string `form:"status"`
	Destination string `form:"destination"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// SupplyResult describes the line item and request after one supply was recorded.
type SupplyResult struct {
	LineItemID    string               `json:"line_item_id"`
	RequestID     string               `json:"request_id"`
	SuppliedQty   int                  `json:"supplied_qty"`
	LineStatus    model.LineItemStatus `json:"line_status"`
	RequestStatus model.RequestStatus  `json:"request_status"`
}
