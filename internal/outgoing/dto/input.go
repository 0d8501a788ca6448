package dto

// SubmitBatchInput leaves OutgoingNumber empty to have one generated.
type SubmitBatchInput struct {
	OutgoingNumber string      `json:"outgoing_number"`
	Actor          string      `json:"actor" validate:"required,max=64"`
	Items          []BatchItem `json:"items" validate:"required,min=1,dive"`
}

type BatchItem struct {
	PartID     string `json:"part_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
	LineItemID string `json:"line_item_id"`
}

type SupplyOneInput struct {
	LineItemID  string `json:"line_item_id" validate:"required"`
	ScannedCode string `json:"scanned_code" validate:"required"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
	Actor       string `json:"actor" validate:"required,max=64"`
}
