package dto

type CreatePartInput struct {
	PartNumber      string `json:"part_number" validate:"required,max=100"`
	PartName        string `json:"part_name" validate:"required,max=255"`
	CustomerCode    string `json:"customer_code" validate:"required,max=100"`
	SupplierCode    string `json:"supplier_code" validate:"max=100"`
	Model           string `json:"model" validate:"max=100"`
	Variant         string `json:"variant" validate:"max=100"`
	StandardPacking int    `json:"standard_packing" validate:"gte=0"`
	Address         string `json:"address" validate:"max=100"`
}

// UpdatePartInput edits master data only. Stock changes go through dispatch and receiving.
type UpdatePartInput struct {
	ID              string `json:"id" validate:"required"`
	PartName        string `json:"part_name" validate:"required,max=255"`
	CustomerCode    string `json:"customer_code" validate:"required,max=100"`
	SupplierCode    string `json:"supplier_code" validate:"max=100"`
	Model           string `json:"model" validate:"max=100"`
	Variant         string `json:"variant" validate:"max=100"`
	StandardPacking int    `json:"standard_packing" validate:"gte=0"`
	Address         string `json:"address" validate:"max=100"`
	IsActive        *bool  `json:"is_active"`
}
