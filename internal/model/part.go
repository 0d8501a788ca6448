package model

import "time"

type Part struct {
	ID              string    `db:"id" json:"id"`
	PartNumber      string    `db:"part_number" json:"part_number"`
	PartName        string    `db:"part_name" json:"part_name"`
	CustomerCode    string    `db:"customer_code" json:"customer_code"`
	SupplierCode    *string   `db:"supplier_code" json:"supplier_code"`
	Model           *string   `db:"model" json:"model"`
	Variant         *string   `db:"variant" json:"variant"`
	StandardPacking int       `db:"standard_packing" json:"standard_packing"`
	Stock           int       `db:"stock" json:"stock"` // on-hand, never negative
	Address         *string   `db:"address" json:"address"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultIssueQty is the quantity suggested when the part is scanned for dispatch.
func (p *Part) DefaultIssueQty() int {
	pack := p.StandardPacking
	if pack <= 0 {
		pack = 1
	}
	if p.Stock < pack {
		return p.Stock
	}
	return pack
}
