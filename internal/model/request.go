package model

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestPartial   RequestStatus = "partial"
	RequestFulfilled RequestStatus = "fulfilled"
)

// Rank orders request statuses along their one-way lifecycle.
func (s RequestStatus) Rank() int {
	switch s {
	case RequestPartial:
		return 1
	case RequestFulfilled:
		return 2
	default:
		return 0
	}
}

// Active requests still have something left to supply.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestPartial
}

type LineItemStatus string

const (
	LineItemPending   LineItemStatus = "pending"
	LineItemFulfilled LineItemStatus = "fulfilled"
)

type Request struct {
	ID          string            `db:"id" json:"id"`
	Destination string            `db:"destination" json:"destination"`
	Status      RequestStatus     `db:"status" json:"status"`
	RequestedBy string            `db:"requested_by" json:"requested_by"`
	RequestedAt time.Time         `db:"requested_at" json:"requested_at"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
	Items       []RequestLineItem `db:"-" json:"items"`
}

type RequestLineItem struct {
	ID          string         `db:"id" json:"id"`
	RequestID   string         `db:"request_id" json:"request_id"`
	PartID      string         `db:"part_id" json:"part_id"`
	Quantity    int            `db:"quantity" json:"quantity"`
	SuppliedQty int            `db:"supplied_qty" json:"supplied_qty"`
	IsUrgent    bool           `db:"is_urgent" json:"is_urgent"`
	Status      LineItemStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// QueueItem is a pending line item joined with its part and request, as shown on the supply board.
type QueueItem struct {
	ItemID      string    `db:"item_id" json:"item_id"`
	RequestID   string    `db:"request_id" json:"request_id"`
	PartID      string    `db:"part_id" json:"part_id"`
	PartNumber  string    `db:"part_number" json:"part_number"`
	PartName    string    `db:"part_name" json:"part_name"`
	Address     *string   `db:"address" json:"address"`
	Stock       int       `db:"stock" json:"stock"`
	Quantity    int       `db:"quantity" json:"quantity"`
	SuppliedQty int       `db:"supplied_qty" json:"supplied_qty"`
	IsUrgent    bool      `db:"is_urgent" json:"is_urgent"`
	Destination string    `db:"destination" json:"destination"`
	RequestedAt time.Time `db:"requested_at" json:"requested_at"`
	Urgency     string    `db:"-" json:"urgency"`
}
