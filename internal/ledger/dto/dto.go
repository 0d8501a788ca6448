package dto

import "time"

type MovementFilters struct {
	PartID       string     `form:"part_id"`
	MovementType string     `form:"type"`
	PIC          string     `form:"pic"`
	ReferenceID  string     `form:"reference_id"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}
