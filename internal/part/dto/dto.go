package dto

type PartFilters struct {
	Query      string
	ActiveOnly bool
	Page       int
	PageSize   int
}
