package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/outgoing/dto"
	"github.com/jmoiron/sqlx"
)

const outgoingColumns = `id, outgoing_number, part_id, quantity, request_item_id, dispatched_by, dispatched_at, created_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Insert(ctx context.Context, tx sqlx.ExtContext, o *model.Outgoing) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
        INSERT INTO outgoings (`+outgoingColumns+`)
        VALUES (:id, :outgoing_number, :part_id, :quantity, :request_item_id, :dispatched_by, :dispatched_at, :created_at)
    `, o)
	if err != nil {
		return fmt.Errorf("insert outgoing: %w", err)
	}
	return nil
}

func (r *SQLRepository) NumberExists(ctx context.Context, tx sqlx.ExtContext, number string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, tx, &count, tx.Rebind(`SELECT count(*) FROM outgoings WHERE outgoing_number = ?`), number)
	if err != nil {
		return false, fmt.Errorf("check outgoing number: %w", err)
	}
	return count > 0, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.DispatchFilters) ([]model.Outgoing, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.OutgoingNumber != "" {
		conditions = append(conditions, "outgoing_number = ?")
		args = append(args, f.OutgoingNumber)
	}
	if f.PartID != "" {
		conditions = append(conditions, "part_id = ?")
		args = append(args, f.PartID)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT count(*) FROM outgoings"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count outgoings: %w", err)
	}

	query := "SELECT " + outgoingColumns + " FROM outgoings" + whereClause + " ORDER BY dispatched_at DESC, outgoing_number DESC, id"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []model.Outgoing{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list outgoings: %w", err)
	}
	return items, count, nil
}
