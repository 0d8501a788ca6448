package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const movementColumns = `id, part_id, movement_type, pic, quantity, quantity_before, quantity_after,
	reference_type, reference_id, created_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Append(ctx context.Context, tx sqlx.ExtContext, m *model.Movement) error {
	query := `
        INSERT INTO movements (` + movementColumns + `)
        VALUES (
            :id, :part_id, :movement_type, :pic, :quantity, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :created_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, tx, query, m)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.Movement, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.PartID != "" {
		conditions = append(conditions, "part_id = ?")
		args = append(args, f.PartID)
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = ?")
		args = append(args, f.MovementType)
	}
	if f.PIC != "" {
		conditions = append(conditions, "pic = ?")
		args = append(args, f.PIC)
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = ?")
		args = append(args, f.ReferenceID)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, f.EndDate.UTC())
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT count(*) FROM movements"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := "SELECT " + movementColumns + " FROM movements" + whereClause + " ORDER BY created_at DESC, id DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []model.Movement{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return items, count, nil
}

func (r *SQLRepository) SumByType(ctx context.Context, partID string, movementType model.MovementType) (int, error) {
	var sum int
	err := r.DB.GetContext(ctx, &sum,
		r.DB.Rebind(`SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE part_id = ? AND movement_type = ?`),
		partID, movementType)
	if err != nil {
		return 0, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}
