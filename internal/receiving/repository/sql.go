package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
	"github.com/jmoiron/sqlx"
)

const receivingColumns = `id, receiving_number, source_type, part_id, quantity, received_by, received_at, status, created_at, updated_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

// LockBatch returns every row of the batch under a row lock. Empty when the number is unused.
func (r *SQLRepository) LockBatch(ctx context.Context, tx sqlx.ExtContext, number string) ([]model.Receiving, error) {
	rows := []model.Receiving{}
	err := sqlx.SelectContext(ctx, tx, &rows,
		tx.Rebind(`SELECT `+receivingColumns+` FROM receivings WHERE receiving_number = ? ORDER BY id`+database.ForUpdate(tx)), number)
	if err != nil {
		return nil, fmt.Errorf("lock receiving batch: %w", err)
	}
	return rows, nil
}

func (r *SQLRepository) InsertRows(ctx context.Context, tx sqlx.ExtContext, rows []model.Receiving) error {
	for i := range rows {
		_, err := sqlx.NamedExecContext(ctx, tx, `
            INSERT INTO receivings (`+receivingColumns+`)
            VALUES (:id, :receiving_number, :source_type, :part_id, :quantity, :received_by, :received_at, :status, :created_at, :updated_at)
        `, &rows[i])
		if err != nil {
			return fmt.Errorf("insert receiving: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) DeleteBatch(ctx context.Context, tx sqlx.ExtContext, number string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM receivings WHERE receiving_number = ? AND status = ?`), number, model.ReceivingDraft)
	if err != nil {
		return fmt.Errorf("delete receiving batch: %w", err)
	}
	return nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, tx sqlx.ExtContext, number string, status model.ReceivingStatus) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE receivings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE receiving_number = ?`), status, number)
	if err != nil {
		return fmt.Errorf("update receiving status: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindBatch(ctx context.Context, number string) ([]model.Receiving, error) {
	rows := []model.Receiving{}
	err := r.DB.SelectContext(ctx, &rows,
		r.DB.Rebind(`SELECT `+receivingColumns+` FROM receivings WHERE receiving_number = ? ORDER BY created_at, id`), number)
	if err != nil {
		return nil, fmt.Errorf("get receiving batch: %w", err)
	}
	return rows, nil
}

func (r *SQLRepository) ListBatches(ctx context.Context, f *dto.BatchFilters) ([]dto.BatchSummary, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.SourceType != "" {
		conditions = append(conditions, "source_type = ?")
		args = append(args, f.SourceType)
	}
	if f.NumberPrefix != "" {
		conditions = append(conditions, "receiving_number LIKE ?")
		args = append(args, f.NumberPrefix+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count,
		r.DB.Rebind("SELECT count(DISTINCT receiving_number) FROM receivings"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count receiving batches: %w", err)
	}

	query := `
        SELECT receiving_number, source_type, status, received_by, received_at,
               count(*) AS total_items, SUM(quantity) AS total_quantity
        FROM receivings` + whereClause + `
        GROUP BY receiving_number, source_type, status, received_by, received_at
        ORDER BY received_at DESC, receiving_number DESC`
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []dto.BatchSummary{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list receiving batches: %w", err)
	}
	return items, count, nil
}
