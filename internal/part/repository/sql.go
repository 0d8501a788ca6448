package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/part/dto"
	"github.com/jmoiron/sqlx"
)

const partColumns = `id, part_number, part_name, customer_code, supplier_code, model, variant,
	standard_packing, stock, address, is_active, created_at, updated_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, p *model.Part) error {
	query := `
        INSERT INTO parts (` + partColumns + `)
        VALUES (
            :id, :part_number, :part_name, :customer_code, :supplier_code, :model, :variant,
            :standard_packing, :stock, :address, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

// Update writes master fields. stock is deliberately absent from the SET list.
func (r *SQLRepository) Update(ctx context.Context, p *model.Part) error {
	query := `
        UPDATE parts SET
            part_name = :part_name,
            customer_code = :customer_code,
            supplier_code = :supplier_code,
            model = :model,
            variant = :variant,
            standard_packing = :standard_packing,
            address = :address,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the part does not exist.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Part, error) {
	return r.Get(ctx, r.DB, id)
}

// Get is FindByID on tx, without taking a row lock.
func (r *SQLRepository) Get(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Part, error) {
	return r.getOne(ctx, tx, `SELECT `+partColumns+` FROM parts WHERE id = ?`, id)
}

// FindByCode matches part number, customer code or supplier code exactly.
func (r *SQLRepository) FindByCode(ctx context.Context, code string) (*model.Part, error) {
	return r.getOne(ctx, r.DB, `
        SELECT `+partColumns+` FROM parts
        WHERE part_number = ? OR customer_code = ? OR supplier_code = ?
        ORDER BY CASE WHEN part_number = ? THEN 0 ELSE 1 END
        LIMIT 1`, code, code, code, code)
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.PartFilters) ([]model.Part, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		conditions = append(conditions, "(LOWER(part_number) LIKE ? OR LOWER(part_name) LIKE ? OR LOWER(customer_code) LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = ?")
		args = append(args, true)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT count(*) FROM parts"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count parts: %w", err)
	}

	query := "SELECT " + partColumns + " FROM parts" + whereClause + " ORDER BY part_number"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	parts := []model.Part{}
	if err := r.DB.SelectContext(ctx, &parts, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list parts: %w", err)
	}
	return parts, count, nil
}

// Search does a case-insensitive substring match over the codes and the name of active parts.
func (r *SQLRepository) Search(ctx context.Context, query string, limit int) ([]model.Part, error) {
	like := "%" + strings.ToLower(query) + "%"
	q := r.DB.Rebind(`
        SELECT ` + partColumns + ` FROM parts
        WHERE is_active = ? AND (
            LOWER(part_number) LIKE ? OR LOWER(part_name) LIKE ? OR
            LOWER(customer_code) LIKE ? OR LOWER(COALESCE(supplier_code, '')) LIKE ?
        )
        ORDER BY part_number
        LIMIT ?`)

	parts := []model.Part{}
	if err := r.DB.SelectContext(ctx, &parts, q, true, like, like, like, like, limit); err != nil {
		return nil, fmt.Errorf("search parts: %w", err)
	}
	return parts, nil
}

func (r *SQLRepository) IsPartNumberUnique(ctx context.Context, partNumber, excludeID string) (bool, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, r.DB.Rebind(`SELECT count(*) FROM parts WHERE part_number = ? AND id <> ?`), partNumber, excludeID)
	if err != nil {
		return false, fmt.Errorf("check part number: %w", err)
	}
	return count == 0, nil
}

// GetForUpdate reads the part under an exclusive row lock held until tx ends.
// Returns nil, nil when the part does not exist.
func (r *SQLRepository) GetForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Part, error) {
	return r.getOne(ctx, tx, `SELECT `+partColumns+` FROM parts WHERE id = ?`+database.ForUpdate(tx), id)
}

// Adjust applies delta to a part locked by GetForUpdate and returns it with the new stock.
// The conditional update refuses to go negative even if the caller skipped the lock.
func (r *SQLRepository) Adjust(ctx context.Context, tx sqlx.ExtContext, p *model.Part, delta int) (*model.Part, error) {
	if delta < 0 && p.Stock+delta < 0 {
		return nil, apperror.InsufficientStock(p.ID, p.PartNumber, p.Stock, -delta)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE parts SET stock = stock + ?, updated_at = ? WHERE id = ? AND stock + ? >= 0`),
		delta, now, p.ID, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if rows == 0 {
		return nil, apperror.InsufficientStock(p.ID, p.PartNumber, p.Stock, -delta)
	}

	p.Stock += delta
	p.UpdatedAt = now
	return p, nil
}

func (r *SQLRepository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*model.Part, error) {
	var p model.Part
	err := sqlx.GetContext(ctx, q, &p, r.DB.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return &p, nil
}
