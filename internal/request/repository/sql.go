package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/jmoiron/sqlx"
)

const (
	requestColumns = `id, destination, status, requested_by, requested_at, created_at, updated_at`
	itemColumns    = `id, request_id, part_id, quantity, supplied_qty, is_urgent, status, created_at, updated_at`
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, tx sqlx.ExtContext, req *model.Request) error {
	_, err := sqlx.NamedExecContext(ctx, tx, `
        INSERT INTO requests (`+requestColumns+`)
        VALUES (:id, :destination, :status, :requested_by, :requested_at, :created_at, :updated_at)
    `, req)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	for i := range req.Items {
		_, err := sqlx.NamedExecContext(ctx, tx, `
            INSERT INTO request_items (`+itemColumns+`)
            VALUES (:id, :request_id, :part_id, :quantity, :supplied_qty, :is_urgent, :status, :created_at, :updated_at)
        `, &req.Items[i])
		if err != nil {
			return fmt.Errorf("insert request item: %w", err)
		}
	}
	return nil
}

// FindByID loads a request with its items. Returns nil, nil when it does not exist.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Request, error) {
	var req model.Request
	err := r.DB.GetContext(ctx, &req, r.DB.Rebind(`SELECT `+requestColumns+` FROM requests WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}

	req.Items = []model.RequestLineItem{}
	err = r.DB.SelectContext(ctx, &req.Items,
		r.DB.Rebind(`SELECT `+itemColumns+` FROM request_items WHERE request_id = ? ORDER BY created_at, id`), id)
	if err != nil {
		return nil, fmt.Errorf("get request items: %w", err)
	}
	return &req, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.RequestFilters) ([]model.Request, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.Destination != "" {
		conditions = append(conditions, "destination = ?")
		args = append(args, f.Destination)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind("SELECT count(*) FROM requests"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	query := "SELECT " + requestColumns + " FROM requests" + whereClause + " ORDER BY requested_at DESC, id"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	items := []model.Request{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	return items, count, nil
}

// HasActivePending reports whether partID still waits for supply on an open request to destination.
func (r *SQLRepository) HasActivePending(ctx context.Context, tx sqlx.ExtContext, partID, destination string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, tx, &count, tx.Rebind(`
        SELECT count(*) FROM request_items ri
        JOIN requests r ON r.id = ri.request_id
        WHERE ri.part_id = ? AND ri.status = ? AND r.destination = ? AND r.status IN (?, ?)
    `), partID, model.LineItemPending, destination, model.RequestPending, model.RequestPartial)
	if err != nil {
		return false, fmt.Errorf("check pending request: %w", err)
	}
	return count > 0, nil
}

// PendingQueue lists unfulfilled items, urgent first and then oldest request first.
func (r *SQLRepository) PendingQueue(ctx context.Context, limit int) ([]model.QueueItem, error) {
	query := `
        SELECT ri.id AS item_id, ri.request_id, ri.part_id, p.part_number, p.part_name, p.address, p.stock,
               ri.quantity, ri.supplied_qty, ri.is_urgent, r.destination, r.requested_at
        FROM request_items ri
        JOIN requests r ON r.id = ri.request_id
        JOIN parts p ON p.id = ri.part_id
        WHERE ri.status = ? AND r.status IN (?, ?)
        ORDER BY ri.is_urgent DESC, r.requested_at ASC, ri.id
    `
	args := []interface{}{model.LineItemPending, model.RequestPending, model.RequestPartial}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	items := []model.QueueItem{}
	if err := r.DB.SelectContext(ctx, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("pending queue: %w", err)
	}
	return items, nil
}

// OldestPendingItem returns nil, nil when no open request waits for partID.
func (r *SQLRepository) OldestPendingItem(ctx context.Context, partID string) (*model.RequestLineItem, error) {
	var item model.RequestLineItem
	err := r.DB.GetContext(ctx, &item, r.DB.Rebind(`
        SELECT ri.id, ri.request_id, ri.part_id, ri.quantity, ri.supplied_qty, ri.is_urgent, ri.status,
               ri.created_at, ri.updated_at
        FROM request_items ri
        JOIN requests r ON r.id = ri.request_id
        WHERE ri.part_id = ? AND ri.status = ? AND r.status IN (?, ?)
        ORDER BY r.requested_at ASC, ri.id
        LIMIT 1
    `), partID, model.LineItemPending, model.RequestPending, model.RequestPartial)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("oldest pending item: %w", err)
	}
	return &item, nil
}

// GetItem reads a line item without locking it. It returns nil, nil when the item does not exist.
func (r *SQLRepository) GetItem(ctx context.Context, tx sqlx.ExtContext, id string) (*model.RequestLineItem, error) {
	return r.getItem(ctx, tx, id, "")
}

// GetItemForUpdate returns nil, nil when the line item does not exist.
func (r *SQLRepository) GetItemForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.RequestLineItem, error) {
	return r.getItem(ctx, tx, id, database.ForUpdate(tx))
}

func (r *SQLRepository) getItem(ctx context.Context, tx sqlx.ExtContext, id, lock string) (*model.RequestLineItem, error) {
	var item model.RequestLineItem
	err := sqlx.GetContext(ctx, tx, &item,
		tx.Rebind(`SELECT `+itemColumns+` FROM request_items WHERE id = ?`+lock), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read request item: %w", err)
	}
	return &item, nil
}

func (r *SQLRepository) UpdateItemSupply(ctx context.Context, tx sqlx.ExtContext, item *model.RequestLineItem) error {
	item.UpdatedAt = time.Now().UTC()
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE request_items SET supplied_qty = ?, status = ?, updated_at = ? WHERE id = ?`),
		item.SuppliedQty, item.Status, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("update request item: %w", err)
	}
	return nil
}

// GetForUpdate locks the request row. Returns nil, nil when it does not exist.
func (r *SQLRepository) GetForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (*model.Request, error) {
	var req model.Request
	err := sqlx.GetContext(ctx, tx, &req,
		tx.Rebind(`SELECT `+requestColumns+` FROM requests WHERE id = ?`+database.ForUpdate(tx)), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}
	return &req, nil
}

func (r *SQLRepository) ItemStatuses(ctx context.Context, tx sqlx.ExtContext, requestID string) ([]model.LineItemStatus, error) {
	statuses := []model.LineItemStatus{}
	err := sqlx.SelectContext(ctx, tx, &statuses,
		tx.Rebind(`SELECT status FROM request_items WHERE request_id = ?`), requestID)
	if err != nil {
		return nil, fmt.Errorf("request item statuses: %w", err)
	}
	return statuses, nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, tx sqlx.ExtContext, id string, status model.RequestStatus) error {
	_, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`),
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}
