// Package testutil opens throwaway sqlite databases with the service schema and seeds fixtures.
package testutil

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/rims-inventory-service/internal/cache"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.NewDatabase(&database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "rims.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewRedis starts an in-process redis server for the test and returns a client bound to it.
func NewRedis(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewFromClient(rdb), srv
}

// SeedPart inserts an active part with the given stock and a standard packing of 10.
func SeedPart(t *testing.T, db *sqlx.DB, partNumber string, stock int) *model.Part {
	t.Helper()
	now := time.Now().UTC()
	p := &model.Part{
		ID:              uuid.New().String(),
		PartNumber:      partNumber,
		PartName:        "Part " + partNumber,
		CustomerCode:    "C-" + partNumber,
		StandardPacking: 10,
		Stock:           stock,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err := db.NamedExec(`INSERT INTO parts (id, part_number, part_name, customer_code, supplier_code, model, variant,
		standard_packing, stock, address, is_active, created_at, updated_at)
		VALUES (:id, :part_number, :part_name, :customer_code, :supplier_code, :model, :variant,
		:standard_packing, :stock, :address, :is_active, :created_at, :updated_at)`, p)
	if err != nil {
		t.Fatalf("seed part %s: %v", partNumber, err)
	}
	return p
}

type ItemSeed struct {
	PartID   string
	Quantity int
	Urgent   bool
}

// SeedRequest inserts a pending request with one pending line item per seed.
func SeedRequest(t *testing.T, db *sqlx.DB, destination string, requestedAt time.Time, items ...ItemSeed) *model.Request {
	t.Helper()
	now := time.Now().UTC()
	r := &model.Request{
		ID:          uuid.New().String(),
		Destination: destination,
		Status:      model.RequestPending,
		RequestedBy: "tester",
		RequestedAt: requestedAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.NamedExec(`INSERT INTO requests (id, destination, status, requested_by, requested_at, created_at, updated_at)
		VALUES (:id, :destination, :status, :requested_by, :requested_at, :created_at, :updated_at)`, r)
	if err != nil {
		t.Fatalf("seed request: %v", err)
	}
	for _, it := range items {
		li := model.RequestLineItem{
			ID:        uuid.New().String(),
			RequestID: r.ID,
			PartID:    it.PartID,
			Quantity:  it.Quantity,
			IsUrgent:  it.Urgent,
			Status:    model.LineItemPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, err := db.NamedExec(`INSERT INTO request_items (id, request_id, part_id, quantity, supplied_qty, is_urgent, status, created_at, updated_at)
			VALUES (:id, :request_id, :part_id, :quantity, :supplied_qty, :is_urgent, :status, :created_at, :updated_at)`, li)
		if err != nil {
			t.Fatalf("seed request item: %v", err)
		}
		r.Items = append(r.Items, li)
	}
	return r
}

func Stock(t *testing.T, db *sqlx.DB, partID string) int {
	t.Helper()
	var stock int
	if err := db.Get(&stock, `SELECT stock FROM parts WHERE id = ?`, partID); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func Count(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.Get(&n, query, args...); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func RequestStatus(t *testing.T, db *sqlx.DB, requestID string) model.RequestStatus {
	t.Helper()
	var s model.RequestStatus
	if err := db.Get(&s, `SELECT status FROM requests WHERE id = ?`, requestID); err != nil {
		t.Fatalf("read request status: %v", err)
	}
	return s
}

// Snapshot serializes every row of the stock-bearing tables so two states can be compared exactly.
func Snapshot(t *testing.T, db *sqlx.DB) string {
	t.Helper()
	out := map[string][]map[string]interface{}{}
	for _, table := range []string{"parts", "movements", "outgoings", "receivings", "request_items", "requests"} {
		rows, err := db.Queryx(`SELECT * FROM ` + table + ` ORDER BY id`)
		if err != nil {
			t.Fatalf("snapshot %s: %v", table, err)
		}
		for rows.Next() {
			row := map[string]interface{}{}
			if err := rows.MapScan(row); err != nil {
				rows.Close()
				t.Fatalf("snapshot %s: %v", table, err)
			}
			for k, v := range row {
				if b, ok := v.([]byte); ok {
					row[k] = string(b)
				}
			}
			out[table] = append(out[table], row)
		}
		rows.Close()
	}
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("snapshot marshal: %v", err)
	}
	return string(b)
}
