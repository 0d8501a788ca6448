package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/testutil"
	"github.com/jmoiron/sqlx"
)

func TestAdjust(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	ctx := context.Background()
	seeded := testutil.SeedPart(t, db, "PN-1", 5)

	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		p, err := repo.GetForUpdate(ctx, tx, seeded.ID)
		if err != nil {
			return err
		}
		p, err = repo.Adjust(ctx, tx, p, -3)
		if err != nil {
			return err
		}
		if p.Stock != 2 {
			t.Errorf("stock after -3 = %d", p.Stock)
		}
		_, err = repo.Adjust(ctx, tx, p, 4)
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if got := testutil.Stock(t, db, seeded.ID); got != 6 {
		t.Errorf("stored stock = %d, want 6", got)
	}
}

func TestAdjustRejectsNegative(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	ctx := context.Background()
	seeded := testutil.SeedPart(t, db, "PN-1", 5)

	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		p, err := repo.GetForUpdate(ctx, tx, seeded.ID)
		if err != nil {
			return err
		}
		_, err = repo.Adjust(ctx, tx, p, -6)
		return err
	})
	var appErr *apperror.Error
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if appErr.Available != 5 || appErr.Requested != 6 || appErr.PartID != seeded.ID {
		t.Errorf("unexpected detail: %+v", appErr)
	}

	// A stale in-memory copy must still be refused by the conditional update.
	err = database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		p, _ := repo.GetForUpdate(ctx, tx, seeded.ID)
		p.Stock = 100
		_, err := repo.Adjust(ctx, tx, p, -50)
		return err
	})
	if !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("stale copy: expected insufficient stock, got %v", err)
	}
	if got := testutil.Stock(t, db, seeded.ID); got != 5 {
		t.Errorf("stock changed to %d", got)
	}
}

func TestGetForUpdateMissing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSQLRepository(db)
	ctx := context.Background()

	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		p, err := repo.GetForUpdate(ctx, tx, "nope")
		if err != nil {
			return err
		}
		if p != nil {
			t.Errorf("expected nil part, got %+v", p)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
