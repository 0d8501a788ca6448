package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/ledger"
	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/ledger/repository"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/testutil"
	"github.com/jmoiron/sqlx"
)

func TestListMovementsAndSum(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSQLRepository(db)
	uc := NewLedgerUseCase(repo, logger.NewNop())
	ctx := context.Background()

	p1 := testutil.SeedPart(t, db, "PN-1", 0)
	p2 := testutil.SeedPart(t, db, "PN-2", 0)

	entries := []*model.Movement{
		ledger.NewEntry(p1.ID, model.MovementIn, "alice", 10, 10, model.ReferenceReceiving, "REC-260101-001"),
		ledger.NewEntry(p1.ID, model.MovementOut, "bob", 4, 6, model.ReferenceOutgoing, "OUT-20260101-0001"),
		ledger.NewEntry(p1.ID, model.MovementOut, "bob", 6, 0, model.ReferenceOutgoing, "OUT-20260101-0002"),
		ledger.NewEntry(p2.ID, model.MovementIn, "alice", 3, 3, "", ""),
	}
	err := database.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		for _, m := range entries {
			if err := repo.Append(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if entries[1].QuantityBefore != 10 || entries[0].QuantityBefore != 0 {
		t.Errorf("before quantities: %d %d", entries[0].QuantityBefore, entries[1].QuantityBefore)
	}

	tests := []struct {
		name  string
		f     dto.MovementFilters
		count int
	}{
		{"all", dto.MovementFilters{}, 4},
		{"by part", dto.MovementFilters{PartID: p1.ID}, 3},
		{"by type", dto.MovementFilters{MovementType: "out"}, 2},
		{"by pic", dto.MovementFilters{PIC: "alice"}, 2},
		{"by reference", dto.MovementFilters{ReferenceID: "OUT-20260101-0002"}, 1},
		{"paged", dto.MovementFilters{PageSize: 3, Page: 2}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, count, err := uc.ListMovements(ctx, &tt.f)
			if err != nil {
				t.Fatalf("ListMovements: %v", err)
			}
			if count != tt.count {
				t.Errorf("count = %d, want %d", count, tt.count)
			}
			if tt.name == "paged" && len(items) != 1 {
				t.Errorf("page 2 size = %d, want 1", len(items))
			}
		})
	}

	if _, _, err := uc.ListMovements(ctx, &dto.MovementFilters{MovementType: "sideways"}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("bad type: got %v", err)
	}

	out, err := uc.SumByType(ctx, p1.ID, model.MovementOut)
	if err != nil || out != 10 {
		t.Errorf("SumByType out = %d, %v", out, err)
	}
	in, _ := uc.SumByType(ctx, p2.ID, model.MovementOut)
	if in != 0 {
		t.Errorf("SumByType with no rows = %d", in)
	}
}
