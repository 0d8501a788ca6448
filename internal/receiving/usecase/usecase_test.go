package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	ledgerRepoPkg "github.com/fekuna/rims-inventory-service/internal/ledger/repository"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/numbering"
	partRepoPkg "github.com/fekuna/rims-inventory-service/internal/part/repository"
	"github.com/fekuna/rims-inventory-service/internal/receiving"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
	"github.com/fekuna/rims-inventory-service/internal/receiving/repository"
	"github.com/fekuna/rims-inventory-service/internal/testutil"
	"github.com/jmoiron/sqlx"
)

func setup(t *testing.T) (*sqlx.DB, receiving.UseCase) {
	t.Helper()
	db := testutil.NewDB(t)
	return db, newUseCase(db, numbering.NewGenerator(nil, 0, logger.NewNop()))
}

func newUseCase(db *sqlx.DB, numbers *numbering.Generator) receiving.UseCase {
	return NewReceivingUseCase(
		db,
		repository.NewSQLRepository(db),
		partRepoPkg.NewSQLRepository(db),
		ledgerRepoPkg.NewSQLRepository(db),
		numbers,
		time.UTC,
		logger.NewNop(),
	)
}

func TestDraftThenComplete(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 3)

	draft, err := uc.SaveDraft(ctx, &dto.BatchInput{
		SourceType: model.SourceInhouse,
		Actor:      "receiver-1",
		Items:      []dto.BatchItem{{PartID: p.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if _, _, err := numbering.ReceivingInhouse.Parse(draft.ReceivingNumber); err != nil {
		t.Fatalf("generated number %q: %v", draft.ReceivingNumber, err)
	}
	if got := testutil.Stock(t, db, p.ID); got != 3 {
		t.Errorf("stock after draft = %d, want 3", got)
	}
	if n := testutil.Count(t, db, `SELECT count(*) FROM receivings WHERE receiving_number = ? AND status = 'draft'`, draft.ReceivingNumber); n != 1 {
		t.Errorf("draft rows = %d, want 1", n)
	}
	if n := testutil.Count(t, db, `SELECT count(*) FROM movements`); n != 0 {
		t.Errorf("movements after draft = %d, want 0", n)
	}

	done, err := uc.CompleteBatch(ctx, &dto.BatchInput{
		ReceivingNumber: draft.ReceivingNumber,
		SourceType:      model.SourceInhouse,
		Actor:           "receiver-1",
		Items:           []dto.BatchItem{{PartID: p.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("CompleteBatch: %v", err)
	}
	if done.ReceivingNumber != draft.ReceivingNumber || done.Status != model.ReceivingCompleted {
		t.Errorf("result = %+v", done)
	}
	if got := testutil.Stock(t, db, p.ID); got != 7 {
		t.Errorf("stock after complete = %d, want 7", got)
	}
	if n := testutil.Count(t, db, `SELECT count(*) FROM receivings WHERE receiving_number = ?`, draft.ReceivingNumber); n != 1 {
		t.Errorf("rows after complete = %d, want 1", n)
	}

	var m model.Movement
	if err := db.Get(&m, `SELECT * FROM movements WHERE part_id = ?`, p.ID); err != nil {
		t.Fatalf("movement: %v", err)
	}
	if m.MovementType != model.MovementIn || m.Quantity != 4 || m.QuantityBefore != 3 || m.QuantityAfter != 7 {
		t.Errorf("movement = %+v", m)
	}
	if m.ReferenceType == nil || *m.ReferenceType != model.ReferenceReceiving || *m.ReferenceID != draft.ReceivingNumber {
		t.Errorf("movement reference = %v %v", m.ReferenceType, m.ReferenceID)
	}
}

func TestCompletedBatchIsImmutable(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 0)

	input := &dto.BatchInput{
		ReceivingNumber: "SJ-2024-000123",
		SourceType:      model.SourceSubcont,
		Actor:           "receiver-1",
		Items:           []dto.BatchItem{{PartID: p.ID, Quantity: 2}},
	}
	if _, err := uc.CompleteBatch(ctx, input); err != nil {
		t.Fatalf("CompleteBatch: %v", err)
	}

	before := testutil.Snapshot(t, db)
	if _, err := uc.CompleteBatch(ctx, input); !errors.Is(err, apperror.ErrBatchImmutable) {
		t.Errorf("second complete: got %v, want BatchImmutable", err)
	}
	if _, err := uc.SaveDraft(ctx, input); !errors.Is(err, apperror.ErrBatchImmutable) {
		t.Errorf("draft over completed: got %v, want BatchImmutable", err)
	}
	if err := uc.DeleteDraft(ctx, input.ReceivingNumber); !errors.Is(err, apperror.ErrBatchImmutable) {
		t.Errorf("delete completed: got %v, want BatchImmutable", err)
	}
	if err := uc.CancelDraft(ctx, input.ReceivingNumber); !errors.Is(err, apperror.ErrBatchImmutable) {
		t.Errorf("cancel completed: got %v, want BatchImmutable", err)
	}
	if after := testutil.Snapshot(t, db); after != before {
		t.Errorf("rejected calls changed state")
	}
	if got := testutil.Stock(t, db, p.ID); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
}

func TestResaveDraftReplacesRows(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p1 := testutil.SeedPart(t, db, "PN-1", 0)
	p2 := testutil.SeedPart(t, db, "PN-2", 0)

	number := "REC-240301-007"
	if _, err := uc.SaveDraft(ctx, &dto.BatchInput{
		ReceivingNumber: number,
		SourceType:      model.SourceInhouse,
		Actor:           "receiver-1",
		Items:           []dto.BatchItem{{PartID: p1.ID, Quantity: 1}, {PartID: p2.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("first SaveDraft: %v", err)
	}
	res, err := uc.SaveDraft(ctx, &dto.BatchInput{
		ReceivingNumber: number,
		SourceType:      model.SourceInhouse,
		Actor:           "receiver-2",
		Items:           []dto.BatchItem{{PartID: p2.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("second SaveDraft: %v", err)
	}
	if res.TotalItems != 1 || res.TotalQuantity != 5 {
		t.Errorf("result = %+v", res)
	}

	batch, err := uc.GetBatch(ctx, number)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(batch.Items) != 1 || batch.Items[0].PartID != p2.ID || batch.Items[0].Quantity != 5 || batch.ReceivedBy != "receiver-2" {
		t.Errorf("batch = %+v", batch)
	}
}

func TestDeleteAndCancelDraft(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 0)

	save := func(number string) {
		t.Helper()
		if _, err := uc.SaveDraft(ctx, &dto.BatchInput{
			ReceivingNumber: number,
			SourceType:      model.SourceSubcont,
			Actor:           "receiver-1",
			Items:           []dto.BatchItem{{PartID: p.ID, Quantity: 3}},
		}); err != nil {
			t.Fatalf("SaveDraft %s: %v", number, err)
		}
	}
	save("SUB-DELETE-0001")
	save("SUB-CANCEL-0001")

	if err := uc.DeleteDraft(ctx, "SUB-DELETE-0001"); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}
	if _, err := uc.GetBatch(ctx, "SUB-DELETE-0001"); !errors.Is(err, apperror.ErrBatchNotFound) {
		t.Errorf("deleted draft: got %v, want BatchNotFound", err)
	}
	if err := uc.DeleteDraft(ctx, "SUB-DELETE-0001"); !errors.Is(err, apperror.ErrBatchNotFound) {
		t.Errorf("second delete: got %v, want BatchNotFound", err)
	}

	if err := uc.CancelDraft(ctx, "SUB-CANCEL-0001"); err != nil {
		t.Fatalf("CancelDraft: %v", err)
	}
	batch, err := uc.GetBatch(ctx, "SUB-CANCEL-0001")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if batch.Status != model.ReceivingCancelled {
		t.Errorf("status = %s, want cancelled", batch.Status)
	}
	if got := testutil.Stock(t, db, p.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}

	list, count, err := uc.ListBatches(ctx, &dto.BatchFilters{Status: string(model.ReceivingCancelled)})
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if count != 1 || len(list) != 1 || list[0].ReceivingNumber != "SUB-CANCEL-0001" || list[0].TotalQuantity != 3 {
		t.Errorf("list = %+v (count %d)", list, count)
	}
}

func TestBatchValidation(t *testing.T) {
	db, uc := setup(t)
	p := testutil.SeedPart(t, db, "PN-1", 0)
	items := []dto.BatchItem{{PartID: p.ID, Quantity: 1}}

	tests := []struct {
		name  string
		input *dto.BatchInput
		want  error
	}{
		{
			name:  "subcont number too short",
			input: &dto.BatchInput{ReceivingNumber: "SJ-1", SourceType: model.SourceSubcont, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "subcont number missing",
			input: &dto.BatchInput{SourceType: model.SourceSubcont, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "inhouse number malformed",
			input: &dto.BatchInput{ReceivingNumber: "REC-2403-1", SourceType: model.SourceInhouse, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "subcont number with in-house prefix",
			input: &dto.BatchInput{ReceivingNumber: "REC-261016-SUPPLIERX", SourceType: model.SourceSubcont, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "subcont number with lower case in-house prefix",
			input: &dto.BatchInput{ReceivingNumber: "rec-261016-supplierx", SourceType: model.SourceSubcont, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "inhouse sequence too long",
			input: &dto.BatchInput{ReceivingNumber: "REC-240301-0001", SourceType: model.SourceInhouse, Actor: "u", Items: items},
			want:  apperror.ErrInvalidBatchIdentifier,
		},
		{
			name:  "unknown source",
			input: &dto.BatchInput{ReceivingNumber: "X", SourceType: "VENDOR", Actor: "u", Items: items},
			want:  apperror.ErrInvalidInput,
		},
		{
			name:  "no items",
			input: &dto.BatchInput{SourceType: model.SourceInhouse, Actor: "u"},
			want:  apperror.ErrInvalidInput,
		},
		{
			name:  "zero quantity",
			input: &dto.BatchInput{SourceType: model.SourceInhouse, Actor: "u", Items: []dto.BatchItem{{PartID: p.ID}}},
			want:  apperror.ErrInvalidInput,
		},
		{
			name:  "unknown part",
			input: &dto.BatchInput{SourceType: model.SourceInhouse, Actor: "u", Items: []dto.BatchItem{{PartID: "missing", Quantity: 1}}},
			want:  apperror.ErrPartNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.Snapshot(t, db)
			if _, err := uc.CompleteBatch(context.Background(), tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if after := testutil.Snapshot(t, db); after != before {
				t.Errorf("rejected batch changed state")
			}
		})
	}
}

func TestCompleteBatchMergesDuplicateParts(t *testing.T) {
	db, uc := setup(t)
	p := testutil.SeedPart(t, db, "PN-1", 1)

	res, err := uc.CompleteBatch(context.Background(), &dto.BatchInput{
		SourceType: model.SourceInhouse,
		Actor:      "receiver-1",
		Items:      []dto.BatchItem{{PartID: p.ID, Quantity: 2}, {PartID: p.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CompleteBatch: %v", err)
	}
	if res.TotalItems != 1 || res.TotalQuantity != 5 {
		t.Errorf("result = %+v", res)
	}
	if got := testutil.Stock(t, db, p.ID); got != 6 {
		t.Errorf("stock = %d, want 6", got)
	}
	if n := testutil.Count(t, db, `SELECT count(*) FROM movements WHERE part_id = ?`, p.ID); n != 1 {
		t.Errorf("movements = %d, want 1", n)
	}
}

func TestNextNumber(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 0)

	first, err := uc.NextNumber(ctx, model.SourceInhouse)
	if err != nil {
		t.Fatalf("NextNumber: %v", err)
	}
	if !strings.HasSuffix(first, "-001") {
		t.Errorf("first number = %q", first)
	}
	again, _ := uc.NextNumber(ctx, model.SourceInhouse)
	if again != first {
		t.Errorf("preview reserved a number: %q then %q", first, again)
	}

	res, err := uc.SaveDraft(ctx, &dto.BatchInput{
		SourceType: model.SourceInhouse,
		Actor:      "receiver-1",
		Items:      []dto.BatchItem{{PartID: p.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if res.ReceivingNumber != first {
		t.Errorf("saved as %q, preview was %q", res.ReceivingNumber, first)
	}
	next, _ := uc.NextNumber(ctx, model.SourceInhouse)
	if !strings.HasSuffix(next, "-002") {
		t.Errorf("next number = %q", next)
	}

	if _, err := uc.NextNumber(ctx, model.SourceSubcont); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("subcont preview: got %v, want InvalidInput", err)
	}
}

func TestGeneratedNumbersSkipForeignRows(t *testing.T) {
	db, uc := setup(t)
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 0)
	today := time.Now().UTC()

	// A subcontractor number that reuses the in-house day prefix, stored before such numbers were refused.
	legacy := numbering.ReceivingInhouse.DayPrefix(today) + "SUPPLIERX"
	_, err := db.Exec(`INSERT INTO receivings (id, receiving_number, source_type, part_id, quantity, received_by, received_at, status, created_at, updated_at)
		VALUES ('legacy-1', ?, 'SUBCONT', ?, 1, 'supplier', ?, 'draft', ?, ?)`, legacy, p.ID, today, today, today)
	if err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	save := func(actor string) string {
		t.Helper()
		res, err := uc.SaveDraft(ctx, &dto.BatchInput{
			SourceType: model.SourceInhouse,
			Actor:      actor,
			Items:      []dto.BatchItem{{PartID: p.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("SaveDraft(%s): %v", actor, err)
		}
		return res.ReceivingNumber
	}
	alice, bob := save("alice"), save("bob")
	if alice == bob {
		t.Fatalf("alice and bob both got %s", alice)
	}
	if alice != numbering.ReceivingInhouse.Format(today, 1) || bob != numbering.ReceivingInhouse.Format(today, 2) {
		t.Errorf("numbers = %s, %s", alice, bob)
	}
	for _, actor := range []string{"alice", "bob", "supplier"} {
		if n := testutil.Count(t, db, `SELECT count(*) FROM receivings WHERE received_by = ?`, actor); n != 1 {
			t.Errorf("%s rows = %d, want 1", actor, n)
		}
	}
}

func TestGeneratedNumberNeverReplacesSuppliedBatch(t *testing.T) {
	db := testutil.NewDB(t)
	rc, _ := testutil.NewRedis(t)
	uc := newUseCase(db, numbering.NewGenerator(rc, time.Hour, logger.NewNop()))
	ctx := context.Background()
	p := testutil.SeedPart(t, db, "PN-1", 0)
	today := time.Now().UTC()
	items := []dto.BatchItem{{PartID: p.ID, Quantity: 2}}

	first, err := uc.SaveDraft(ctx, &dto.BatchInput{SourceType: model.SourceInhouse, Actor: "first", Items: items})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if first.ReceivingNumber != numbering.ReceivingInhouse.Format(today, 1) {
		t.Fatalf("first = %s", first.ReceivingNumber)
	}

	// Typed in ahead of the counter.
	if _, err := uc.SaveDraft(ctx, &dto.BatchInput{
		ReceivingNumber: numbering.ReceivingInhouse.Format(today, 2),
		SourceType:      model.SourceInhouse,
		Actor:           "alice",
		Items:           items,
	}); err != nil {
		t.Fatalf("alice SaveDraft: %v", err)
	}
	if _, err := uc.CompleteBatch(ctx, &dto.BatchInput{
		ReceivingNumber: numbering.ReceivingInhouse.Format(today, 3),
		SourceType:      model.SourceInhouse,
		Actor:           "carol",
		Items:           items,
	}); err != nil {
		t.Fatalf("carol CompleteBatch: %v", err)
	}

	bob, err := uc.SaveDraft(ctx, &dto.BatchInput{SourceType: model.SourceInhouse, Actor: "bob", Items: items})
	if err != nil {
		t.Fatalf("bob SaveDraft: %v", err)
	}
	if want := numbering.ReceivingInhouse.Format(today, 4); bob.ReceivingNumber != want {
		t.Errorf("bob = %s, want %s", bob.ReceivingNumber, want)
	}
	if n := testutil.Count(t, db, `SELECT count(*) FROM receivings WHERE received_by = 'alice' AND status = 'draft'`); n != 1 {
		t.Errorf("alice draft rows = %d, want 1", n)
	}
	if got := testutil.Stock(t, db, p.ID); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
}
