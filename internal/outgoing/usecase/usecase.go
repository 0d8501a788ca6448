package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/ledger"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/numbering"
	"github.com/fekuna/rims-inventory-service/internal/outgoing"
	"github.com/fekuna/rims-inventory-service/internal/outgoing/dto"
	"github.com/fekuna/rims-inventory-service/internal/part"
	"github.com/fekuna/rims-inventory-service/internal/request"
	requestDto "github.com/fekuna/rims-inventory-service/internal/request/dto"
	"github.com/fekuna/rims-inventory-service/internal/tracing"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type outgoingUseCase struct {
	db       *sqlx.DB
	repo     outgoing.Repository
	parts    part.Repository
	ledger   ledger.Repository
	requests request.Repository
	tracker  request.Tracker
	numbers  *numbering.Generator
	loc      *time.Location
	logger   logger.ZapLogger
}

func NewOutgoingUseCase(
	db *sqlx.DB,
	repo outgoing.Repository,
	parts part.Repository,
	ledgerRepo ledger.Repository,
	requests request.Repository,
	tracker request.Tracker,
	numbers *numbering.Generator,
	loc *time.Location,
	log logger.ZapLogger,
) outgoing.UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &outgoingUseCase{
		db:       db,
		repo:     repo,
		parts:    parts,
		ledger:   ledgerRepo,
		requests: requests,
		tracker:  tracker,
		numbers:  numbers,
		loc:      loc,
		logger:   log,
	}
}

// SubmitBatch dispatches every item or none. Items are locked and applied in submission order.
func (uc *outgoingUseCase) SubmitBatch(ctx context.Context, input *dto.SubmitBatchInput) (_ *dto.BatchResult, err error) {
	ctx, span := tracing.Start(ctx, "outgoing.SubmitBatch",
		attribute.String("actor", input.Actor),
		attribute.Int("items", len(input.Items)))
	defer func() { tracing.End(span, err) }()

	if err := apperror.Validate(input); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(input.Items))
	for _, it := range input.Items {
		if seen[it.PartID] {
			return nil, apperror.InvalidInput("part "+it.PartID+" appears twice in the batch", nil)
		}
		seen[it.PartID] = true
	}

	now := time.Now().UTC()
	result := &dto.BatchResult{}

	err = database.WithTx(ctx, uc.db, func(tx *sqlx.Tx) error {
		number, err := uc.batchNumber(ctx, tx, input.OutgoingNumber, now)
		if err != nil {
			return err
		}
		result.OutgoingNumber = number

		for _, it := range input.Items {
			p, err := uc.lockPart(ctx, tx, it.PartID)
			if err != nil {
				return err
			}
			supply, err := uc.dispatch(ctx, tx, number, input.Actor, now, p, it.Quantity, it.LineItemID)
			if err != nil {
				return err
			}
			if supply != nil {
				result.Supplies = append(result.Supplies, *supply)
			}
			result.TotalItems++
			result.TotalQuantity += it.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail("submit batch", err, result.OutgoingNumber, input.Actor, batchPartIDs(input.Items))
	}

	span.SetAttributes(attribute.String("outgoing_number", result.OutgoingNumber))
	uc.logger.Info("outgoing batch dispatched",
		zap.String("outgoing_number", result.OutgoingNumber),
		zap.String("actor", input.Actor),
		zap.Int("total_items", result.TotalItems),
		zap.Int("total_quantity", result.TotalQuantity))
	return result, nil
}

// SupplyOne dispatches against a single line item after checking the scanned code.
func (uc *outgoingUseCase) SupplyOne(ctx context.Context, input *dto.SupplyOneInput) (_ *dto.SupplyOneResult, err error) {
	ctx, span := tracing.Start(ctx, "outgoing.SupplyOne",
		attribute.String("actor", input.Actor),
		attribute.String("line_item_id", input.LineItemID))
	defer func() { tracing.End(span, err) }()

	if err := apperror.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &dto.SupplyOneResult{Quantity: input.Quantity}

	err = database.WithTx(ctx, uc.db, func(tx *sqlx.Tx) error {
		// Part before line item, the same order SubmitBatch locks them in.
		peek, err := uc.requests.GetItem(ctx, tx, input.LineItemID)
		if err != nil {
			return err
		}
		if peek == nil {
			return apperror.LineItemNotFound(input.LineItemID)
		}
		p, err := uc.lockPart(ctx, tx, peek.PartID)
		if err != nil {
			return err
		}
		item, err := uc.tracker.LockLineItem(ctx, tx, input.LineItemID)
		if err != nil {
			return err
		}
		if item.PartID != p.ID {
			return apperror.InvalidInput("line item "+item.ID+" changed part while dispatching", nil)
		}
		if item.Status == model.LineItemFulfilled {
			return apperror.InvalidInput("line item "+item.ID+" is already fulfilled", nil)
		}

		scanned := strings.TrimSpace(input.ScannedCode)
		if !strings.EqualFold(scanned, p.PartNumber) {
			return apperror.PartMismatch(p.PartNumber, scanned)
		}

		number, err := uc.batchNumber(ctx, tx, "", now)
		if err != nil {
			return err
		}
		result.OutgoingNumber = number

		supply, err := uc.dispatch(ctx, tx, number, input.Actor, now, p, input.Quantity, item.ID)
		if err != nil {
			return err
		}
		result.PartID = p.ID
		result.RemainingStock = p.Stock
		result.Supply = supply
		return nil
	})
	if err != nil {
		return nil, uc.fail("supply one", err, result.OutgoingNumber, input.Actor, []string{result.PartID})
	}
	return result, nil
}

// PrepareItem resolves a scanned code to a dispatchable part and the oldest open line item for it.
func (uc *outgoingUseCase) PrepareItem(ctx context.Context, code string) (*dto.PreparedItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperror.InvalidInput("code is required", nil)
	}

	p, err := uc.parts.FindByCode(ctx, code)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if p == nil {
		return nil, apperror.PartNotFound(code)
	}
	if !p.IsActive {
		return nil, apperror.InvalidInput("part "+p.PartNumber+" is inactive", nil)
	}
	if p.Stock <= 0 {
		return nil, apperror.InsufficientStock(p.ID, p.PartNumber, p.Stock, 1)
	}

	item, err := uc.requests.OldestPendingItem(ctx, p.ID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &dto.PreparedItem{
		Part:         p,
		SuggestedQty: p.DefaultIssueQty(),
		LineItem:     item,
	}, nil
}

func (uc *outgoingUseCase) ListDispatches(ctx context.Context, filters *dto.DispatchFilters) ([]model.Outgoing, int, error) {
	items, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Storage(err)
	}
	return items, count, nil
}

// batchNumber validates a caller supplied number or issues the next one for today.
func (uc *outgoingUseCase) batchNumber(ctx context.Context, tx *sqlx.Tx, requested string, now time.Time) (string, error) {
	if requested == "" {
		return uc.numbers.NextFree(ctx, tx, numbering.Outgoing, now.In(uc.loc), func(n string) (bool, error) {
			return uc.repo.NumberExists(ctx, tx, n)
		})
	}
	if _, _, err := numbering.Outgoing.Parse(requested); err != nil {
		return "", apperror.InvalidBatchIdentifier(requested, err.Error())
	}
	used, err := uc.repo.NumberExists(ctx, tx, requested)
	if err != nil {
		return "", err
	}
	if used {
		return "", apperror.InvalidBatchIdentifier(requested, "already used")
	}
	return requested, nil
}

func (uc *outgoingUseCase) lockPart(ctx context.Context, tx *sqlx.Tx, partID string) (*model.Part, error) {
	p, err := uc.parts.GetForUpdate(ctx, tx, partID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.PartNotFound(partID)
	}
	return p, nil
}

// dispatch removes qty from a locked part and records the ledger entry, the outgoing row
// and, when linked, the supply against the line item.
func (uc *outgoingUseCase) dispatch(ctx context.Context, tx *sqlx.Tx, number, actor string, now time.Time, p *model.Part, qty int, lineItemID string) (*requestDto.SupplyResult, error) {
	if p.Stock < qty {
		return nil, apperror.InsufficientStock(p.ID, p.PartNumber, p.Stock, qty)
	}
	p, err := uc.parts.Adjust(ctx, tx, p, -qty)
	if err != nil {
		return nil, err
	}
	if err := uc.ledger.Append(ctx, tx, ledger.NewEntry(p.ID, model.MovementOut, actor, qty, p.Stock, model.ReferenceOutgoing, number)); err != nil {
		return nil, err
	}

	var supply *requestDto.SupplyResult
	o := &model.Outgoing{
		ID:             uuid.New().String(),
		OutgoingNumber: number,
		PartID:         p.ID,
		Quantity:       qty,
		DispatchedBy:   actor,
		DispatchedAt:   now,
		CreatedAt:      now,
	}
	if lineItemID != "" {
		supply, err = uc.tracker.RecordSupply(ctx, tx, lineItemID, p.ID, qty)
		if err != nil {
			return nil, err
		}
		o.RequestItemID = &lineItemID
	}
	if err := uc.repo.Insert(ctx, tx, o); err != nil {
		return nil, err
	}
	return supply, nil
}

// fail converts err for the caller and logs storage failures with the batch context.
func (uc *outgoingUseCase) fail(op string, err error, number, actor string, partIDs []string) error {
	err = apperror.Storage(err)
	if apperror.CodeOf(err) == apperror.CodeStorageFailure {
		uc.logger.Error(op+" failed",
			zap.String("outgoing_number", number),
			zap.String("actor", actor),
			zap.Strings("part_ids", partIDs),
			zap.Error(err))
	} else {
		uc.logger.Debug(op+" rejected", zap.String("actor", actor), zap.Error(err))
	}
	return err
}

func batchPartIDs(items []dto.BatchItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PartID
	}
	return ids
}
