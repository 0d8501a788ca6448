package handler

import (
	"context"
	"time"

	"github.com/fekuna/rims-inventory-service/internal/ledger"
	"github.com/fekuna/rims-inventory-service/internal/ledger/dto"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/server"
	"google.golang.org/grpc"
)

const serviceName = "rims.v1.LedgerService"

type ListMovementsRequest struct {
	PartID       string     `json:"part_id"`
	MovementType string     `json:"movement_type"`
	PIC          string     `json:"pic"`
	ReferenceID  string     `json:"reference_id"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Page         int32      `json:"page"`
	PageSize     int32      `json:"page_size"`
}

type ListMovementsResponse struct {
	Movements []model.Movement `json:"movements"`
	Total     int32            `json:"total"`
}

type SumByTypeRequest struct {
	PartID       string             `json:"part_id"`
	MovementType model.MovementType `json:"movement_type"`
}

type SumByTypeResponse struct {
	Total int32 `json:"total"`
}

type LedgerHandler struct {
	uc     ledger.UseCase
	logger logger.ZapLogger
}

func NewLedgerHandler(uc ledger.UseCase, log logger.ZapLogger) *LedgerHandler {
	return &LedgerHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LedgerHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(server.Service(serviceName,
		server.Unary(serviceName, "ListMovements", h.ListMovements),
		server.Unary(serviceName, "SumByType", h.SumByType),
	), h)
}

func (h *LedgerHandler) ListMovements(ctx context.Context, req *ListMovementsRequest) (*ListMovementsResponse, error) {
	filters := &dto.MovementFilters{
		PartID:       req.PartID,
		MovementType: req.MovementType,
		PIC:          req.PIC,
		ReferenceID:  req.ReferenceID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Page:         int(req.Page),
		PageSize:     int(req.PageSize),
	}

	movements, count, err := h.uc.ListMovements(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &ListMovementsResponse{Movements: movements, Total: int32(count)}, nil
}

func (h *LedgerHandler) SumByType(ctx context.Context, req *SumByTypeRequest) (*SumByTypeResponse, error) {
	total, err := h.uc.SumByType(ctx, req.PartID, req.MovementType)
	if err != nil {
		return nil, err
	}
	return &SumByTypeResponse{Total: int32(total)}, nil
}
