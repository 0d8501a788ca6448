package handler

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/outgoing"
	"github.com/fekuna/rims-inventory-service/internal/outgoing/dto"
	"github.com/fekuna/rims-inventory-service/internal/server"
	"google.golang.org/grpc"
)

const serviceName = "rims.v1.OutgoingService"

type PrepareItemRequest struct {
	Code string `json:"code"`
}

type ListDispatchesRequest struct {
	OutgoingNumber string `json:"outgoing_number"`
	PartID         string `json:"part_id"`
	Page           int32  `json:"page"`
	PageSize       int32  `json:"page_size"`
}

type ListDispatchesResponse struct {
	Dispatches []model.Outgoing `json:"dispatches"`
	Total      int32            `json:"total"`
}

type OutgoingHandler struct {
	uc     outgoing.UseCase
	logger logger.ZapLogger
}

func NewOutgoingHandler(uc outgoing.UseCase, log logger.ZapLogger) *OutgoingHandler {
	return &OutgoingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OutgoingHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(server.Service(serviceName,
		server.Unary(serviceName, "SubmitBatch", h.SubmitBatch),
		server.Unary(serviceName, "SupplyOne", h.SupplyOne),
		server.Unary(serviceName, "PrepareItem", h.PrepareItem),
		server.Unary(serviceName, "ListDispatches", h.ListDispatches),
	), h)
}

// SubmitBatch always dispatches as the authenticated caller.
func (h *OutgoingHandler) SubmitBatch(ctx context.Context, req *dto.SubmitBatchInput) (*dto.BatchResult, error) {
	req.Actor = auth.GetActor(ctx)
	return h.uc.SubmitBatch(ctx, req)
}

func (h *OutgoingHandler) SupplyOne(ctx context.Context, req *dto.SupplyOneInput) (*dto.SupplyOneResult, error) {
	req.Actor = auth.GetActor(ctx)
	return h.uc.SupplyOne(ctx, req)
}

func (h *OutgoingHandler) PrepareItem(ctx context.Context, req *PrepareItemRequest) (*dto.PreparedItem, error) {
	return h.uc.PrepareItem(ctx, req.Code)
}

func (h *OutgoingHandler) ListDispatches(ctx context.Context, req *ListDispatchesRequest) (*ListDispatchesResponse, error) {
	filters := &dto.DispatchFilters{
		OutgoingNumber: req.OutgoingNumber,
		PartID:         req.PartID,
		Page:           int(req.Page),
		PageSize:       int(req.PageSize),
	}
	items, count, err := h.uc.ListDispatches(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &ListDispatchesResponse{Dispatches: items, Total: int32(count)}, nil
}
