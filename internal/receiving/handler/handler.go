package handler

import (
	"context"

	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/model"
	"github.com/fekuna/rims-inventory-service/internal/receiving"
	"github.com/fekuna/rims-inventory-service/internal/receiving/dto"
	"github.com/fekuna/rims-inventory-service/internal/server"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const serviceName = "rims.v1.ReceivingService"

type BatchNumberRequest struct {
	ReceivingNumber string `json:"receiving_number"`
}

type ListBatchesResponse struct {
	Batches []dto.BatchSummary `json:"batches"`
	Total   int32              `json:"total"`
}

type NextNumberRequest struct {
	SourceType model.SourceType `json:"source_type"`
}

type NextNumberResponse struct {
	ReceivingNumber string `json:"receiving_number"`
}

type ReceivingHandler struct {
	uc     receiving.UseCase
	logger logger.ZapLogger
}

func NewReceivingHandler(uc receiving.UseCase, log logger.ZapLogger) *ReceivingHandler {
	return &ReceivingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReceivingHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(server.Service(serviceName,
		server.Unary(serviceName, "SaveDraft", h.SaveDraft),
		server.Unary(serviceName, "CompleteBatch", h.CompleteBatch),
		server.Unary(serviceName, "DeleteDraft", h.DeleteDraft),
		server.Unary(serviceName, "CancelDraft", h.CancelDraft),
		server.Unary(serviceName, "GetBatch", h.GetBatch),
		server.Unary(serviceName, "ListBatches", h.ListBatches),
		server.Unary(serviceName, "NextNumber", h.NextNumber),
	), h)
}

func (h *ReceivingHandler) SaveDraft(ctx context.Context, req *dto.BatchInput) (*dto.BatchResult, error) {
	req.Actor = auth.GetActor(ctx)
	return h.uc.SaveDraft(ctx, req)
}

func (h *ReceivingHandler) CompleteBatch(ctx context.Context, req *dto.BatchInput) (*dto.BatchResult, error) {
	req.Actor = auth.GetActor(ctx)
	return h.uc.CompleteBatch(ctx, req)
}

func (h *ReceivingHandler) DeleteDraft(ctx context.Context, req *BatchNumberRequest) (*emptypb.Empty, error) {
	if err := h.uc.DeleteDraft(ctx, req.ReceivingNumber); err != nil {
		return nil, err
	}
	h.logger.Info("draft deleted by caller",
		zap.String("receiving_number", req.ReceivingNumber),
		zap.String("actor", auth.GetActor(ctx)))
	return &emptypb.Empty{}, nil
}

func (h *ReceivingHandler) CancelDraft(ctx context.Context, req *BatchNumberRequest) (*emptypb.Empty, error) {
	if err := h.uc.CancelDraft(ctx, req.ReceivingNumber); err != nil {
		return nil, err
	}
	h.logger.Info("draft cancelled by caller",
		zap.String("receiving_number", req.ReceivingNumber),
		zap.String("actor", auth.GetActor(ctx)))
	return &emptypb.Empty{}, nil
}

func (h *ReceivingHandler) GetBatch(ctx context.Context, req *BatchNumberRequest) (*dto.Batch, error) {
	return h.uc.GetBatch(ctx, req.ReceivingNumber)
}

func (h *ReceivingHandler) ListBatches(ctx context.Context, req *dto.BatchFilters) (*ListBatchesResponse, error) {
	batches, count, err := h.uc.ListBatches(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ListBatchesResponse{Batches: batches, Total: int32(count)}, nil
}

func (h *ReceivingHandler) NextNumber(ctx context.Context, req *NextNumberRequest) (*NextNumberResponse, error) {
	number, err := h.uc.NextNumber(ctx, req.SourceType)
	if err != nil {
		return nil, err
	}
	return &NextNumberResponse{ReceivingNumber: number}, nil
}
