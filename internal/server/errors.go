package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/fekuna/rims-inventory-service/internal/apperror"
	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCCode(code apperror.Code) codes.Code {
	switch code {
	case apperror.CodeInsufficientStock, apperror.CodeBatchImmutable:
		return codes.FailedPrecondition
	case apperror.CodePartNotFound, apperror.CodeLineItemNotFound, apperror.CodeRequestNotFound, apperror.CodeBatchNotFound:
		return codes.NotFound
	case apperror.CodePartMismatch, apperror.CodeInvalidBatchIdentifier, apperror.CodeInvalidInput:
		return codes.InvalidArgument
	case apperror.CodeAlreadyRequested:
		return codes.AlreadyExists
	case apperror.CodeStorageFailure:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func HTTPStatus(code apperror.Code) int {
	switch GRPCCode(code) {
	case codes.FailedPrecondition, codes.AlreadyExists:
		return http.StatusConflict
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message renders err in locale. Untyped errors never leak their text.
func Message(locale string, err error) string {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = &apperror.Error{Code: apperror.CodeStorageFailure}
	}
	if msg := i18n.Translate(locale, string(appErr.Code), appErr.TemplateData()); msg != "" {
		return msg
	}
	return appErr.Error()
}

// ToStatus converts a use case error into a gRPC status in the caller's locale.
// Errors that already carry a status pass through.
func ToStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(GRPCCode(apperror.CodeOf(err)), Message(auth.GetLocale(ctx), err))
}
