// Package apperror defines the typed failures the inventory engine reports to its callers.
package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInsufficientStock      Code = "insufficient_stock"
	CodePartNotFound           Code = "part_not_found"
	CodeLineItemNotFound       Code = "line_item_not_found"
	CodeRequestNotFound        Code = "request_not_found"
	CodePartMismatch           Code = "part_mismatch"
	CodeInvalidBatchIdentifier Code = "invalid_batch_identifier"
	CodeBatchNotFound          Code = "batch_not_found"
	CodeBatchImmutable         Code = "batch_immutable"
	CodeAlreadyRequested       Code = "already_requested"
	CodeInvalidInput           Code = "invalid_input"
	CodeStorageFailure         Code = "storage_failure"
)

// Error carries a Code plus whatever detail is known about the rejected item.
type Error struct {
	Code      Code
	PartID    string
	Reference string
	Available int
	Requested int
	Message   string
	Err       error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so errors.Is(err, ErrInsufficientStock) works for any instance.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may safely resubmit the whole operation.
func (e *Error) Retryable() bool {
	return e.Code == CodeStorageFailure
}

// TemplateData exposes the detail fields for localized messages.
func (e *Error) TemplateData() map[string]interface{} {
	return map[string]interface{}{
		"PartID":    e.PartID,
		"Reference": e.Reference,
		"Available": e.Available,
		"Requested": e.Requested,
		"Message":   e.Message,
	}
}

var (
	ErrInsufficientStock      = &Error{Code: CodeInsufficientStock}
	ErrPartNotFound           = &Error{Code: CodePartNotFound}
	ErrLineItemNotFound       = &Error{Code: CodeLineItemNotFound}
	ErrRequestNotFound        = &Error{Code: CodeRequestNotFound}
	ErrPartMismatch           = &Error{Code: CodePartMismatch}
	ErrInvalidBatchIdentifier = &Error{Code: CodeInvalidBatchIdentifier}
	ErrBatchNotFound          = &Error{Code: CodeBatchNotFound}
	ErrBatchImmutable         = &Error{Code: CodeBatchImmutable}
	ErrAlreadyRequested       = &Error{Code: CodeAlreadyRequested}
	ErrInvalidInput           = &Error{Code: CodeInvalidInput}
	ErrStorageFailure         = &Error{Code: CodeStorageFailure}
)

func InsufficientStock(partID, partNumber string, available, requested int) *Error {
	return &Error{
		Code:      CodeInsufficientStock,
		PartID:    partID,
		Reference: partNumber,
		Available: available,
		Requested: requested,
		Message:   fmt.Sprintf("part %s has %d on hand, %d requested", partNumber, available, requested),
	}
}

func PartNotFound(ref string) *Error {
	return &Error{Code: CodePartNotFound, PartID: ref, Reference: ref, Message: "part " + ref}
}

func LineItemNotFound(id string) *Error {
	return &Error{Code: CodeLineItemNotFound, Reference: id, Message: "line item " + id}
}

func RequestNotFound(id string) *Error {
	return &Error{Code: CodeRequestNotFound, Reference: id, Message: "request " + id}
}

func PartMismatch(expected, got string) *Error {
	return &Error{
		Code:      CodePartMismatch,
		Reference: got,
		Message:   fmt.Sprintf("scanned %q, expected %q", got, expected),
	}
}

func InvalidBatchIdentifier(number, reason string) *Error {
	return &Error{Code: CodeInvalidBatchIdentifier, Reference: number, Message: reason}
}

func BatchNotFound(number string) *Error {
	return &Error{Code: CodeBatchNotFound, Reference: number, Message: "batch " + number}
}

func BatchImmutable(number, status string) *Error {
	return &Error{Code: CodeBatchImmutable, Reference: number, Message: fmt.Sprintf("batch %s is %s", number, status)}
}

func AlreadyRequested(partID, destination string) *Error {
	return &Error{
		Code:      CodeAlreadyRequested,
		PartID:    partID,
		Reference: destination,
		Message:   fmt.Sprintf("part %s is already pending for %s", partID, destination),
	}
}

func InvalidInput(msg string, err error) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Err: err}
}

// Storage wraps a persistence failure. Typed errors pass through unchanged.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Code: CodeStorageFailure, Err: err}
}

// CodeOf returns the Code carried by err, or CodeStorageFailure for untyped errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStorageFailure
}
