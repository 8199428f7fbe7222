package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeValidation   ErrCode = "validation_error"
	CodeNotFound     ErrCode = "not_found"
	CodeForbidden    ErrCode = "forbidden"
	CodeInvalidState ErrCode = "invalid_state"

	CodeNotAuthenticated         ErrCode = "not_authenticated"
	CodeCatalogUnavailable       ErrCode = "catalog_unavailable"
	CodeRelationStoreUnavailable ErrCode = "relation_store_unavailable"
	CodeDanglingReference        ErrCode = "dangling_reference"
	CodeChatUnavailable          ErrCode = "chat_unavailable"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string

	// Err is the underlying cause; kept out of responses.
	Err error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if len(e.Meta) > 0 {
		msg = fmt.Sprintf("%s (%v)", msg, e.Meta)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code ErrCode) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error     { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) error    { return &AppError{Code: CodeForbidden, Message: msg} }
func ErrInvalidState(msg string) error { return &AppError{Code: CodeInvalidState, Message: msg} }

func ErrNotAuthenticated(msg string) error {
	return &AppError{Code: CodeNotAuthenticated, Message: msg}
}

func ErrCatalogUnavailable(cause error) error {
	return &AppError{Code: CodeCatalogUnavailable, Message: "event catalog unavailable", Err: cause}
}

func ErrRelationStoreUnavailable(cause error) error {
	return &AppError{Code: CodeRelationStoreUnavailable, Message: "saved events store unavailable", Err: cause}
}

func ErrChatUnavailable(cause error) error {
	return &AppError{Code: CodeChatUnavailable, Message: "chat unavailable", Err: cause}
}

func ErrDanglingReference(userID, eventID string) error {
	return &AppError{
		Code:    CodeDanglingReference,
		Message: "saved event no longer exists",
		Meta:    map[string]string{"user_id": userID, "event_id": eventID},
	}
}
