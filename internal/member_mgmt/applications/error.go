package applications

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model（circulation側と同型のコード付きエラー） =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"

	// カードログイン専用。外側が出し分けに使うので1つにまとめない
	CodeNoCredential        Code = "NO_CREDENTIAL"
	CodeInvalidCredential   Code = "INVALID_CREDENTIAL"
	CodeNotApprovedPending  Code = "NOT_APPROVED_PENDING"
	CodeNotApprovedRejected Code = "NOT_APPROVED_REJECTED"
	CodeNotApproved         Code = "NOT_APPROVED"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrNoCredential() *APIError {
	return &APIError{Code: CodeNoCredential, Message: "no card password registered"}
}

func ErrInvalidCredential() *APIError {
	return &APIError{Code: CodeInvalidCredential, Message: "card number or password is wrong"}
}

func ErrNotApproved(status string) *APIError {
	switch status {
	case StatusPending:
		return &APIError{Code: CodeNotApprovedPending, Message: "application is still pending"}
	case StatusRejected:
		return &APIError{Code: CodeNotApprovedRejected, Message: "application was rejected"}
	default:
		return &APIError{Code: CodeNotApproved, Message: "application is not approved"}
	}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNoCredential, CodeInvalidCredential:
			return http.StatusUnauthorized
		case CodeNotApprovedPending, CodeNotApprovedRejected, CodeNotApproved:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
