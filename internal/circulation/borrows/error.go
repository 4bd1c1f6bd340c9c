package borrows

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model =====
//
// NO_COPIES_AVAILABLE と ALREADY_RETURNED は業務上の正常系に近い失敗。
// 呼び出し側が分岐する前提なので INTERNAL に丸めない。

type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
	CodeNoCopiesAvailable  Code = "NO_COPIES_AVAILABLE"
	CodeAlreadyReturned    Code = "ALREADY_RETURNED"
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

func ErrNoCopies() *APIError {
	return &APIError{Code: CodeNoCopiesAvailable, Message: "no copies available"}
}

func ErrAlreadyReturned() *APIError {
	return &APIError{Code: CodeAlreadyReturned, Message: "borrow is already returned"}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict, CodeNoCopiesAvailable, CodeAlreadyReturned:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
