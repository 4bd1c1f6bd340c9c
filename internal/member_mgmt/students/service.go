package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ===== Error model（他パッケージと同型） =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// ===== Service =====

type Service struct {
	store Store
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

func (s *Service) GetByCardID(ctx context.Context, cardID string) (*StudentResponse, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, ErrInvalid("card_id is required")
	}
	m, err := s.store.GetByCardID(ctx, strings.ToUpper(strings.TrimSpace(cardID)))
	if err != nil {
		return nil, err
	}
	resp := buildStudentResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, nameQuery string, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, nameQuery, p)
	if err != nil {
		return nil, err
	}
	out := make([]StudentResponse, 0, len(items))
	for i := range items {
		out = append(out, buildStudentResponse(&items[i]))
	}
	return &ListResponse{Items: out, Total: total}, nil
}

func buildStudentResponse(m *Student) StudentResponse {
	return StudentResponse{
		AccountID:    m.AccountID,
		CardID:       m.CardID,
		Name:         m.Name,
		StudentClass: m.StudentClass,
		Field:        m.Field,
		RollNo:       m.RollNo,
		CreatedAt:    m.CreatedAt,
	}
}
