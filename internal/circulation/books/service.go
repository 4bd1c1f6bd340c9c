package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ===== Error model（applications/borrows と同型） =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
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

// ===== Service =====

type Service struct {
	store Store
}

func NewService(db *sql.DB) *Service {
	return &Service{store: NewStore(db)}
}

func newServiceWithStore(store Store) *Service {
	return &Service{store: store}
}

// 蔵書登録。available は省略時 total と同数、指定時は 0 <= available <= total を要求。
func (s *Service) Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalid("title is required")
	}
	if req.TotalCopies < 0 {
		return nil, ErrInvalid("totalCopies must be >= 0")
	}

	available := req.TotalCopies
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}
	if available < 0 || available > req.TotalCopies {
		return nil, ErrInvalid("availableCopies must satisfy 0 <= available <= total")
	}

	b := &Book{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		TotalCopies:     req.TotalCopies,
		AvailableCopies: available,
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		b.ImageURL = sql.NullString{String: *req.ImageURL, Valid: true}
	}
	if req.PDFURL != nil && *req.PDFURL != "" {
		b.PDFURL = sql.NullString{String: *req.PDFURL, Valid: true}
	}

	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}

	out, err := s.store.GetByID(ctx, b.BookID)
	if err != nil {
		return nil, err
	}
	resp := buildBookResponse(out)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, bookID int64) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	resp := buildBookResponse(b)
	return &resp, nil
}

// 蔵書編集。total を増減した分だけ available も同方向に動かし、
// 0 <= available <= total を保つ（貸出中の冊数は減らさない）。
func (s *Service) Update(ctx context.Context, bookID int64, req UpdateBookRequest) (*BookResponse, error) {
	b, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalid("title must not be empty")
		}
		b.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		b.Author = strings.TrimSpace(*req.Author)
	}
	if req.TotalCopies != nil {
		newTotal := *req.TotalCopies
		if newTotal < 0 {
			return nil, ErrInvalid("totalCopies must be >= 0")
		}
		borrowed := b.TotalCopies - b.AvailableCopies
		if newTotal < borrowed {
			return nil, ErrConflict(fmt.Sprintf("%d copies are currently borrowed", borrowed))
		}
		b.AvailableCopies = newTotal - borrowed
		b.TotalCopies = newTotal
	}
	if req.ImageURL != nil {
		b.ImageURL = sql.NullString{String: *req.ImageURL, Valid: *req.ImageURL != ""}
	}
	if req.PDFURL != nil {
		b.PDFURL = sql.NullString{String: *req.PDFURL, Valid: *req.PDFURL != ""}
	}

	if _, err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}

	out, err := s.store.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	resp := buildBookResponse(out)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, q SearchQuery, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, err
	}
	out := make([]BookResponse, 0, len(items))
	for i := range items {
		out = append(out, buildBookResponse(&items[i]))
	}
	return &ListResponse{Items: out, Total: total}, nil
}

func (s *Service) Delete(ctx context.Context, bookID int64) error {
	n, err := s.store.Delete(ctx, bookID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("book not found")
	}
	return nil
}

func buildBookResponse(b *Book) BookResponse {
	resp := BookResponse{
		BookID:          b.BookID,
		Title:           b.Title,
		Author:          b.Author,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.ImageURL.Valid {
		v := b.ImageURL.String
		resp.ImageURL = &v
	}
	if b.PDFURL.Valid {
		v := b.PDFURL.String
		resp.PDFURL = &v
	}
	return resp
}
