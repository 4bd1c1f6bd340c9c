package borrows

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var upperCaser = cases.Upper(language.Und)

// ===== Service本体 =====

type Service struct {
	store Store
	clock Clock
	id    IDGen
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		store: NewStore(conn),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// 貸出登録。
// 本の存在チェック→在庫チェック→（Tx内で）条件付きデクリメント＋貸出行作成。
// 成功した呼び出しの後は「在庫が1減っていて貸出行がある」ことが保証される。
func (s *Service) Borrow(ctx context.Context, req CreateBorrowRequest) (*BorrowResponse, error) {
	if req.BookID <= 0 {
		return nil, ErrInvalid("bookId is required")
	}

	book, err := s.store.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, ErrNoCopies()
	}

	borrower, err := s.resolveBorrower(ctx, req)
	if err != nil {
		return nil, err
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	m := &Borrow{
		BorrowULID:    idStr,
		BookID:        book.BookID,
		BookTitle:     book.Title,
		BorrowerID:    borrower.BorrowerID,
		BorrowerName:  borrower.Name,
		BorrowerPhone: borrower.Phone,
		BorrowerEmail: borrower.Email,
		BorrowDate:    now,
		DueDate:       now.AddDate(0, 0, loanPeriodDays),
		Status:        StatusBorrowed,
	}

	if err := s.store.ExecBorrow(ctx, m); err != nil {
		return nil, err
	}

	resp := buildBorrowResponse(m)
	return &resp, nil
}

// resolveBorrower はカード番号→学生レコードの順で借り手を特定し、
// 貸出時点の氏名・連絡先スナップショットを作る。
func (s *Service) resolveBorrower(ctx context.Context, req CreateBorrowRequest) (*BorrowerRef, error) {
	if req.CardNumber != nil && *req.CardNumber != "" {
		card := upperCaser.String(strings.TrimSpace(*req.CardNumber))
		ref, err := s.store.FindBorrowerByCard(ctx, card)
		if err != nil {
			return nil, err
		}
		// リクエストで連絡先が明示されていればそちらを優先
		if req.BorrowerPhone != nil && *req.BorrowerPhone != "" {
			ref.Phone = sql.NullString{String: *req.BorrowerPhone, Valid: true}
		}
		if req.BorrowerEmail != nil && *req.BorrowerEmail != "" {
			ref.Email = sql.NullString{String: *req.BorrowerEmail, Valid: true}
		}
		return ref, nil
	}

	// カードなしの窓口貸出
	if req.BorrowerID == nil || *req.BorrowerID == "" {
		return nil, ErrInvalid("either cardNumber or borrowerId is required")
	}
	if req.BorrowerName == nil || strings.TrimSpace(*req.BorrowerName) == "" {
		return nil, ErrInvalid("borrowerName is required when borrowing without a card")
	}

	ref := &BorrowerRef{
		BorrowerID: *req.BorrowerID,
		Name:       strings.TrimSpace(*req.BorrowerName),
	}
	if req.BorrowerPhone != nil && *req.BorrowerPhone != "" {
		ref.Phone = sql.NullString{String: *req.BorrowerPhone, Valid: true}
	}
	if req.BorrowerEmail != nil && *req.BorrowerEmail != "" {
		ref.Email = sql.NullString{String: *req.BorrowerEmail, Valid: true}
	}
	return ref, nil
}

// 返却登録。二重返却は ALREADY_RETURNED で弾き、在庫は変えない。
func (s *Service) Return(ctx context.Context, ulidStr string) (*BorrowResponse, error) {
	if ulidStr == "" {
		return nil, ErrInvalid("borrow_ulid is required")
	}

	m, err := s.store.GetByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusReturned {
		return nil, ErrAlreadyReturned()
	}

	now := s.clock.Now()
	if err := s.store.ExecReturn(ctx, ulidStr, now); err != nil {
		return nil, err
	}

	m.Status = StatusReturned
	m.ReturnDate = sql.NullTime{Time: now, Valid: true}
	resp := buildBorrowResponse(m)
	return &resp, nil
}

// SetStatus は管理者用の直接上書き。在庫カウンタには一切触れない
// （返却として在庫も戻したい場合は Return を使う）。
// returnDate は status=returned のときだけ非NULLになる。
func (s *Service) SetStatus(ctx context.Context, ulidStr, status string, returnDate *time.Time) (*BorrowResponse, error) {
	if status != StatusBorrowed && status != StatusReturned {
		return nil, ErrInvalid("status must be borrowed or returned")
	}

	if _, err := s.store.GetByULID(ctx, ulidStr); err != nil {
		return nil, err
	}

	var rd sql.NullTime
	if status == StatusReturned {
		t := s.clock.Now()
		if returnDate != nil {
			t = *returnDate
		}
		rd = sql.NullTime{Time: t, Valid: true}
	}

	if _, err := s.store.UpdateStatus(ctx, ulidStr, status, rd); err != nil {
		return nil, err
	}

	m, err := s.store.GetByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	resp := buildBorrowResponse(m)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, ulidStr string) (*BorrowResponse, error) {
	m, err := s.store.GetByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	resp := buildBorrowResponse(m)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter, p Page) (*ListResponse, error) {
	items, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	out := make([]BorrowResponse, 0, len(items))
	for i := range items {
		out = append(out, buildBorrowResponse(&items[i]))
	}
	return &ListResponse{Items: out, Total: total}, nil
}

// ヘルパー関数
func buildBorrowResponse(m *Borrow) BorrowResponse {
	resp := BorrowResponse{
		BorrowULID:   m.BorrowULID,
		BookID:       m.BookID,
		BookTitle:    m.BookTitle,
		BorrowerID:   m.BorrowerID,
		BorrowerName: m.BorrowerName,
		BorrowDate:   m.BorrowDate,
		DueDate:      m.DueDate,
		Status:       m.Status,
	}
	if m.BorrowerPhone.Valid {
		v := m.BorrowerPhone.String
		resp.BorrowerPhone = &v
	}
	if m.BorrowerEmail.Valid {
		v := m.BorrowerEmail.String
		resp.BorrowerEmail = &v
	}
	if m.ReturnDate.Valid {
		v := m.ReturnDate.Time
		resp.ReturnDate = &v
	}
	return resp
}
