package borrows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"LIBRA-backend/internal/platform/db"
)

// Store は貸出処理の永続化窓口。テストではインメモリ実装に差し替える。
type Store interface {
	GetBook(ctx context.Context, bookID int64) (*BookRef, error)
	FindBorrowerByCard(ctx context.Context, canonicalCard string) (*BorrowerRef, error)
	// ExecBorrow は在庫の条件付きデクリメントと貸出行の作成を1Txで行う。
	// 在庫が尽きていれば ErrNoCopies を返し、貸出行は作られない。
	ExecBorrow(ctx context.Context, m *Borrow) error
	GetByULID(ctx context.Context, ulid string) (*Borrow, error)
	// ExecReturn は返却への遷移と在庫の増加（total超過はクランプ）を1Txで行う。
	// すでに返却済みなら ErrAlreadyReturned。
	ExecReturn(ctx context.Context, ulid string, returnedAt time.Time) error
	UpdateStatus(ctx context.Context, ulid string, status string, returnDate sql.NullTime) (int64, error)
	List(ctx context.Context, f Filter, p Page) ([]Borrow, int64, error)
}

type mysqlStore struct{ conn *sql.DB }

func NewStore(conn *sql.DB) Store { return &mysqlStore{conn: conn} }

func (s *mysqlStore) GetBook(ctx context.Context, bookID int64) (*BookRef, error) {
	const q = `SELECT book_id, title, total_copies, available_copies FROM books WHERE book_id = ?`
	var b BookRef
	err := s.conn.QueryRowContext(ctx, q, bookID).Scan(
		&b.BookID, &b.Title, &b.TotalCopies, &b.AvailableCopies)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("book not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindBorrowerByCard: students を起点に、連絡先は申請レコードから引く。
// borrower_id にはカード番号を使う（会員トークンの sub と揃える）。
func (s *mysqlStore) FindBorrowerByCard(ctx context.Context, canonicalCard string) (*BorrowerRef, error) {
	const q = `
	SELECT s.card_id, s.name, a.phone, a.email
	FROM students s
	LEFT JOIN card_applications a ON a.card_number = s.card_id
	WHERE s.card_id = ?
	LIMIT 1`
	var ref BorrowerRef
	var phone, email sql.NullString
	err := s.conn.QueryRowContext(ctx, q, canonicalCard).Scan(
		&ref.BorrowerID, &ref.Name, &phone, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("no student for card number")
	}
	if err != nil {
		return nil, err
	}
	ref.Phone = phone
	ref.Email = email
	return &ref, nil
}

func (s *mysqlStore) ExecBorrow(ctx context.Context, m *Borrow) error {
	return db.RunInTx(ctx, s.conn, func(ctx context.Context, tx db.DBTX) error {
		// 在庫チェックとデクリメントを1文で行う。0行更新なら在庫なし。
		// 同時に最後の1冊を取り合っても片方しか通らない。
		const decQ = `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE book_id = ? AND available_copies > 0`
		res, err := tx.ExecContext(ctx, decQ, m.BookID)
		if err != nil {
			return err
		}
		aff, _ := res.RowsAffected()
		if aff == 0 {
			return ErrNoCopies()
		}

		const insQ = `
		INSERT INTO book_borrows
		(borrow_ulid, book_id, book_title, borrower_id, borrower_name,
		 borrower_phone, borrower_email, borrow_date, due_date, return_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)`
		ins, err := tx.ExecContext(ctx, insQ,
			m.BorrowULID, m.BookID, m.BookTitle, m.BorrowerID, m.BorrowerName,
			m.BorrowerPhone, m.BorrowerEmail, m.BorrowDate, m.DueDate, m.Status)
		if err != nil {
			return err
		}
		id, _ := ins.LastInsertId()
		m.BorrowID = id
		return nil
	})
}

const borrowCols = `
	borrow_id, borrow_ulid, book_id, book_title, borrower_id, borrower_name,
	borrower_phone, borrower_email, borrow_date, due_date, return_date, status`

func scanBorrow(row interface{ Scan(...any) error }) (*Borrow, error) {
	var m Borrow
	err := row.Scan(
		&m.BorrowID, &m.BorrowULID, &m.BookID, &m.BookTitle, &m.BorrowerID, &m.BorrowerName,
		&m.BorrowerPhone, &m.BorrowerEmail, &m.BorrowDate, &m.DueDate, &m.ReturnDate, &m.Status,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *mysqlStore) GetByULID(ctx context.Context, ulid string) (*Borrow, error) {
	q := fmt.Sprintf(`SELECT %s FROM book_borrows WHERE borrow_ulid = ?`, borrowCols)
	m, err := scanBorrow(s.conn.QueryRowContext(ctx, q, ulid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("borrow not found")
	}
	return m, err
}

func (s *mysqlStore) ExecReturn(ctx context.Context, ulid string, returnedAt time.Time) error {
	return db.RunInTx(ctx, s.conn, func(ctx context.Context, tx db.DBTX) error {
		// status条件付き更新。0行更新なら（レース含め）すでに返却済み。
		const upQ = `
		UPDATE book_borrows
		SET status = ?, return_date = ?
		WHERE borrow_ulid = ? AND status = ?`
		res, err := tx.ExecContext(ctx, upQ, StatusReturned, returnedAt, ulid, StatusBorrowed)
		if err != nil {
			return err
		}
		aff, _ := res.RowsAffected()
		if aff == 0 {
			return ErrAlreadyReturned()
		}

		var bookID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT book_id FROM book_borrows WHERE borrow_ulid = ?`, ulid).Scan(&bookID); err != nil {
			return err
		}

		// total を超えないようにクランプして在庫を戻す
		const incQ = `
		UPDATE books
		SET available_copies = LEAST(available_copies + 1, total_copies)
		WHERE book_id = ?`
		if _, err := tx.ExecContext(ctx, incQ, bookID); err != nil {
			return err
		}
		return nil
	})
}

// UpdateStatus は管理者用の直接上書き。books の在庫には触れない。
func (s *mysqlStore) UpdateStatus(ctx context.Context, ulid string, status string, returnDate sql.NullTime) (int64, error) {
	const q = `UPDATE book_borrows SET status = ?, return_date = ? WHERE borrow_ulid = ?`
	res, err := s.conn.ExecContext(ctx, q, status, returnDate, ulid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *mysqlStore) List(ctx context.Context, f Filter, p Page) ([]Borrow, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM book_borrows WHERE 1=1`, borrowCols))

	args := []any{}
	if f.BorrowerID != "" {
		sb.WriteString(` AND borrower_id = ?`)
		args = append(args, f.BorrowerID)
	}
	if f.BookID != nil {
		sb.WriteString(` AND book_id = ?`)
		args = append(args, *f.BookID)
	}
	if f.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, f.Status)
	}
	if f.OnlyOutstanding {
		sb.WriteString(` AND status = 'borrowed'`)
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(` ORDER BY borrow_date %s`, order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Borrow
	for rows.Next() {
		m, err := scanBorrow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM book_borrows WHERE 1=1`)
	argsCnt := []any{}
	if f.BorrowerID != "" {
		cb.WriteString(` AND borrower_id = ?`)
		argsCnt = append(argsCnt, f.BorrowerID)
	}
	if f.BookID != nil {
		cb.WriteString(` AND book_id = ?`)
		argsCnt = append(argsCnt, *f.BookID)
	}
	if f.Status != "" {
		cb.WriteString(` AND status = ?`)
		argsCnt = append(argsCnt, f.Status)
	}
	if f.OnlyOutstanding {
		cb.WriteString(` AND status = 'borrowed'`)
	}
	var total int64
	if err := s.conn.QueryRowContext(ctx, cb.String(), argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}
