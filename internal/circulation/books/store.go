package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store interface {
	Insert(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, bookID int64) (*Book, error)
	Update(ctx context.Context, b *Book) (int64, error)
	List(ctx context.Context, q SearchQuery, p Page) ([]Book, int64, error)
	Delete(ctx context.Context, bookID int64) (int64, error)
}

type mysqlStore struct{ db *sql.DB }

func NewStore(db *sql.DB) Store { return &mysqlStore{db: db} }

const bookCols = `book_id, title, author, total_copies, available_copies, image_url, pdf_url, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	err := row.Scan(
		&b.BookID, &b.Title, &b.Author, &b.TotalCopies, &b.AvailableCopies,
		&b.ImageURL, &b.PDFURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *mysqlStore) Insert(ctx context.Context, b *Book) error {
	const q = `
	INSERT INTO books (title, author, total_copies, available_copies, image_url, pdf_url)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.TotalCopies, b.AvailableCopies, b.ImageURL, b.PDFURL)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	b.BookID = id
	return nil
}

func (s *mysqlStore) GetByID(ctx context.Context, bookID int64) (*Book, error) {
	q := fmt.Sprintf(`SELECT %s FROM books WHERE book_id = ?`, bookCols)
	b, err := scanBook(s.db.QueryRowContext(ctx, q, bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("book not found")
	}
	return b, err
}

// Update は書誌情報と所蔵数をまとめて上書きする。
// available_copies の貸出・返却由来の増減はここを通らない（borrows側のTx）。
func (s *mysqlStore) Update(ctx context.Context, b *Book) (int64, error) {
	const q = `
	UPDATE books
	SET title = ?, author = ?, total_copies = ?, available_copies = ?, image_url = ?, pdf_url = ?
	WHERE book_id = ?`
	res, err := s.db.ExecContext(ctx, q,
		b.Title, b.Author, b.TotalCopies, b.AvailableCopies, b.ImageURL, b.PDFURL, b.BookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *mysqlStore) List(ctx context.Context, f SearchQuery, p Page) ([]Book, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM books WHERE 1=1`, bookCols))

	args := []any{}
	if f.Title != "" {
		sb.WriteString(` AND title LIKE ?`)
		args = append(args, "%"+f.Title+"%")
	}
	if f.Author != "" {
		sb.WriteString(` AND author LIKE ?`)
		args = append(args, "%"+f.Author+"%")
	}

	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	sb.WriteString(fmt.Sprintf(` ORDER BY created_at %s`, order))
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	sb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, p.Limit, p.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM books WHERE 1=1`)
	argsCnt := []any{}
	if f.Title != "" {
		cb.WriteString(` AND title LIKE ?`)
		argsCnt = append(argsCnt, "%"+f.Title+"%")
	}
	if f.Author != "" {
		cb.WriteString(` AND author LIKE ?`)
		argsCnt = append(argsCnt, "%"+f.Author+"%")
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (s *mysqlStore) Delete(ctx context.Context, bookID int64) (int64, error) {
	const q = `DELETE FROM books WHERE book_id = ?`
	res, err := s.db.ExecContext(ctx, q, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
