package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store interface {
	GetByCardID(ctx context.Context, cardID string) (*Student, error)
	List(ctx context.Context, nameQuery string, p Page) ([]Student, int64, error)
}

type mysqlStore struct{ db *sql.DB }

func NewStore(db *sql.DB) Store { return &mysqlStore{db: db} }

const studentCols = `student_pk, account_id, card_id, name, student_class, field, roll_no, created_at`

func (s *mysqlStore) GetByCardID(ctx context.Context, cardID string) (*Student, error) {
	q := fmt.Sprintf(`SELECT %s FROM students WHERE card_id = ? LIMIT 1`, studentCols)
	var m Student
	err := s.db.QueryRowContext(ctx, q, cardID).Scan(
		&m.StudentPK, &m.AccountID, &m.CardID, &m.Name,
		&m.StudentClass, &m.Field, &m.RollNo, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("student not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *mysqlStore) List(ctx context.Context, nameQuery string, p Page) ([]Student, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM students WHERE 1=1`, studentCols))

	args := []any{}
	if nameQuery != "" {
		sb.WriteString(` AND name LIKE ?`)
		args = append(args, "%"+nameQuery+"%")
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

	var out []Student
	for rows.Next() {
		var m Student
		if err := rows.Scan(
			&m.StudentPK, &m.AccountID, &m.CardID, &m.Name,
			&m.StudentClass, &m.Field, &m.RollNo, &m.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cq := `SELECT COUNT(*) FROM students WHERE 1=1`
	argsCnt := []any{}
	if nameQuery != "" {
		cq += ` AND name LIKE ?`
		argsCnt = append(argsCnt, "%"+nameQuery+"%")
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cq, argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
