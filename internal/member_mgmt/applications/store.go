package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Store はサービスが必要とする永続化の窓口。
// テストではインメモリ実装に差し替える（platform/auth.AccountStore と同じ流儀）。
type Store interface {
	Insert(ctx context.Context, a *Application) error
	GetByULID(ctx context.Context, ulid string) (*Application, error)
	GetByCardNumber(ctx context.Context, canonicalCard string) (*Application, error)
	UpdateStatus(ctx context.Context, ulid string, status string) (int64, error)
	List(ctx context.Context, f Filter, p Page) ([]Application, int64, error)
	Delete(ctx context.Context, ulid string) (int64, error)

	// 承認時の学生レコード自動作成用。students テーブルを直接触る
	StudentExistsByCardID(ctx context.Context, cardID string) (bool, error)
	InsertStudent(ctx context.Context, rec StudentRecord) error
}

type mysqlStore struct{ db *sql.DB }

func NewStore(db *sql.DB) Store { return &mysqlStore{db: db} }

const applicationCols = `
	application_id, application_ulid, account_id, first_name, last_name,
	student_class, field, roll_no, phone, email, address,
	status, card_number, student_id, issue_date, valid_through,
	password_hash, created_at, updated_at`

func scanApplication(row interface{ Scan(...any) error }) (*Application, error) {
	var a Application
	err := row.Scan(
		&a.ApplicationID, &a.ApplicationULID, &a.AccountID, &a.FirstName, &a.LastName,
		&a.StudentClass, &a.Field, &a.RollNo, &a.Phone, &a.Email, &a.Address,
		&a.Status, &a.CardNumber, &a.StudentID, &a.IssueDate, &a.ValidThrough,
		&a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *mysqlStore) Insert(ctx context.Context, a *Application) error {
	const q = `
	INSERT INTO card_applications
	(application_ulid, account_id, first_name, last_name, student_class, field, roll_no,
	 phone, email, address, status, card_number, student_id, issue_date, valid_through, password_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q,
		a.ApplicationULID,
		a.AccountID,
		a.FirstName,
		a.LastName,
		a.StudentClass,
		a.Field,
		a.RollNo,
		a.Phone,
		a.Email,
		a.Address,
		a.Status,
		a.CardNumber,
		a.StudentID,
		a.IssueDate,
		a.ValidThrough,
		a.PasswordHash,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	a.ApplicationID = id
	return nil
}

func (s *mysqlStore) GetByULID(ctx context.Context, ulid string) (*Application, error) {
	q := fmt.Sprintf(`SELECT %s FROM card_applications WHERE application_ulid = ?`, applicationCols)
	a, err := scanApplication(s.db.QueryRowContext(ctx, q, ulid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("application not found")
	}
	return a, err
}

// GetByCardNumber は正規形（大文字）で照合する。保存時も正規形なので
// 呼び出し側の大文字小文字は結果に影響しない。
func (s *mysqlStore) GetByCardNumber(ctx context.Context, canonicalCard string) (*Application, error) {
	q := fmt.Sprintf(`SELECT %s FROM card_applications WHERE UPPER(card_number) = ? LIMIT 1`, applicationCols)
	a, err := scanApplication(s.db.QueryRowContext(ctx, q, canonicalCard))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("application not found")
	}
	return a, err
}

func (s *mysqlStore) UpdateStatus(ctx context.Context, ulid string, status string) (int64, error) {
	const q = `UPDATE card_applications SET status = ? WHERE application_ulid = ?`
	res, err := s.db.ExecContext(ctx, q, status, ulid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *mysqlStore) List(ctx context.Context, f Filter, p Page) ([]Application, int64, error) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM card_applications WHERE 1=1`, applicationCols))

	args := []any{}
	if f.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, f.Status)
	}
	if f.CardNumber != "" {
		sb.WriteString(` AND UPPER(card_number) = ?`)
		args = append(args, CanonicalCardNumber(f.CardNumber))
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

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	cb := strings.Builder{}
	cb.WriteString(`SELECT COUNT(*) FROM card_applications WHERE 1=1`)
	argsCnt := []any{}
	if f.Status != "" {
		cb.WriteString(` AND status = ?`)
		argsCnt = append(argsCnt, f.Status)
	}
	if f.CardNumber != "" {
		cb.WriteString(` AND UPPER(card_number) = ?`)
		argsCnt = append(argsCnt, CanonicalCardNumber(f.CardNumber))
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, cb.String(), argsCnt...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (s *mysqlStore) Delete(ctx context.Context, ulid string) (int64, error) {
	const q = `DELETE FROM card_applications WHERE application_ulid = ?`
	res, err := s.db.ExecContext(ctx, q, ulid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ===== 学生レコード（承認の副作用） =====

func (s *mysqlStore) StudentExistsByCardID(ctx context.Context, cardID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM students WHERE card_id = ?`
	var n int
	if err := s.db.QueryRowContext(ctx, q, cardID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *mysqlStore) InsertStudent(ctx context.Context, rec StudentRecord) error {
	const q = `
	INSERT INTO students (account_id, card_id, name, student_class, field, roll_no)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.AccountID, rec.CardID, rec.Name, rec.StudentClass, rec.Field, rec.RollNo)
	return err
}
