package applications

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"LIBRA-backend/internal/platform/auth"
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

// ===== Service本体 =====

const memberTokenTTL = 24 * time.Hour

type Service struct {
	store  Store
	clock  Clock
	id     IDGen
	secret []byte
}

func NewService(db *sql.DB, secret []byte) *Service {
	return &Service{
		store:  NewStore(db),
		clock:  realClock{},
		id:     ulidGen{},
		secret: secret,
	}
}

// 申請受付。識別子（カード番号・学生ID・有効期間）はここで確定し、以後変わらない。
func (s *Service) Submit(ctx context.Context, req SubmitApplicationRequest) (*ApplicationResponse, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, ErrInvalid("firstName is required")
	}
	if strings.TrimSpace(req.RollNo) == "" {
		return nil, ErrInvalid("rollNo is required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, ErrInvalid("phone is required")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	issueDate, validThrough := ValidityWindow(now)

	app := &Application{
		ApplicationULID: idStr,
		FirstName:       strings.TrimSpace(req.FirstName),
		StudentClass:    req.StudentClass,
		Field:           req.Field,
		RollNo:          strings.TrimSpace(req.RollNo),
		Phone:           strings.TrimSpace(req.Phone),
		Status:          StatusPending,
		CardNumber:      CanonicalCardNumber(GenerateCardNumber(req.Field, req.RollNo, req.StudentClass)),
		StudentID:       GenerateStudentID(),
		IssueDate:       issueDate,
		ValidThrough:    validThrough,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if req.LastName != nil && *req.LastName != "" {
		app.LastName = sql.NullString{String: *req.LastName, Valid: true}
	}
	if req.AccountID != nil && *req.AccountID != "" {
		app.AccountID = sql.NullString{String: *req.AccountID, Valid: true}
	}
	if req.Email != nil && *req.Email != "" {
		app.Email = sql.NullString{String: *req.Email, Valid: true}
	}
	if req.Address != nil && *req.Address != "" {
		app.Address = sql.NullString{String: *req.Address, Valid: true}
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		app.PasswordHash = sql.NullString{String: string(hash), Valid: true}
	}

	if err := s.store.Insert(ctx, app); err != nil {
		return nil, err
	}

	resp := buildApplicationResponse(app)
	return &resp, nil
}

// ステータス更新。approved になった時だけ学生レコードを自動作成する。
// すでに approved の申請に approved を再適用しても学生は増えない（冪等）。
func (s *Service) SetStatus(ctx context.Context, ulidStr, status string) (*ApplicationResponse, error) {
	if !validStatus(status) {
		return nil, ErrInvalid("status must be one of pending/approved/rejected")
	}

	app, err := s.store.GetByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.UpdateStatus(ctx, ulidStr, status); err != nil {
		return nil, err
	}
	app.Status = status
	app.UpdatedAt = s.clock.Now()

	if status == StatusApproved {
		if err := s.ensureStudent(ctx, app); err != nil {
			return nil, err
		}
	}

	resp := buildApplicationResponse(app)
	return &resp, nil
}

// ensureStudent は「カード番号につき学生は1人」を守りつつ作成する。
// 直前の存在チェックに加え、students.card_id の UNIQUE キーで競合しても
// duplicate key は作成済みとみなして握りつぶす。
func (s *Service) ensureStudent(ctx context.Context, app *Application) error {
	exists, err := s.store.StudentExistsByCardID(ctx, app.CardNumber)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	accountID := "APP-" + app.ApplicationULID
	if app.AccountID.Valid {
		accountID = app.AccountID.String
	}

	name := app.FirstName
	if app.LastName.Valid {
		name = name + " " + app.LastName.String
	}

	err = s.store.InsertStudent(ctx, StudentRecord{
		AccountID:    accountID,
		CardID:       app.CardNumber,
		Name:         name,
		StudentClass: app.StudentClass,
		Field:        app.Field,
		RollNo:       app.RollNo,
	})
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			log.Printf("[INFO] student already provisioned for card %s", app.CardNumber)
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, ulidStr string) (*ApplicationResponse, error) {
	app, err := s.store.GetByULID(ctx, ulidStr)
	if err != nil {
		return nil, err
	}
	resp := buildApplicationResponse(app)
	return &resp, nil
}

// カード番号での照会。大文字小文字は区別しない。
func (s *Service) GetByCardNumber(ctx context.Context, cardNumber string) (*ApplicationResponse, error) {
	if strings.TrimSpace(cardNumber) == "" {
		return nil, ErrInvalid("cardNumber is required")
	}
	app, err := s.store.GetByCardNumber(ctx, CanonicalCardNumber(cardNumber))
	if err != nil {
		return nil, err
	}
	resp := buildApplicationResponse(app)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f Filter, p Page) (*ListResponse, error) {
	if f.Status != "" && !validStatus(f.Status) {
		return nil, ErrInvalid("status must be one of pending/approved/rejected")
	}
	apps, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, err
	}
	items := make([]ApplicationResponse, 0, len(apps))
	for i := range apps {
		items = append(items, buildApplicationResponse(&apps[i]))
	}
	return &ListResponse{Items: items, Total: total}, nil
}

func (s *Service) Delete(ctx context.Context, ulidStr string) error {
	n, err := s.store.Delete(ctx, ulidStr)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound("application not found")
	}
	return nil
}

// カード番号＋パスワードでのログイン。
// 失敗理由はコードで出し分ける（外側で文言を変えるため丸めない）。
func (s *Service) AuthorizeCardLogin(ctx context.Context, req CardLoginRequest) (*CardLoginResponse, error) {
	app, err := s.store.GetByCardNumber(ctx, CanonicalCardNumber(req.CardNumber))
	if err != nil {
		return nil, err
	}

	if !app.PasswordHash.Valid || app.PasswordHash.String == "" {
		return nil, ErrNoCredential()
	}
	if app.Status != StatusApproved {
		return nil, ErrNotApproved(app.Status)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(app.PasswordHash.String), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential()
	}

	token, err := auth.IssueToken(s.secret, app.CardNumber, auth.RoleMember, memberTokenTTL)
	if err != nil {
		return nil, err
	}

	name := app.FirstName
	if app.LastName.Valid {
		name = name + " " + app.LastName.String
	}

	return &CardLoginResponse{
		Token:      token,
		CardNumber: app.CardNumber,
		StudentID:  app.StudentID,
		Name:       name,
	}, nil
}

// ヘルパー関数
func buildApplicationResponse(a *Application) ApplicationResponse {
	resp := ApplicationResponse{
		ApplicationULID: a.ApplicationULID,
		FirstName:       a.FirstName,
		StudentClass:    a.StudentClass,
		Field:           a.Field,
		RollNo:          a.RollNo,
		Phone:           a.Phone,
		Status:          a.Status,
		CardNumber:      a.CardNumber,
		StudentID:       a.StudentID,
		IssueDate:       a.IssueDate,
		ValidThrough:    a.ValidThrough,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if a.AccountID.Valid {
		v := a.AccountID.String
		resp.AccountID = &v
	}
	if a.LastName.Valid {
		v := a.LastName.String
		resp.LastName = &v
	}
	if a.Email.Valid {
		v := a.Email.String
		resp.Email = &v
	}
	if a.Address.Valid {
		v := a.Address.String
		resp.Address = &v
	}
	return resp
}
