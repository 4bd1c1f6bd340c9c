package applications

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ===== テスト用フェイク =====

type fakeStore struct {
	apps     map[string]*Application // key: application_ulid
	students map[string]StudentRecord // key: card_id

	// InsertStudent に重複キーを返させたい時に立てる
	failStudentInsertWithDup bool
	studentInserts           int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:     map[string]*Application{},
		students: map[string]StudentRecord{},
	}
}

func (f *fakeStore) Insert(_ context.Context, a *Application) error {
	a.ApplicationID = int64(len(f.apps) + 1)
	cp := *a
	f.apps[a.ApplicationULID] = &cp
	return nil
}

func (f *fakeStore) GetByULID(_ context.Context, ulid string) (*Application, error) {
	a, ok := f.apps[ulid]
	if !ok {
		return nil, ErrNotFound("application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) GetByCardNumber(_ context.Context, canonicalCard string) (*Application, error) {
	for _, a := range f.apps {
		if a.CardNumber == canonicalCard {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound("application not found")
}

func (f *fakeStore) UpdateStatus(_ context.Context, ulid string, status string) (int64, error) {
	a, ok := f.apps[ulid]
	if !ok {
		return 0, nil
	}
	a.Status = status
	return 1, nil
}

func (f *fakeStore) List(_ context.Context, fl Filter, _ Page) ([]Application, int64, error) {
	var out []Application
	for _, a := range f.apps {
		if fl.Status != "" && a.Status != fl.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Delete(_ context.Context, ulid string) (int64, error) {
	if _, ok := f.apps[ulid]; !ok {
		return 0, nil
	}
	delete(f.apps, ulid)
	return 1, nil
}

func (f *fakeStore) StudentExistsByCardID(_ context.Context, cardID string) (bool, error) {
	_, ok := f.students[cardID]
	return ok, nil
}

func (f *fakeStore) InsertStudent(_ context.Context, rec StudentRecord) error {
	f.studentInserts++
	if f.failStudentInsertWithDup {
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	if _, ok := f.students[rec.CardID]; ok {
		return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	}
	f.students[rec.CardID] = rec
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct{ n int }

func (g *seqIDGen) New() (string, error) {
	g.n++
	return fmt.Sprintf("01TESTULID%016d", g.n), nil
}

func newTestService(store Store) *Service {
	return &Service{
		store:  store,
		clock:  fixedClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		id:     &seqIDGen{},
		secret: []byte("test-secret"),
	}
}

func strPtr(s string) *string { return &s }

// ===== Submit =====

func Test_Submit_AssignsIdentifiersAndPending(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	res, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		FirstName:    "Ayesha",
		LastName:     strPtr("Khan"),
		Field:        "Computer Science",
		StudentClass: "Class 11",
		RollNo:       "A-123",
		Phone:        "0300-1234567",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Status)
	assert.Equal(t, "CS-123-11", res.CardNumber)
	assert.NotEmpty(t, res.StudentID)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), res.IssueDate)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), res.ValidThrough)
}

func Test_Submit_ValidatesRequiredFields(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		RollNo: "A-1",
		Phone:  "1",
	})
	require.Error(t, err)
	api, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidArgument, api.Code)
}

// ===== SetStatus / 学生自動作成 =====

func submitOne(t *testing.T, svc *Service) *ApplicationResponse {
	t.Helper()
	res, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		FirstName:    "Bilal",
		Field:        "Pre-Medical",
		StudentClass: "Class 12",
		RollNo:       "B-77",
		Phone:        "0311-0000000",
		Password:     strPtr("open-sesame"),
	})
	require.NoError(t, err)
	return res
}

func Test_SetStatus_ApproveProvisionsExactlyOneStudent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	app := submitOne(t, svc)

	res, err := svc.SetStatus(context.Background(), app.ApplicationULID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, res.Status)

	require.Len(t, store.students, 1)
	rec := store.students[app.CardNumber]
	assert.Equal(t, app.CardNumber, rec.CardID)
	assert.Equal(t, "APP-"+app.ApplicationULID, rec.AccountID)

	// 再承認しても学生は増えない
	_, err = svc.SetStatus(context.Background(), app.ApplicationULID, StatusApproved)
	require.NoError(t, err)
	assert.Len(t, store.students, 1)
	assert.Equal(t, 1, store.studentInserts)
}

func Test_SetStatus_ApproveUsesLinkedAccountID(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	res, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		FirstName: "Sana",
		AccountID: strPtr("acct-42"),
		RollNo:    "7",
		Phone:     "1",
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), res.ApplicationULID, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "acct-42", store.students[res.CardNumber].AccountID)
}

func Test_SetStatus_DuplicateKeyOnStudentInsertIsBenign(t *testing.T) {
	store := newFakeStore()
	store.failStudentInsertWithDup = true
	svc := newTestService(store)
	app := submitOne(t, svc)

	// 存在チェックとINSERTの間に他所で作られたケース相当
	_, err := svc.SetStatus(context.Background(), app.ApplicationULID, StatusApproved)
	require.NoError(t, err)
}

func Test_SetStatus_RejectedHasNoSideEffect(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	app := submitOne(t, svc)

	res, err := svc.SetStatus(context.Background(), app.ApplicationULID, StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, res.Status)
	assert.Empty(t, store.students)
}

func Test_SetStatus_Validation(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.SetStatus(context.Background(), "whatever", "archived")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*APIError).Code)

	_, err = svc.SetStatus(context.Background(), "missing", StatusApproved)
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}

// ===== 照会 =====

func Test_GetByCardNumber_CaseInsensitive(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	app := submitOne(t, svc) // PM-77-12

	res, err := svc.GetByCardNumber(context.Background(), "pm-77-12")
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationULID, res.ApplicationULID)

	_, err = svc.GetByCardNumber(context.Background(), "pm-00-12")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}

// ===== カードログイン =====

func Test_AuthorizeCardLogin_Ladder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	app := submitOne(t, svc)

	login := func(card, pw string) error {
		_, err := svc.AuthorizeCardLogin(context.Background(), CardLoginRequest{
			CardNumber: card,
			Password:   pw,
		})
		return err
	}

	// 未知のカード番号
	err := login("XX-404-XX", "open-sesame")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)

	// pending のうちは拒否
	err = login(app.CardNumber, "open-sesame")
	require.Error(t, err)
	assert.Equal(t, CodeNotApprovedPending, err.(*APIError).Code)

	// rejected も専用コード
	_, sErr := svc.SetStatus(context.Background(), app.ApplicationULID, StatusRejected)
	require.NoError(t, sErr)
	err = login(app.CardNumber, "open-sesame")
	require.Error(t, err)
	assert.Equal(t, CodeNotApprovedRejected, err.(*APIError).Code)

	// approved + パスワード違い
	_, sErr = svc.SetStatus(context.Background(), app.ApplicationULID, StatusApproved)
	require.NoError(t, sErr)
	err = login(app.CardNumber, "wrong")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidCredential, err.(*APIError).Code)

	// approved + 正しいパスワード（カード番号は小文字でも通る）
	res, err := svc.AuthorizeCardLogin(context.Background(), CardLoginRequest{
		CardNumber: "pm-77-12",
		Password:   "open-sesame",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, app.CardNumber, res.CardNumber)
	assert.Equal(t, app.StudentID, res.StudentID)
}

func Test_AuthorizeCardLogin_NoCredential(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	res, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		FirstName: "NoPass",
		RollNo:    "9",
		Phone:     "1",
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), res.ApplicationULID, StatusApproved)
	require.NoError(t, err)

	_, err = svc.AuthorizeCardLogin(context.Background(), CardLoginRequest{
		CardNumber: res.CardNumber,
		Password:   "anything",
	})
	require.Error(t, err)
	assert.Equal(t, CodeNoCredential, err.(*APIError).Code)
}

// パスワードは平文では保存されない
func Test_Submit_PasswordIsHashed(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	app := submitOne(t, svc)

	stored := store.apps[app.ApplicationULID]
	require.True(t, stored.PasswordHash.Valid)
	assert.NotEqual(t, "open-sesame", stored.PasswordHash.String)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(stored.PasswordHash.String), []byte("open-sesame")))
}

// sql.NullString の詰め替え漏れ防止
func Test_Submit_OptionalFields(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	res, err := svc.Submit(context.Background(), SubmitApplicationRequest{
		FirstName: "Opt",
		RollNo:    "1",
		Phone:     "1",
		Email:     strPtr("opt@example.com"),
		Address:   strPtr("Somewhere 12"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Email)
	assert.Equal(t, "opt@example.com", *res.Email)
	require.NotNil(t, res.Address)
	assert.Equal(t, "Somewhere 12", *res.Address)

	stored := store.apps[res.ApplicationULID]
	assert.Equal(t, sql.NullString{String: "opt@example.com", Valid: true}, stored.Email)
}
