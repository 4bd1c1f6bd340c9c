package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== テスト用フェイク =====

type fakeAccountStore struct {
	accounts map[string]*Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]*Account{}}
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountStore) Create(_ context.Context, a *Account) error {
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeAccountStore) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := f.accounts[id]; !ok {
		return 0, nil
	}
	delete(f.accounts, id)
	return 1, nil
}

func (f *fakeAccountStore) SetDisabled(_ context.Context, id string, disabled bool) (int64, error) {
	a, ok := f.accounts[id]
	if !ok {
		return 0, nil
	}
	a.IsDisabled = disabled
	return 1, nil
}

var testSecret = []byte("test-secret")

func newTestService(store AccountStore) *Service {
	return &Service{store: store, secret: testSecret}
}

// ===== Register / Login =====

func Test_RegisterAndLogin(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "librarian", "s3cret", RoleAdmin))

	// 平文では保存されない
	assert.NotEqual(t, "s3cret", store.accounts["librarian"].PasswordHash)

	tokenStr, err := svc.Login(ctx, "librarian", "s3cret")
	require.NoError(t, err)

	// 発行されたトークンの中身を確認
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "librarian", claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])
}

func Test_Register_Duplicate(t *testing.T) {
	svc := newTestService(newFakeAccountStore())
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "librarian", "a", RoleStaff))
	assert.ErrorIs(t, svc.Register(ctx, "librarian", "b", RoleStaff), ErrAlreadyExists)
}

func Test_Login_Failures(t *testing.T) {
	store := newFakeAccountStore()
	svc := newTestService(store)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "librarian", "s3cret", RoleStaff))

	// 存在しないID
	_, err := svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrAuthFailed)

	// パスワード違い
	_, err = svc.Login(ctx, "librarian", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailed)

	// 無効化済み
	require.NoError(t, svc.SetDisabled(ctx, "librarian", true))
	_, err = svc.Login(ctx, "librarian", "s3cret")
	assert.ErrorIs(t, err, ErrAuthFailed)

	// 再有効化でまた通る
	require.NoError(t, svc.SetDisabled(ctx, "librarian", false))
	_, err = svc.Login(ctx, "librarian", "s3cret")
	assert.NoError(t, err)
}

func Test_DeleteAndSetDisabled_NotFound(t *testing.T) {
	svc := newTestService(newFakeAccountStore())
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "nobody"), ErrNotFound)
	assert.ErrorIs(t, svc.SetDisabled(ctx, "nobody", true), ErrNotFound)
}
