package books

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== テスト用フェイク =====

type fakeStore struct {
	books map[int64]*Book
	next  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{books: map[int64]*Book{}}
}

func (f *fakeStore) Insert(_ context.Context, b *Book) error {
	f.next++
	b.BookID = f.next
	cp := *b
	f.books[b.BookID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, bookID int64) (*Book, error) {
	b, ok := f.books[bookID]
	if !ok {
		return nil, ErrNotFound("book not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, b *Book) (int64, error) {
	if _, ok := f.books[b.BookID]; !ok {
		return 0, nil
	}
	cp := *b
	f.books[b.BookID] = &cp
	return 1, nil
}

func (f *fakeStore) List(_ context.Context, _ SearchQuery, _ Page) ([]Book, int64, error) {
	var out []Book
	for _, b := range f.books {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Delete(_ context.Context, bookID int64) (int64, error) {
	if _, ok := f.books[bookID]; !ok {
		return 0, nil
	}
	delete(f.books, bookID)
	return 1, nil
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

// ===== Create =====

func Test_Create_DefaultsAvailableToTotal(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())

	res, err := svc.Create(context.Background(), CreateBookRequest{
		Title:       "  Go入門  ",
		Author:      "山田",
		TotalCopies: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Go入門", res.Title)
	assert.Equal(t, 3, res.TotalCopies)
	assert.Equal(t, 3, res.AvailableCopies)
	assert.Nil(t, res.ImageURL)
}

func Test_Create_Validation(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateBookRequest
	}{
		{"タイトル空", CreateBookRequest{TotalCopies: 1}},
		{"total負数", CreateBookRequest{Title: "x", TotalCopies: -1}},
		{"availableがtotal超え", CreateBookRequest{Title: "x", TotalCopies: 2, AvailableCopies: intPtr(3)}},
		{"available負数", CreateBookRequest{Title: "x", TotalCopies: 2, AvailableCopies: intPtr(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			require.Error(t, err)
			assert.Equal(t, CodeInvalidArgument, err.(*APIError).Code)
		})
	}
}

func Test_Create_ExplicitAvailable(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())

	res, err := svc.Create(context.Background(), CreateBookRequest{
		Title:           "在庫調整済み",
		TotalCopies:     5,
		AvailableCopies: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCopies)
	assert.Equal(t, 2, res.AvailableCopies)
}

// ===== Update =====

func createOne(t *testing.T, svc *Service, total, available int) *BookResponse {
	t.Helper()
	res, err := svc.Create(context.Background(), CreateBookRequest{
		Title:           "Go入門",
		TotalCopies:     total,
		AvailableCopies: intPtr(available),
	})
	require.NoError(t, err)
	return res
}

func Test_Update_TotalDeltaPreservesBorrowedCount(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())
	// 5冊中2冊貸出中（available=3）
	b := createOne(t, svc, 5, 3)

	// total を 7 に増やす → 貸出中2冊はそのままで available=5
	res, err := svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		TotalCopies: intPtr(7),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalCopies)
	assert.Equal(t, 5, res.AvailableCopies)

	// total を 2 に減らす → available=0
	res, err = svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		TotalCopies: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCopies)
	assert.Equal(t, 0, res.AvailableCopies)

	// 貸出中2冊を下回る総数は拒否
	_, err = svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		TotalCopies: intPtr(1),
	})
	require.Error(t, err)
	assert.Equal(t, CodeConflict, err.(*APIError).Code)
}

func Test_Update_PartialFields(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())
	b := createOne(t, svc, 3, 3)

	res, err := svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		Author:   strPtr("新しい著者"),
		ImageURL: strPtr("https://example.com/cover.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go入門", res.Title)
	assert.Equal(t, "新しい著者", res.Author)
	require.NotNil(t, res.ImageURL)
	assert.Equal(t, "https://example.com/cover.png", *res.ImageURL)
	assert.Equal(t, 3, res.AvailableCopies)

	// 空文字を渡すとURLはクリアされる
	res, err = svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		ImageURL: strPtr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, res.ImageURL)
}

func Test_Update_EmptyTitleRejected(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())
	b := createOne(t, svc, 1, 1)

	_, err := svc.Update(context.Background(), b.BookID, UpdateBookRequest{
		Title: strPtr("   "),
	})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*APIError).Code)
}

// ===== Delete =====

func Test_Delete(t *testing.T) {
	svc := newServiceWithStore(newFakeStore())
	b := createOne(t, svc, 1, 1)

	require.NoError(t, svc.Delete(context.Background(), b.BookID))

	err := svc.Delete(context.Background(), b.BookID)
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)
}
