package students

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	students map[string]Student // key: card_id
}

func (f *fakeStore) GetByCardID(_ context.Context, cardID string) (*Student, error) {
	m, ok := f.students[cardID]
	if !ok {
		return nil, ErrNotFound("student not found")
	}
	cp := m
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, nameQuery string, _ Page) ([]Student, int64, error) {
	var out []Student
	for _, m := range f.students {
		if nameQuery != "" && !strings.Contains(m.Name, nameQuery) {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func Test_GetByCardID_NormalizesInput(t *testing.T) {
	svc := &Service{store: &fakeStore{students: map[string]Student{
		"CS-123-11": {CardID: "CS-123-11", Name: "Ayesha Khan", AccountID: "acct-1"},
	}}}

	res, err := svc.GetByCardID(context.Background(), "  cs-123-11 ")
	require.NoError(t, err)
	assert.Equal(t, "Ayesha Khan", res.Name)
	assert.Equal(t, "CS-123-11", res.CardID)

	_, err = svc.GetByCardID(context.Background(), "CS-999-11")
	require.Error(t, err)
	assert.Equal(t, CodeNotFound, err.(*APIError).Code)

	_, err = svc.GetByCardID(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*APIError).Code)
}

func Test_List_FiltersByName(t *testing.T) {
	svc := &Service{store: &fakeStore{students: map[string]Student{
		"CS-1-11": {CardID: "CS-1-11", Name: "Ayesha Khan"},
		"CS-2-11": {CardID: "CS-2-11", Name: "Bilal Ahmed"},
	}}}

	res, err := svc.List(context.Background(), "Khan", Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "CS-1-11", res.Items[0].CardID)
	assert.Equal(t, int64(1), res.Total)

	res, err = svc.List(context.Background(), "", Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
}
