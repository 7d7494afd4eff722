package ods_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

func TestQuery_AbsentParametersAreSkipped(t *testing.T) {
	t.Parallel()

	query := ods.Query{}.
		AddString("a", nil).
		AddInt("b", nil).
		AddBool("c", nil)

	assert.Empty(t, query)
	assert.Empty(t, query.Encode())
}

func TestQuery_Stringification(t *testing.T) {
	t.Parallel()

	query := ods.Query{}.
		AddInt("n", ods.Ptr(-12)).
		AddBool("yes", ods.Ptr(true)).
		AddBool("no", ods.Ptr(false)).
		AddString("s", ods.Ptr("x y&z"))

	assert.Equal(t, "n=-12&yes=true&no=false&s=x+y%26z", query.Encode())

	value, ok := query.Get("yes")
	assert.True(t, ok)
	assert.Equal(t, "true", value)

	_, ok = query.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, "x y&z", query.ToValues().Get("s"))
}

func TestListEntriesParams_Query(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params ods.ListEntriesParams
		want   string
	}{
		{
			name: "nothing set",
			want: "",
		},
		{
			name:   "page size only",
			params: ods.ListEntriesParams{MaxPageSize: ods.Ptr(10)},
			want:   "max_page_size=10",
		},
		{
			name: "everything set",
			params: ods.ListEntriesParams{
				MaxPageSize: ods.Ptr(5),
				PageToken:   ods.Ptr(ods.PageToken("abc=")),
				OrderBy:     ods.Ptr("desc"),
				Filter:      ods.Ptr("entry > 1"),
			},
			want: "max_page_size=5&page_token=abc%3D&order_by=desc&filter=entry+%3E+1",
		},
		{
			name:   "empty strings are present values",
			params: ods.ListEntriesParams{OrderBy: ods.Ptr("")},
			want:   "order_by=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.params.Query().Encode())
		})
	}
}

func TestWriteParams_Query(t *testing.T) {
	t.Parallel()

	create := ods.CreateEntryParams{ID: "u1", Value: 42}
	assert.Equal(t, "id=u1", create.Query().Encode())

	update := ods.UpdateEntryParams{ID: "u1"}
	assert.Empty(t, update.Query())

	update.AllowMissing = ods.Ptr(true)
	assert.Equal(t, "allow_missing=true", update.Query().Encode())

	update.AllowMissing = ods.Ptr(false)
	assert.Equal(t, "allow_missing=false", update.Query().Encode())
}
