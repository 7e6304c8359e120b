package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(records []Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r["id"]
	}
	return out
}

func TestSortRecords_MultiKey(t *testing.T) {
	records := []Record{
		{"id": 1, "votes": 5, "title": "b"},
		{"id": 2, "votes": 9, "title": "a"},
		{"id": 3, "votes": 5, "title": "a"},
	}
	sort, err := ParseSort("-votes,title")
	require.NoError(t, err)

	got := SortRecords(records, sort)
	assert.Equal(t, []any{2, 3, 1}, ids(got))
	assert.Equal(t, []any{1, 2, 3}, ids(records), "input must not be reordered")
}

func TestSortRecords_NullsLastBothDirections(t *testing.T) {
	records := []Record{
		{"id": 1, "votes": nil},
		{"id": 2, "votes": 3},
		{"id": 3},
		{"id": 4, "votes": 7},
	}
	asc := SortRecords(records, []SortCriterion{{Field: "votes", Direction: Asc}})
	assert.Equal(t, []any{2, 4, 1, 3}, ids(asc))

	desc := SortRecords(records, []SortCriterion{{Field: "votes", Direction: Desc}})
	assert.Equal(t, []any{4, 2, 1, 3}, ids(desc))
}

func TestSortRecords_StableOnTies(t *testing.T) {
	records := []Record{
		{"id": 1, "status": "x"},
		{"id": 2, "status": "x"},
		{"id": 3, "status": "a"},
		{"id": 4, "status": "x"},
	}
	got := SortRecords(records, []SortCriterion{{Field: "status", Direction: Desc}})
	assert.Equal(t, []any{1, 2, 4, 3}, ids(got))
}

func TestSortRecords_NoCriteriaKeepsOrder(t *testing.T) {
	records := []Record{{"id": 2}, {"id": 1}}
	assert.Equal(t, []any{2, 1}, ids(SortRecords(records, nil)))
}

func TestPaginate(t *testing.T) {
	records := make([]Record, 10)
	for i := range records {
		records[i] = Record{"id": i + 1}
	}
	assert.Equal(t, []any{4, 5, 6}, ids(Paginate(records, Params{Page: 2, Limit: 3})))
	assert.Equal(t, []any{10}, ids(Paginate(records, Params{Page: 4, Limit: 3})))

	past := Paginate(records, Params{Page: 5, Limit: 3})
	assert.NotNil(t, past)
	assert.Empty(t, past)
}
