package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf_UnsignedAboveInt64BecomesFloat(t *testing.T) {
	big, ok := ValueOf(uint64(math.MaxUint64))
	require.True(t, ok)
	assert.Equal(t, KindFloat, big.Kind())

	cmp, ok := big.Compare(Int(0))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	cmp, ok = big.Compare(Int(math.MaxInt64))
	require.True(t, ok)
	assert.Equal(t, 1, cmp)

	edge, ok := ValueOf(uint64(math.MaxInt64))
	require.True(t, ok)
	assert.Equal(t, Int(math.MaxInt64), edge)

	small, ok := ValueOf(uint(7))
	require.True(t, ok)
	assert.Equal(t, Int(7), small)
}

func TestFilter_UnsignedFieldAboveInt64(t *testing.T) {
	records := []Record{
		{"id": 1, "hits": uint64(math.MaxUint64)},
		{"id": 2, "hits": uint64(10)},
	}
	got := Filter(records, mustFilter(t, `{"hits":{"$gt":100}}`))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0]["id"])
}
