package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/internal/domain"
)

func TestParsePlan_Defaults(t *testing.T) {
	plan, err := ParsePlan(RawParams{})
	require.NoError(t, err)
	assert.Nil(t, plan.Filter)
	assert.Empty(t, plan.Sort)
	assert.Equal(t, Params{Page: 1, Limit: 20}, plan.Page)
	assert.True(t, plan.Fields.All())
	assert.Empty(t, plan.Includes)
}

func TestParsePlan_FirstInvalidParameterFails(t *testing.T) {
	cases := []struct {
		raw   RawParams
		field string
	}{
		{RawParams{Filter: `{`, Sort: "++x"}, "filter"},
		{RawParams{Sort: "++x", Page: "0"}, "sort"},
		{RawParams{Page: "0", Limit: "-1"}, "page"},
		{RawParams{Limit: "x"}, "limit"},
		{RawParams{Fields: "a b"}, "fields"},
		{RawParams{Include: "a;b"}, "include"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			plan, err := ParsePlan(tc.raw)
			verr, ok := domain.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, Plan{}, plan)
		})
	}
}

func TestPlan_WithDefaultSort(t *testing.T) {
	def := SortCriterion{Field: "createdAt", Direction: Desc}

	plan, err := ParsePlan(RawParams{})
	require.NoError(t, err)
	assert.Equal(t, []SortCriterion{def}, plan.WithDefaultSort(def).Sort)
	assert.Empty(t, plan.Sort)

	plan, err = ParsePlan(RawParams{Sort: "title"})
	require.NoError(t, err)
	assert.Equal(t, "title", plan.WithDefaultSort(def).Sort[0].Field)
}
