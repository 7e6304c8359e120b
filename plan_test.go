package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/internal/domain"
	"querykit/internal/query"
)

func TestWritePlan(t *testing.T) {
	var buf bytes.Buffer
	err := writePlan(&buf, query.RawParams{
		Filter: `{"status":"published","votes":{"$gte":10}}`,
		Sort:   "-votes",
		Page:   "2",
		Limit:  "5",
		Fields: "title,id",
	})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	sql := out["sql"].(map[string]any)
	assert.Equal(t, "(a.status = ? AND a.votes >= ?)", sql["where"])
	assert.Equal(t, []any{"published", float64(10)}, sql["args"])
	assert.Equal(t, "ORDER BY a.votes IS NULL, a.votes DESC, a.id ASC", sql["orderBy"])
	assert.Equal(t, []any{float64(5), float64(5)}, sql["windowArgs"])

	plan := out["plan"].(map[string]any)
	assert.Equal(t, []any{"id", "title"}, plan["fields"])
	assert.Equal(t, map[string]any{"page": float64(2), "limit": float64(5)}, plan["page"])
	assert.Equal(t, "AND", plan["filter"].(map[string]any)["operator"])
}

func TestWritePlan_Invalid(t *testing.T) {
	err := writePlan(&bytes.Buffer{}, query.RawParams{Sort: "++votes"})
	require.Error(t, err)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)

	_, err = buildPlanReport(query.RawParams{Filter: `{"secret":1}`})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "filter", verr.Field)
}
