package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/internal/domain"
	"querykit/internal/query"
	"querykit/internal/repositories"
)

type failingSource struct{ err error }

func (f failingSource) Query(context.Context, query.Plan) (query.Page, error) {
	return query.Page{}, f.err
}

func articleListing() ListingService {
	return ListingService{
		Resource:    "articles",
		Source:      repositories.DemoArticles(),
		Expander:    repositories.ArticleRelations{Users: repositories.DemoUsers()},
		DefaultSort: []query.SortCriterion{{Field: "createdAt", Direction: query.Desc}},
		RequestID:   "test",
	}
}

func TestListingService_DefaultSortApplies(t *testing.T) {
	resp, err := articleListing().List(context.Background(), query.RawParams{Limit: "3", Fields: "id"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, []any{int64(12), int64(11), int64(10)}, []any{resp.Data[0]["id"], resp.Data[1]["id"], resp.Data[2]["id"]})
	assert.Equal(t, int64(12), resp.Pagination.Total)
	assert.Equal(t, 4, resp.Pagination.TotalPages)
}

func TestListingService_ExplicitSortWins(t *testing.T) {
	resp, err := articleListing().List(context.Background(), query.RawParams{Sort: "votes", Limit: "1"})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(3), resp.Data[0]["id"])
}

func TestListingService_ValidationError(t *testing.T) {
	_, err := articleListing().List(context.Background(), query.RawParams{Page: "0"})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "page", verr.Field)
}

func TestListingService_SourceFailure(t *testing.T) {
	boom := errors.New("db down")
	svc := ListingService{Resource: "articles", Source: failingSource{err: boom}}

	_, err := svc.List(context.Background(), query.RawParams{})
	assert.ErrorIs(t, err, boom)
}

func TestListingService_MissingSource(t *testing.T) {
	_, err := ListingService{Resource: "articles"}.List(context.Background(), query.RawParams{})
	var ierr domain.InternalError
	assert.True(t, errors.As(err, &ierr))
}
