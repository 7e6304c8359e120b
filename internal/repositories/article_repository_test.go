package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/internal/domain"
	"querykit/internal/query"
)

var articleCols = []string{"id", "title", "status", "votes", "author_id", "tags", "summary", "created_at"}

const articleSelect = "SELECT a.id, a.title, a.status, a.votes, a.author_id, a.tags, a.summary, a.created_at FROM articles a"

func expectColumns(mock sqlmock.Sqlmock, present ...string) {
	for _, name := range optionalArticleColumns {
		rows := sqlmock.NewRows([]string{"column_name"})
		for _, p := range present {
			if p == name {
				rows.AddRow(name)
			}
		}
		mock.ExpectQuery("information_schema\\.columns").WithArgs("articles", name).WillReturnRows(rows)
	}
}

func expectTable(mock sqlmock.Sqlmock, table string, exists bool) {
	rows := sqlmock.NewRows([]string{"table_name"})
	if exists {
		rows.AddRow(table)
	}
	mock.ExpectQuery("information_schema\\.tables").WithArgs(table).WillReturnRows(rows)
}

func mustPlan(t *testing.T, raw query.RawParams) query.Plan {
	t.Helper()
	plan, err := query.ParsePlan(raw)
	require.NoError(t, err)
	return plan
}

func TestArticleRepository_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a WHERE a.status = ?")).
		WithArgs("published").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta(articleSelect+" WHERE a.status = ? ORDER BY a.votes IS NULL, a.votes DESC, a.id ASC LIMIT ? OFFSET ?")).
		WithArgs("published", 2, 2).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(int64(4), "Profiling", "published", int64(55), int64(3), []byte(`["go","http"]`), "notes", created).
			AddRow(int64(9), "Shutdown", "published", nil, nil, nil, nil, nil))

	repo := ArticleRepository{DB: db}
	page, err := repo.Query(context.Background(), mustPlan(t, query.RawParams{
		Filter: `{"status":"published"}`,
		Sort:   "-votes",
		Page:   "2",
		Limit:  "2",
	}))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(5), page.Total)
	require.Len(t, page.Records, 2)
	assert.Equal(t, query.Record{
		"id":        int64(4),
		"title":     "Profiling",
		"status":    "published",
		"votes":     int64(55),
		"authorId":  int64(3),
		"tags":      []any{"go", "http"},
		"summary":   "notes",
		"createdAt": created,
	}, page.Records[0])
	assert.Nil(t, page.Records[1]["votes"])
	assert.Nil(t, page.Records[1]["authorId"])
	assert.Nil(t, page.Records[1]["tags"])
	assert.Nil(t, page.Records[1]["createdAt"])
}

func TestArticleRepository_NoFilterDefaultWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(articleSelect+" ORDER BY a.id ASC LIMIT ? OFFSET ?")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(int64(1), "Only", "draft", int64(1), int64(1), []byte(`[]`), nil, nil))

	page, err := ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{}))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Len(t, page.Records, 1)
}

func TestArticleRepository_MissingTableIsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", false)

	page, err := ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{}))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(0), page.Total)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
}

func TestArticleRepository_PastLastPageSkipsSelect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	page, err := ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{Page: "2", Limit: "3"}))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(3), page.Total)
	assert.Empty(t, page.Records)
}

func TestArticleRepository_UnknownFieldIsValidationError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")

	_, err = ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{Filter: `{"password":"x"}`}))
	require.Error(t, err)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")
	_, err = ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{Sort: "author.name"}))
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "sort", verr.Field)
}

func TestArticleRepository_CountFailureIsInternal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags", "summary")
	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT COUNT").WillReturnError(boom)

	_, err = ArticleRepository{DB: db}.Query(context.Background(), mustPlan(t, query.RawParams{}))
	require.Error(t, err)
	var ierr domain.InternalError
	assert.True(t, errors.As(err, &ierr))
	assert.Equal(t, "count articles", ierr.Msg)
	assert.ErrorIs(t, err, boom)
}

func TestArticleRelations_Author(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "users", true)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users WHERE id IN (?,?)")).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "Ana").AddRow(int64(3), "Chidi"))

	rel := ArticleRelations{Users: UserRepository{DB: db}}
	records := []query.Record{
		{"id": 1, "authorId": int64(3)},
		{"id": 2, "authorId": nil},
		{"id": 3, "authorId": int64(1)},
		{"id": 4, "authorId": int64(3)},
	}
	values, ok, err := rel.Expand(context.Background(), "author", records)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, values, 4)
	assert.Equal(t, query.Record{"id": int64(3), "name": "Chidi"}, values[0])
	assert.Nil(t, values[1])
	assert.Equal(t, query.Record{"id": int64(1), "name": "Ana"}, values[2])
	assert.Equal(t, values[0], values[3])
}

func TestArticleRelations_UnknownRelation(t *testing.T) {
	values, ok, err := ArticleRelations{Users: DemoUsers()}.Expand(context.Background(), "comments", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, values)
}

func TestDemoArticles_WithAssemble(t *testing.T) {
	plan := mustPlan(t, query.RawParams{
		Filter:  `{"status":"published","tags":{"$size":2}}`,
		Sort:    "-votes",
		Limit:   "2",
		Fields:  "id,title",
		Include: "author",
	})

	resp, err := query.Assemble(context.Background(), DemoArticles(), ArticleRelations{Users: DemoUsers()}, plan)
	require.NoError(t, err)

	// published with two tags: 2(87) 6(64) 9(48) 1(42) 12(29)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Data[0]["id"])
	assert.Equal(t, int64(6), resp.Data[1]["id"])
	assert.Equal(t, query.Record{"id": int64(2), "name": "Bo Lindqvist"}, resp.Data[0]["author"])
	assert.NotContains(t, resp.Data[0], "votes")
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasNext)
}

func TestArticleRepository_OptionalColumnsMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles a")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.id, a.title, a.status, a.votes, a.author_id, a.tags, NULL, a.created_at FROM articles a ORDER BY a.id ASC LIMIT ? OFFSET ?")).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(articleCols).
			AddRow(int64(1), "Only", "draft", nil, nil, nil, nil, nil))

	repo := ArticleRepository{DB: db}
	page, err := repo.Query(context.Background(), mustPlan(t, query.RawParams{}))
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Nil(t, page.Records[0]["summary"])

	expectTable(mock, "articles", true)
	expectColumns(mock, "tags")
	_, err = repo.Query(context.Background(), mustPlan(t, query.RawParams{Filter: `{"summary":{"$isNull":true}}`}))
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "unknown filter field: summary", verr.Msg)
	require.NoError(t, mock.ExpectationsWereMet())
}
