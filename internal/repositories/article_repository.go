package repositories

import (
	"context"
	"database/sql"
	"log"
	"strings"

	intconfig "querykit/internal/config"
	intdb "querykit/internal/db"
	"querykit/internal/domain"
	"querykit/internal/query"
	"querykit/internal/query/sqlspec"
)

// ArticleColumns is the filter/sort whitelist for the articles table.
var ArticleColumns = sqlspec.Columns{
	"id":        "a.id",
	"title":     "a.title",
	"status":    "a.status",
	"votes":     "a.votes",
	"authorId":  "a.author_id",
	"tags":      "a.tags",
	"summary":   "a.summary",
	"createdAt": "a.created_at",
}

// Columns older schemas may lack; they read as NULL and cannot be filtered on.
var optionalArticleColumns = []string{"tags", "summary"}

// ArticleRepository serves article listings from MySQL.
type ArticleRepository struct {
	DB         *sql.DB
	LogQueries bool
}

func (r ArticleRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// Query implements query.Source.
func (r ArticleRepository) Query(ctx context.Context, plan query.Plan) (query.Page, error) {
	empty := query.Page{Records: []query.Record{}}

	db := r.db()
	if db == nil {
		return query.Page{}, domain.InternalError{Msg: "database not connected"}
	}
	if !intdb.HasTable(ctx, db, "articles") {
		return empty, nil
	}

	cols, selectSQL := r.schema(ctx, db)
	where, err := sqlspec.Where(plan.Filter, cols)
	if err != nil {
		return query.Page{}, err
	}
	orderBy, err := sqlspec.OrderBy(plan.Sort, cols, "a.id")
	if err != nil {
		return query.Page{}, err
	}

	whereSQL := ""
	if !where.Empty() {
		whereSQL = " WHERE " + where.SQL
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM articles a" + whereSQL
	if err := db.QueryRowContext(ctx, countSQL, where.Args...).Scan(&total); err != nil {
		return query.Page{}, domain.InternalError{Msg: "count articles", Err: err}
	}
	if plan.Page.PastEnd(total) {
		empty.Total = total
		return empty, nil
	}

	window := sqlspec.LimitOffset(plan.Page)
	parts := []string{selectSQL + whereSQL}
	if orderBy != "" {
		parts = append(parts, orderBy)
	}
	parts = append(parts, window.SQL)
	stmt := strings.Join(parts, " ")

	args := make([]any, 0, len(where.Args)+len(window.Args))
	args = append(args, where.Args...)
	args = append(args, window.Args...)

	if r.LogQueries {
		log.Printf("[ARTICLES] action=query sql=%q args=%d", stmt, len(args))
	}

	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return query.Page{}, domain.InternalError{Msg: "query articles", Err: err}
	}
	defer rows.Close()

	out := []query.Record{}
	for rows.Next() {
		var (
			id        int64
			title     string
			status    string
			votes     sql.NullInt64
			authorID  sql.NullInt64
			tags      []byte
			summary   sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&id, &title, &status, &votes, &authorID, &tags, &summary, &createdAt); err != nil {
			return query.Page{}, domain.InternalError{Msg: "scan article", Err: err}
		}
		out = append(out, query.Record{
			"id":        id,
			"title":     title,
			"status":    status,
			"votes":     intdb.NullableInt(votes),
			"authorId":  intdb.NullableInt(authorID),
			"tags":      intdb.JSONArray(tags),
			"summary":   intdb.NullableString(summary),
			"createdAt": intdb.NullableTime(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return query.Page{}, domain.InternalError{Msg: "iterate articles", Err: err}
	}

	return query.Page{Records: out, Total: total}, nil
}

// schema narrows the whitelist to the columns present and builds the
// matching SELECT list.
func (r ArticleRepository) schema(ctx context.Context, db *sql.DB) (sqlspec.Columns, string) {
	cols := make(sqlspec.Columns, len(ArticleColumns))
	for k, v := range ArticleColumns {
		cols[k] = v
	}

	sel := []string{"a.id", "a.title", "a.status", "a.votes", "a.author_id"}
	for _, name := range optionalArticleColumns {
		if intdb.HasColumn(ctx, db, "articles", name) {
			sel = append(sel, "a."+name)
			continue
		}
		sel = append(sel, "NULL")
		delete(cols, name)
	}
	sel = append(sel, "a.created_at")

	return cols, "SELECT " + strings.Join(sel, ", ") + " FROM articles a"
}
