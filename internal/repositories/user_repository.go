package repositories

import (
	"context"
	"database/sql"
	"strings"

	intconfig "querykit/internal/config"
	intdb "querykit/internal/db"
	"querykit/internal/domain"
	"querykit/internal/query"
)

// UserLookup batch-loads users for side-loading.
type UserLookup interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]query.Record, error)
}

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// FindByIDs returns the public projection of each found user keyed by id.
func (r UserRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]query.Record, error) {
	out := map[int64]query.Record{}
	if len(ids) == 0 {
		return out, nil
	}

	db := r.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "database not connected"}
	}
	if !intdb.HasTable(ctx, db, "users") {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := db.QueryContext(ctx, "SELECT id, name FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, domain.InternalError{Msg: "query users", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name sql.NullString
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, domain.InternalError{Msg: "scan user", Err: err}
		}
		out[id] = query.Record{"id": id, "name": intdb.NullableString(name)}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Msg: "iterate users", Err: err}
	}
	return out, nil
}

// MemoryUsers is a UserLookup over a fixed table.
type MemoryUsers map[int64]query.Record

func (m MemoryUsers) FindByIDs(_ context.Context, ids []int64) (map[int64]query.Record, error) {
	out := map[int64]query.Record{}
	for _, id := range ids {
		if u, ok := m[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// ArticleRelations implements query.Expander for articles. The only
// relation is "author", resolved through authorId.
type ArticleRelations struct {
	Users UserLookup
}

func (r ArticleRelations) Expand(ctx context.Context, relation string, records []query.Record) ([]any, bool, error) {
	switch relation {
	case "author":
		values, err := r.authors(ctx, records)
		return values, true, err
	}
	return nil, false, nil
}

func (r ArticleRelations) authors(ctx context.Context, records []query.Record) ([]any, error) {
	values := make([]any, len(records))
	if r.Users == nil {
		return values, nil
	}

	seen := map[int64]bool{}
	var ids []int64
	for _, rec := range records {
		id, ok := intdb.AsInt64(rec["authorId"])
		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := r.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		id, ok := intdb.AsInt64(rec["authorId"])
		if !ok {
			continue
		}
		if u, ok := users[id]; ok {
			values[i] = u
		}
	}
	return values, nil
}
