package repositories

import (
	"time"

	"querykit/internal/query"
)

// DemoUsers backs the author relation when no database is configured.
func DemoUsers() MemoryUsers {
	return MemoryUsers{
		1: {"id": int64(1), "name": "Ana Ruiz"},
		2: {"id": int64(2), "name": "Bo Lindqvist"},
		3: {"id": int64(3), "name": "Chidi Okafor"},
	}
}

// DemoArticles is the seeded in-memory collection served when DB_DSN is empty.
func DemoArticles() query.MemorySource {
	day := func(d int) time.Time {
		return time.Date(2024, time.January, d, 9, 0, 0, 0, time.UTC)
	}
	article := func(id int64, title, status string, votes any, authorID any, tags []any, created time.Time) query.Record {
		return query.Record{
			"id":        id,
			"title":     title,
			"status":    status,
			"votes":     votes,
			"authorId":  authorID,
			"tags":      tags,
			"summary":   nil,
			"createdAt": created,
		}
	}

	records := []query.Record{
		article(1, "Getting started with Go modules", "published", int64(42), int64(1), []any{"go", "modules"}, day(2)),
		article(2, "Context cancellation in practice", "published", int64(87), int64(2), []any{"go", "context"}, day(5)),
		article(3, "Draft: generics cookbook", "draft", int64(3), int64(1), []any{"go", "generics"}, day(7)),
		article(4, "Profiling HTTP handlers", "published", int64(55), int64(3), []any{"go", "http", "pprof"}, day(9)),
		article(5, "Structured logging notes", "archived", int64(12), int64(2), []any{"logging"}, day(11)),
		article(6, "Connection pools and MySQL", "published", int64(64), int64(3), []any{"mysql", "database/sql"}, day(14)),
		article(7, "Table-driven tests", "published", int64(71), int64(1), []any{"testing"}, day(16)),
		article(8, "Untitled idea", "draft", nil, nil, []any{}, day(18)),
		article(9, "Graceful shutdown patterns", "published", int64(48), int64(2), []any{"go", "http"}, day(21)),
		article(10, "Prometheus histograms explained", "published", int64(33), int64(3), []any{"metrics"}, day(23)),
		article(11, "Old release notes", "archived", int64(5), int64(1), []any{"release"}, day(26)),
		article(12, "Sparse fieldsets in REST APIs", "published", int64(29), int64(2), []any{"rest", "api"}, day(29)),
	}
	records[3]["summary"] = "Using pprof against gin handlers."
	records[6]["summary"] = "Subtests and golden files."

	return query.MemorySource{Records: records}
}
