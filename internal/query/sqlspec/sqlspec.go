// Package sqlspec translates a parsed query plan into MySQL clause fragments
// with "?" placeholders. Client-supplied field names never reach the SQL
// text: every field is looked up in a Columns whitelist first.
//
// NULL handling mirrors the in-memory evaluator: a comparison against a NULL
// column is "no match", so NOT, NOT_EQUALS and NOT_IN still match rows whose
// column is NULL.
package sqlspec

import (
	"log"
	"strings"

	"querykit/internal/domain"
	"querykit/internal/query"
)

// Columns maps API field names to SQL column expressions.
type Columns map[string]string

// Clause is a SQL fragment and its bind arguments.
type Clause struct {
	SQL  string
	Args []any
}

func (c Clause) Empty() bool { return c.SQL == "" }

// Where translates a filter tree. A nil tree yields an empty Clause.
func Where(c *query.Criteria, cols Columns) (Clause, error) {
	if c == nil {
		return Clause{}, nil
	}
	var b builder
	if err := b.node(c, cols); err != nil {
		return Clause{}, err
	}
	return Clause{SQL: b.sql.String(), Args: b.args}, nil
}

type builder struct {
	sql  strings.Builder
	args []any
}

func (b *builder) node(c *query.Criteria, cols Columns) error {
	switch c.Operator {
	case query.And, query.Or:
		sep := " AND "
		if c.Operator == query.Or {
			sep = " OR "
		}
		b.sql.WriteString("(")
		for i, ch := range c.Children {
			if i > 0 {
				b.sql.WriteString(sep)
			}
			if err := b.node(ch, cols); err != nil {
				return err
			}
		}
		b.sql.WriteString(")")
		return nil
	case query.Not:
		if len(c.Children) != 1 {
			return domain.Invalid("filter", "$not requires exactly one condition")
		}
		b.sql.WriteString("NOT ((")
		if err := b.node(c.Children[0], cols); err != nil {
			return err
		}
		b.sql.WriteString(") IS TRUE)")
		return nil
	}

	col, ok := cols[c.Field]
	if !ok {
		return domain.Invalid("filter", "unknown filter field: %s", c.Field)
	}
	b.leaf(col, c)
	return nil
}

func (b *builder) leaf(col string, c *query.Criteria) {
	v := c.Value
	switch c.Operator {
	case query.Equals:
		if v.IsNull() {
			b.sql.WriteString(col + " IS NULL")
			return
		}
		b.bind(col+" = ?", v.Interface())
	case query.NotEquals:
		if v.IsNull() {
			b.sql.WriteString(col + " IS NOT NULL")
			return
		}
		b.bind("("+col+" <> ? OR "+col+" IS NULL)", v.Interface())
	case query.GreaterThan:
		b.bind(col+" > ?", v.Interface())
	case query.GreaterThanOrEqual:
		b.bind(col+" >= ?", v.Interface())
	case query.LessThan:
		b.bind(col+" < ?", v.Interface())
	case query.LessThanOrEqual:
		b.bind(col+" <= ?", v.Interface())
	case query.Contains:
		b.bind("LOWER("+col+") LIKE ?", "%"+escapeLike(strings.ToLower(v.Text()))+"%")
	case query.StartsWith:
		b.bind("LOWER("+col+") LIKE ?", escapeLike(strings.ToLower(v.Text()))+"%")
	case query.EndsWith:
		b.bind("LOWER("+col+") LIKE ?", "%"+escapeLike(strings.ToLower(v.Text())))
	case query.In:
		b.in(col, v, false)
	case query.NotIn:
		b.in(col, v, true)
	case query.IsNull:
		if want, _ := v.Bool(); want {
			b.sql.WriteString(col + " IS NULL")
		} else {
			b.sql.WriteString(col + " IS NOT NULL")
		}
	case query.Size:
		b.bind("JSON_LENGTH("+col+") = ?", v.Interface())
	default:
		log.Printf("[QUERY] action=unsupported_operator target=sql column=%s operator=%s", col, c.Operator)
		b.sql.WriteString("1=1")
	}
}

// in renders IN / NOT IN. A null list element is matched with IS NULL
// because "col IN (NULL)" is never true. An empty list matches nothing for
// IN and everything for NOT IN.
func (b *builder) in(col string, v query.Value, negate bool) {
	if v.Kind() != query.KindList {
		if negate {
			b.sql.WriteString("1=1")
		} else {
			b.sql.WriteString("1=0")
		}
		return
	}

	var (
		args    []any
		hasNull bool
	)
	for _, item := range v.Items() {
		if item.IsNull() {
			hasNull = true
			continue
		}
		args = append(args, item.Interface())
	}

	var parts []string
	if len(args) > 0 {
		parts = append(parts, col+" IN ("+placeholders(len(args))+")")
	}
	if hasNull {
		parts = append(parts, col+" IS NULL")
	}

	var expr string
	switch len(parts) {
	case 0:
		expr = "1=0"
	case 1:
		expr = parts[0]
	default:
		expr = "(" + strings.Join(parts, " OR ") + ")"
	}

	if negate {
		b.sql.WriteString("NOT ((" + expr + ") IS TRUE)")
	} else {
		b.sql.WriteString(expr)
	}
	b.args = append(b.args, args...)
}

func (b *builder) bind(expr string, arg any) {
	b.sql.WriteString(expr)
	b.args = append(b.args, arg)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// OrderBy renders an ORDER BY clause. NULLs sort last in both directions.
// tiebreak, when set and not already a key, is appended ascending so paging
// over equal keys is deterministic.
func OrderBy(sort []query.SortCriterion, cols Columns, tiebreak string) (string, error) {
	var parts []string
	used := map[string]bool{}
	for _, sc := range sort {
		col, ok := cols[sc.Field]
		if !ok {
			return "", domain.Invalid("sort", "unknown sort field: %s", sc.Field)
		}
		used[col] = true
		parts = append(parts, col+" IS NULL", col+" "+sc.Direction.String())
	}
	if tiebreak != "" && !used[tiebreak] {
		parts = append(parts, tiebreak+" ASC")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "ORDER BY " + strings.Join(parts, ", "), nil
}

// LimitOffset renders the page window.
func LimitOffset(p query.Params) Clause {
	return Clause{SQL: "LIMIT ? OFFSET ?", Args: []any{p.Limit, p.Offset()}}
}
