package query

import (
	"strings"

	"querykit/internal/domain"
)

const sortParam = "sort"

type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

func (d SortDirection) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

func (d SortDirection) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// SortCriterion is one ORDER BY key. Position in the list decides precedence.
type SortCriterion struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SQL renders the criterion as an ORDER BY fragment, e.g. "votes DESC".
func (s SortCriterion) SQL() string {
	return s.Field + " " + s.Direction.String()
}

// ParseSort parses "-votes,+createdAt,title". A leading "-" sorts
// descending, "+" or no prefix ascending. Empty tokens are skipped.
func ParseSort(raw string) ([]SortCriterion, error) {
	if strings.TrimSpace(raw) == "" {
		return []SortCriterion{}, nil
	}

	out := []SortCriterion{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		sc, err := parseSortToken(token)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func parseSortToken(token string) (SortCriterion, error) {
	dir := Asc
	field := token
	switch token[0] {
	case '-':
		dir = Desc
		field = token[1:]
	case '+':
		field = token[1:]
	}

	if field == "" {
		return SortCriterion{}, domain.Invalid(sortParam, "empty field name in sort string")
	}
	if field[0] == '+' || field[0] == '-' {
		return SortCriterion{}, domain.Invalid(sortParam, "invalid sort format: multiple prefix symbols in %q", token)
	}
	if !validName(field) {
		return SortCriterion{}, domain.Invalid(sortParam, "invalid sort field: %s (must contain only alphanumeric characters, underscores, and dots)", field)
	}
	return SortCriterion{Field: field, Direction: dir}, nil
}

// SortSQL joins criteria into an ORDER BY list: "votes DESC, createdAt ASC".
func SortSQL(criteria []SortCriterion) string {
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = c.SQL()
	}
	return strings.Join(parts, ", ")
}
