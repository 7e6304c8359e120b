package query

import (
	"regexp"
	"sort"
	"strings"

	"querykit/internal/domain"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)

func validName(s string) bool { return namePattern.MatchString(s) }

// FieldSet is a sparse fieldset. A nil FieldSet selects every field.
type FieldSet []string

func (f FieldSet) All() bool { return f == nil }

func (f FieldSet) Contains(name string) bool {
	if f == nil {
		return true
	}
	i := sort.SearchStrings(f, name)
	return i < len(f) && f[i] == name
}

// IncludeSet lists relations to side-load. Empty means no expansion.
type IncludeSet []string

func (s IncludeSet) Contains(name string) bool {
	i := sort.SearchStrings(s, name)
	return i < len(s) && s[i] == name
}

// ParseFields parses "id,title,author.name". Blank input, or input with no
// names left after dropping empty tokens, selects all fields.
func ParseFields(raw string) (FieldSet, error) {
	names, err := parseNames("fields", "field", raw)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return FieldSet(names), nil
}

// ParseIncludes parses "author,comments".
func ParseIncludes(raw string) (IncludeSet, error) {
	names, err := parseNames("include", "relation", raw)
	if err != nil {
		return nil, err
	}
	return IncludeSet(names), nil
}

// parseNames splits, trims, drops empties, de-duplicates and validates.
// The result is sorted so lookups and output are deterministic.
func parseNames(param, noun, raw string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(raw) == "" {
		return out, nil
	}

	seen := map[string]bool{}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" || seen[token] {
			continue
		}
		if !validName(token) {
			return nil, domain.Invalid(param, "invalid %s name: %s (must contain only alphanumeric characters, underscores, and dots)", noun, token)
		}
		seen[token] = true
		out = append(out, token)
	}
	sort.Strings(out)
	return out, nil
}
