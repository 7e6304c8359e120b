package query

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

// Record is one item of a collection keyed by field name. Nested objects
// are map[string]any (or Record) and are addressed with dotted paths.
type Record map[string]any

// Resolve looks up a dotted path. A key containing the literal path wins
// over traversal so flat records with dotted column names still resolve.
func Resolve(rec Record, path string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	if v, ok := rec[path]; ok {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}

	var cur any = map[string]any(rec)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(x any) (map[string]any, bool) {
	switch m := x.(type) {
	case map[string]any:
		return m, true
	case Record:
		return map[string]any(m), true
	}
	return nil, false
}

// Predicate compiles a filter tree into a record predicate. A nil tree
// matches everything.
func Predicate(c *Criteria) func(Record) bool {
	if c == nil {
		return func(Record) bool { return true }
	}
	return func(rec Record) bool { return Matches(c, rec) }
}

// Filter returns the records matching c, preserving order.
func Filter(records []Record, c *Criteria) []Record {
	if c == nil {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if Matches(c, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches evaluates the tree against one record. Missing fields read as null.
func Matches(c *Criteria, rec Record) bool {
	switch c.Operator {
	case And:
		for _, ch := range c.Children {
			if !Matches(ch, rec) {
				return false
			}
		}
		return true
	case Or:
		for _, ch := range c.Children {
			if Matches(ch, rec) {
				return true
			}
		}
		return false
	case Not:
		if len(c.Children) != 1 {
			log.Printf("[QUERY] action=malformed_not children=%d", len(c.Children))
			return true
		}
		return !Matches(c.Children[0], rec)
	}

	actual, _ := Resolve(rec, c.Field)
	return matchLeaf(c, actual)
}

func matchLeaf(c *Criteria, actual any) bool {
	switch c.Operator {
	case Equals:
		return equalRaw(actual, c.Value)
	case NotEquals:
		return !equalRaw(actual, c.Value)
	case GreaterThan:
		cmp, ok := compareRaw(actual, c.Value)
		return ok && cmp > 0
	case GreaterThanOrEqual:
		cmp, ok := compareRaw(actual, c.Value)
		return ok && cmp >= 0
	case LessThan:
		cmp, ok := compareRaw(actual, c.Value)
		return ok && cmp < 0
	case LessThanOrEqual:
		cmp, ok := compareRaw(actual, c.Value)
		return ok && cmp <= 0
	case Contains:
		return !isNull(actual) && strings.Contains(lowerText(actual), strings.ToLower(c.Value.Text()))
	case StartsWith:
		return !isNull(actual) && strings.HasPrefix(lowerText(actual), strings.ToLower(c.Value.Text()))
	case EndsWith:
		return !isNull(actual) && strings.HasSuffix(lowerText(actual), strings.ToLower(c.Value.Text()))
	case In:
		return c.Value.Kind() == KindList && inList(actual, c.Value)
	case NotIn:
		return c.Value.Kind() != KindList || !inList(actual, c.Value)
	case IsNull:
		want, _ := c.Value.Bool()
		return isNull(actual) == want
	case Size:
		n, ok := c.Value.Int()
		size, sized := sizeOf(actual)
		return ok && sized && int64(size) == n
	}
	log.Printf("[QUERY] action=unsupported_operator field=%s operator=%s", c.Field, c.Operator)
	return true
}

func inList(actual any, list Value) bool {
	for _, item := range list.list {
		if equalRaw(actual, item) {
			return true
		}
	}
	return false
}

func isNull(x any) bool {
	if x == nil {
		return true
	}
	if v, ok := x.(Value); ok {
		return v.IsNull()
	}
	return false
}

func sizeOf(x any) (int, bool) {
	switch t := x.(type) {
	case []any:
		return len(t), true
	case []string:
		return len(t), true
	case string:
		return utf8.RuneCountInString(t), true
	case Value:
		if t.Kind() == KindList {
			return t.Len(), true
		}
		if s, ok := t.Str(); ok {
			return utf8.RuneCountInString(s), true
		}
	}
	return 0, false
}

// equalRaw compares a record value with an operand. Time fields compare
// against RFC 3339 string operands.
func equalRaw(actual any, operand Value) bool {
	if t, ok := actual.(time.Time); ok {
		ot, ok := operandTime(operand)
		return ok && t.Equal(ot)
	}
	v, ok := ValueOf(actual)
	if !ok {
		return false
	}
	return v.Equal(operand)
}

// compareRaw orders a record value against an operand; ok is false when
// the two cannot be compared, which callers treat as no match.
func compareRaw(actual any, operand Value) (int, bool) {
	if t, ok := actual.(time.Time); ok {
		ot, ok := operandTime(operand)
		if !ok {
			return 0, false
		}
		return t.Compare(ot), true
	}
	v, ok := ValueOf(actual)
	if !ok {
		return 0, false
	}
	return v.Compare(operand)
}

func operandTime(v Value) (time.Time, bool) {
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func lowerText(x any) string {
	if t, ok := x.(time.Time); ok {
		return strings.ToLower(t.Format(time.RFC3339))
	}
	if v, ok := ValueOf(x); ok {
		return strings.ToLower(v.Text())
	}
	return strings.ToLower(fmt.Sprint(x))
}
