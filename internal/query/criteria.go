// Package query turns the collection query parameters (filter, sort,
// page/limit, fields, include) into an immutable Plan and applies that plan
// to an in-memory collection or hands it to a store-backed Source.
//
// Filters use a MongoDB-style JSON syntax:
//
//	{"status":"published"}
//	{"votes":{"$gte":10}}
//	{"$or":[{"status":"draft"},{"status":"archived"}]}
//	{"author.name":{"$startsWith":"jo"}}
//
// Every function in this package is pure; parsed values are never mutated and
// may be shared between goroutines.
package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operator identifies a leaf comparison or a logical combinator.
type Operator int

const (
	Equals Operator = iota + 1
	NotEquals
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	And
	Or
	Not
	Contains
	StartsWith
	EndsWith
	In
	NotIn
	Size
	IsNull
)

var operatorNames = map[Operator]string{
	Equals:             "EQUALS",
	NotEquals:          "NOT_EQUALS",
	GreaterThan:        "GREATER_THAN",
	GreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	LessThan:           "LESS_THAN",
	LessThanOrEqual:    "LESS_THAN_OR_EQUAL",
	And:                "AND",
	Or:                 "OR",
	Not:                "NOT",
	Contains:           "CONTAINS",
	StartsWith:         "STARTS_WITH",
	EndsWith:           "ENDS_WITH",
	In:                 "IN",
	NotIn:              "NOT_IN",
	Size:               "SIZE",
	IsNull:             "IS_NULL",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Logical reports whether o combines child criteria.
func (o Operator) Logical() bool {
	return o == And || o == Or || o == Not
}

func (o Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// Criteria is a node of the parsed filter tree: either a leaf
// (Field, Operator, Value) or a composite (Operator And/Or/Not, Children).
type Criteria struct {
	Field    string
	Operator Operator
	Value    Value
	Children []*Criteria
}

// Leaf builds a field condition.
func Leaf(field string, op Operator, v Value) *Criteria {
	return &Criteria{Field: field, Operator: op, Value: v}
}

// AllOf builds an AND composite. It panics on an empty child list, which the
// parser never produces.
func AllOf(children ...*Criteria) *Criteria {
	return composite(And, children)
}

// AnyOf builds an OR composite.
func AnyOf(children ...*Criteria) *Criteria {
	return composite(Or, children)
}

// Negate builds a NOT composite over exactly one child.
func Negate(child *Criteria) *Criteria {
	return composite(Not, []*Criteria{child})
}

func composite(op Operator, children []*Criteria) *Criteria {
	if len(children) == 0 {
		panic("query: " + op.String() + " requires at least one child")
	}
	cp := make([]*Criteria, len(children))
	copy(cp, children)
	return &Criteria{Operator: op, Children: cp}
}

func (c *Criteria) IsLeaf() bool      { return c != nil && c.Field != "" }
func (c *Criteria) IsComposite() bool { return c != nil && len(c.Children) > 0 }

// Equal compares two trees structurally.
func (c *Criteria) Equal(o *Criteria) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Field != o.Field || c.Operator != o.Operator || len(c.Children) != len(o.Children) {
		return false
	}
	if c.Value.Kind() != o.Value.Kind() || !c.Value.Equal(o.Value) {
		return false
	}
	for i := range c.Children {
		if !c.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Fields lists the distinct leaf field names in tree order.
func (c *Criteria) Fields() []string {
	seen := map[string]bool{}
	var out []string
	var walk func(*Criteria)
	walk = func(n *Criteria) {
		if n == nil {
			return
		}
		if n.IsLeaf() && !seen[n.Field] {
			seen[n.Field] = true
			out = append(out, n.Field)
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(c)
	return out
}

func (c *Criteria) String() string {
	if c == nil {
		return "<nil>"
	}
	if c.IsLeaf() {
		return fmt.Sprintf("%s(%s,%s)", c.Operator, c.Field, c.Value)
	}
	parts := make([]string, len(c.Children))
	for i, ch := range c.Children {
		parts[i] = ch.String()
	}
	return c.Operator.String() + "[" + strings.Join(parts, ",") + "]"
}

func (c *Criteria) MarshalJSON() ([]byte, error) {
	if c.IsLeaf() {
		return json.Marshal(struct {
			Field    string   `json:"field"`
			Operator Operator `json:"operator"`
			Value    Value    `json:"value"`
		}{c.Field, c.Operator, c.Value})
	}
	return json.Marshal(struct {
		Operator Operator    `json:"operator"`
		Children []*Criteria `json:"children"`
	}{c.Operator, c.Children})
}
