package query

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"

	"querykit/internal/domain"
)

const filterParam = "filter"

// MaxFilterDepth bounds JSON nesting in a filter expression.
const MaxFilterDepth = 32

// fieldOperators maps operator keys accepted inside a field object.
var fieldOperators = map[string]Operator{
	"$eq":         Equals,
	"$ne":         NotEquals,
	"$gt":         GreaterThan,
	"$gte":        GreaterThanOrEqual,
	"$lt":         LessThan,
	"$lte":        LessThanOrEqual,
	"$contains":   Contains,
	"$startsWith": StartsWith,
	"$endsWith":   EndsWith,
	"$in":         In,
	"$nin":        NotIn,
	"$size":       Size,
	"$isNull":     IsNull,
}

var logicalOperators = map[string]Operator{
	"$and": And,
	"$or":  Or,
	"$not": Not,
}

// ParseFilter parses the filter query parameter. Blank input yields a nil
// tree (no filtering). Any malformed fragment rejects the whole filter.
func ParseFilter(raw string) (*Criteria, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	root, err := decodeFilterJSON(raw)
	if err != nil {
		return nil, err
	}
	if root.kind != nodeObject {
		return nil, domain.Invalid(filterParam, "invalid filter structure: expected object")
	}
	if len(root.members) == 0 {
		return nil, domain.Invalid(filterParam, "filter cannot be empty")
	}
	return parseObject(root)
}

func parseNode(n *jsonNode) (*Criteria, error) {
	if n.kind != nodeObject {
		return nil, domain.Invalid(filterParam, "invalid filter structure: expected object")
	}
	return parseObject(n)
}

// parseObject turns every key of the object into a criterion; more than one
// key combines under an implicit AND in source order.
func parseObject(n *jsonNode) (*Criteria, error) {
	if len(n.members) == 0 {
		return nil, domain.Invalid(filterParam, "filter cannot be empty")
	}

	out := make([]*Criteria, 0, len(n.members))
	for _, m := range n.members {
		var (
			c   *Criteria
			err error
		)
		if op, ok := logicalOperators[m.key]; ok {
			c, err = parseLogical(m.key, op, m.value)
		} else {
			c, err = parseField(m.key, m.value)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if len(out) == 1 {
		return out[0], nil
	}
	return AllOf(out...), nil
}

func parseLogical(key string, op Operator, n *jsonNode) (*Criteria, error) {
	if op == Not {
		if n.kind != nodeObject {
			return nil, domain.Invalid(filterParam, "$not operator requires an object")
		}
		child, err := parseNode(n)
		if err != nil {
			return nil, err
		}
		return Negate(child), nil
	}

	if n.kind != nodeArray {
		return nil, domain.Invalid(filterParam, "%s operator requires an array of conditions", key)
	}
	if len(n.items) == 0 {
		return nil, domain.Invalid(filterParam, "%s operator requires at least one condition", key)
	}
	children := make([]*Criteria, 0, len(n.items))
	for _, item := range n.items {
		child, err := parseNode(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return composite(op, children), nil
}

func parseField(field string, n *jsonNode) (*Criteria, error) {
	if field == "" {
		return nil, domain.Invalid(filterParam, "empty field name")
	}
	if strings.HasPrefix(field, "$") {
		return nil, domain.Invalid(filterParam, "unknown operator: %s", field)
	}

	if n.kind != nodeObject {
		v, err := scalarValue(field, n)
		if err != nil {
			return nil, err
		}
		return Leaf(field, Equals, v), nil
	}

	switch len(n.members) {
	case 0:
		return nil, domain.Invalid(filterParam, "empty operator object for field: %s", field)
	case 1:
	default:
		return nil, domain.Invalid(filterParam, "field %s must have exactly one operator", field)
	}

	m := n.members[0]
	op, ok := fieldOperators[m.key]
	if !ok {
		return nil, domain.Invalid(filterParam, "unknown operator: %s", m.key)
	}

	switch op {
	case In, NotIn:
		if m.value.kind != nodeArray {
			return nil, domain.Invalid(filterParam, "expected array value for %s operator on field %s", m.key, field)
		}
		items := make([]Value, 0, len(m.value.items))
		for _, item := range m.value.items {
			v, err := scalarValue(field, item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return Leaf(field, op, Value{kind: KindList, list: items}), nil
	case Size:
		v, err := scalarValue(field, m.value)
		if err != nil {
			return nil, err
		}
		if v.Kind() != KindInt {
			return nil, domain.Invalid(filterParam, "$size operator on field %s requires an integer", field)
		}
		return Leaf(field, op, v), nil
	}

	v, err := scalarValue(field, m.value)
	if err != nil {
		return nil, err
	}
	return Leaf(field, op, v), nil
}

func scalarValue(field string, n *jsonNode) (Value, error) {
	if n.kind != nodeScalar {
		return Value{}, domain.Invalid(filterParam, "unsupported value type for field %s: %s", field, n.kind)
	}
	return n.scalar, nil
}

type nodeKind int

const (
	nodeScalar nodeKind = iota
	nodeObject
	nodeArray
)

func (k nodeKind) String() string {
	switch k {
	case nodeObject:
		return "object"
	case nodeArray:
		return "array"
	}
	return "scalar"
}

type jsonMember struct {
	key   string
	value *jsonNode
}

// jsonNode keeps object members in source order, which map decoding would lose.
type jsonNode struct {
	kind    nodeKind
	scalar  Value
	members []jsonMember
	items   []*jsonNode
}

func decodeFilterJSON(raw string) (*jsonNode, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	root, err := readNode(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, domain.Invalid(filterParam, "invalid filter JSON: unexpected data after top-level object")
	}
	return root, nil
}

func readNode(dec *json.Decoder, depth int) (*jsonNode, error) {
	if depth > MaxFilterDepth {
		return nil, domain.Invalid(filterParam, "filter nesting exceeds %d levels", MaxFilterDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &jsonNode{kind: nodeObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, malformed(err)
				}
				key, _ := keyTok.(string)
				val, err := readNode(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.members = append(n.members, jsonMember{key: key, value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, malformed(err)
			}
			return n, nil
		case '[':
			n := &jsonNode{kind: nodeArray}
			for dec.More() {
				item, err := readNode(dec, depth+1)
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, malformed(err)
			}
			return n, nil
		}
		return nil, domain.Invalid(filterParam, "invalid filter JSON: unexpected %q", t.String())
	case json.Number:
		v, err := numberValue(t)
		if err != nil {
			return nil, err
		}
		return &jsonNode{scalar: v}, nil
	case string:
		return &jsonNode{scalar: String(t)}, nil
	case bool:
		return &jsonNode{scalar: Bool(t)}, nil
	case nil:
		return &jsonNode{scalar: Null()}, nil
	}
	return nil, domain.Invalid(filterParam, "invalid filter JSON")
}

// numberValue keeps integer literals as Int and everything else as Float.
// Literals outside the float64 range are rejected.
func numberValue(n json.Number) (Value, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, domain.Invalid(filterParam, "number out of range: %s", n.String())
	}
	return Float(f), nil
}

func malformed(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return domain.ValidationError{Field: filterParam, Msg: "invalid filter JSON: " + err.Error(), Err: err}
}
