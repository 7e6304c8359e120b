package query

import (
	"slices"
	"time"
)

// Comparator folds the sort criteria left to right: later criteria only
// break ties of earlier ones. Null (or missing) values sort after every
// non-null value in both directions; non-comparable pairs tie.
func Comparator(criteria []SortCriterion) func(a, b Record) int {
	cs := slices.Clone(criteria)
	return func(a, b Record) int {
		for _, sc := range cs {
			if c := compareField(a, b, sc); c != 0 {
				return c
			}
		}
		return 0
	}
}

func compareField(a, b Record, sc SortCriterion) int {
	av, _ := Resolve(a, sc.Field)
	bv, _ := Resolve(b, sc.Field)

	an, bn := isNull(av), isNull(bv)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}

	c, ok := compareValues(av, bv)
	if !ok {
		return 0
	}
	if sc.Direction == Desc {
		return -c
	}
	return c
}

func compareValues(a, b any) (int, bool) {
	at, aIsTime := a.(time.Time)
	bt, bIsTime := b.(time.Time)
	if aIsTime && bIsTime {
		return at.Compare(bt), true
	}
	if aIsTime || bIsTime {
		return 0, false
	}
	av, ok := ValueOf(a)
	if !ok {
		return 0, false
	}
	bv, ok := ValueOf(b)
	if !ok {
		return 0, false
	}
	return av.Compare(bv)
}

// SortRecords returns a stably sorted copy; the input slice is untouched.
func SortRecords(records []Record, criteria []SortCriterion) []Record {
	out := slices.Clone(records)
	if len(criteria) == 0 {
		return out
	}
	slices.SortStableFunc(out, Comparator(criteria))
	return out
}

// Paginate slices [offset, offset+limit) clamped to the available records.
// A page past the end yields an empty page.
func Paginate(records []Record, p Params) []Record {
	if p.Page < 1 || p.PastEnd(int64(len(records))) {
		return []Record{}
	}
	start := p.Offset()
	end := len(records)
	if p.Limit < end-start {
		end = start + p.Limit
	}
	return records[start:end]
}
