package query

import (
	"context"
	"fmt"
)

// Page is one slice of a collection plus the total count before paging.
type Page struct {
	Records []Record
	Total   int64
}

// Source executes the filter, sort and page steps of a plan, either in
// memory or against a store.
type Source interface {
	Query(ctx context.Context, plan Plan) (Page, error)
}

// Expander resolves a relation for a batch of records. The returned slice
// is parallel to records; nil entries mean "no related value". ok is false
// when the relation is unknown, in which case it is skipped.
type Expander interface {
	Expand(ctx context.Context, relation string, records []Record) (values []any, ok bool, err error)
}

// Response is the collection envelope.
type Response struct {
	Data       []Record `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// Assemble runs the fixed pipeline: filter, sort, paginate (src),
// select fields, expand includes, wrap with metadata. exp may be nil.
func Assemble(ctx context.Context, src Source, exp Expander, plan Plan) (Response, error) {
	page, err := src.Query(ctx, plan)
	if err != nil {
		return Response{}, err
	}

	data := make([]Record, len(page.Records))
	for i, rec := range page.Records {
		data[i] = Project(rec, plan.Fields)
	}

	if exp != nil && len(data) > 0 {
		for _, rel := range plan.Includes {
			values, ok, err := exp.Expand(ctx, rel, page.Records)
			if err != nil {
				return Response{}, fmt.Errorf("expand %s: %w", rel, err)
			}
			if !ok {
				continue
			}
			for i := range data {
				if i < len(values) {
					data[i][rel] = values[i]
				}
			}
		}
	}

	return Response{
		Data:       data,
		Pagination: plan.Page.Metadata(page.Total),
	}, nil
}

// MemorySource serves a plan from an in-memory collection.
type MemorySource struct {
	Records []Record
}

func (m MemorySource) Query(_ context.Context, plan Plan) (Page, error) {
	matched := Filter(m.Records, plan.Filter)
	sorted := SortRecords(matched, plan.Sort)
	return Page{
		Records: Paginate(sorted, plan.Page),
		Total:   int64(len(sorted)),
	}, nil
}

// ExpanderFunc adapts a per-relation lookup table to Expander.
type ExpanderFunc map[string]func(ctx context.Context, records []Record) ([]any, error)

func (f ExpanderFunc) Expand(ctx context.Context, relation string, records []Record) ([]any, bool, error) {
	fn, ok := f[relation]
	if !ok {
		return nil, false, nil
	}
	values, err := fn(ctx, records)
	return values, true, err
}
