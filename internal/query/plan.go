package query

// RawParams carries the untouched query-string values of a collection request.
type RawParams struct {
	Filter  string `form:"filter"`
	Sort    string `form:"sort"`
	Page    string `form:"page"`
	Limit   string `form:"limit"`
	Fields  string `form:"fields"`
	Include string `form:"include"`
}

// Plan is the validated, immutable execution plan of one request.
type Plan struct {
	Filter   *Criteria       `json:"filter"`
	Sort     []SortCriterion `json:"sort"`
	Page     Params          `json:"page"`
	Fields   FieldSet        `json:"fields"`
	Includes IncludeSet      `json:"include"`
}

// ParsePlan parses all five inputs. The first invalid parameter fails the
// whole request; no partial plan is returned.
func ParsePlan(raw RawParams) (Plan, error) {
	filter, err := ParseFilter(raw.Filter)
	if err != nil {
		return Plan{}, err
	}
	sort, err := ParseSort(raw.Sort)
	if err != nil {
		return Plan{}, err
	}
	page, err := ParseParamStrings(raw.Page, raw.Limit)
	if err != nil {
		return Plan{}, err
	}
	fields, err := ParseFields(raw.Fields)
	if err != nil {
		return Plan{}, err
	}
	includes, err := ParseIncludes(raw.Include)
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Filter:   filter,
		Sort:     sort,
		Page:     page,
		Fields:   fields,
		Includes: includes,
	}, nil
}

// WithDefaultSort returns a copy of the plan that sorts by def when the
// request named no sort keys.
func (p Plan) WithDefaultSort(def ...SortCriterion) Plan {
	if len(p.Sort) == 0 && len(def) > 0 {
		p.Sort = append([]SortCriterion(nil), def...)
	}
	return p
}
