package services

import (
	"context"
	"fmt"
	"time"

	"querykit/internal/domain"
	"querykit/internal/metrics"
	"querykit/internal/query"
	"querykit/internal/utils"
)

// ListingService answers one collection request: parse the raw parameters,
// run the assembler pipeline, then log and count the outcome.
type ListingService struct {
	Resource    string
	Source      query.Source
	Expander    query.Expander
	DefaultSort []query.SortCriterion
	RequestID   string
}

func (s ListingService) List(ctx context.Context, raw query.RawParams) (query.Response, error) {
	started := time.Now()

	if s.Source == nil {
		err := domain.InternalError{Msg: "no data source for " + s.Resource}
		s.fail(started, err)
		return query.Response{}, err
	}

	plan, err := query.ParsePlan(raw)
	if err != nil {
		s.fail(started, err)
		return query.Response{}, err
	}
	plan = plan.WithDefaultSort(s.DefaultSort...)

	resp, err := query.Assemble(ctx, s.Source, s.Expander, plan)
	if err != nil {
		s.fail(started, err)
		return query.Response{}, err
	}

	metrics.ObserveListing(s.Resource, metrics.OutcomeOK, started, len(resp.Data))
	utils.LogEvent(s.RequestID, "LISTING", "list", fmt.Sprintf(
		"resource=%s page=%d limit=%d returned=%d total=%d",
		s.Resource, resp.Pagination.Page, resp.Pagination.Limit, len(resp.Data), resp.Pagination.Total,
	))
	return resp, nil
}

func (s ListingService) fail(started time.Time, err error) {
	if verr, ok := domain.AsValidation(err); ok {
		metrics.ObserveRejected(verr.Field)
		metrics.ObserveListing(s.Resource, metrics.OutcomeRejected, started, 0)
		utils.LogEvent(s.RequestID, "LISTING", "rejected", fmt.Sprintf("resource=%s parameter=%s reason=%s", s.Resource, verr.Field, verr.Msg))
		return
	}
	metrics.ObserveListing(s.Resource, metrics.OutcomeFailed, started, 0)
	utils.LogEvent(s.RequestID, "LISTING", "failed", fmt.Sprintf("resource=%s err=%v", s.Resource, err))
}
