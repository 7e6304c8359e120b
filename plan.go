package main

import (
	"encoding/json"
	"fmt"
	"io"

	"querykit/internal/query"
	"querykit/internal/query/sqlspec"
	"querykit/internal/repositories"

	"github.com/spf13/cobra"
)

type sqlReport struct {
	Where   string `json:"where"`
	Args    []any  `json:"args"`
	OrderBy string `json:"orderBy"`
	Window  string `json:"window"`
	Bounds  []any  `json:"windowArgs"`
}

type planReport struct {
	Plan query.Plan `json:"plan"`
	SQL  sqlReport  `json:"sql"`
}

func newPlanCmd() *cobra.Command {
	var raw query.RawParams
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Parse query parameters and print the plan and the SQL for the articles table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePlan(cmd.OutOrStdout(), raw)
		},
	}
	f := cmd.Flags()
	f.StringVar(&raw.Filter, "filter", "", `filter JSON, e.g. {"status":"published"}`)
	f.StringVar(&raw.Sort, "sort", "", "sort keys, e.g. -votes,title")
	f.StringVar(&raw.Page, "page", "", "1-indexed page number")
	f.StringVar(&raw.Limit, "limit", "", "page size")
	f.StringVar(&raw.Fields, "fields", "", "sparse fieldset, e.g. id,title")
	f.StringVar(&raw.Include, "include", "", "relations to side-load, e.g. author")
	return cmd
}

func buildPlanReport(raw query.RawParams) (planReport, error) {
	plan, err := query.ParsePlan(raw)
	if err != nil {
		return planReport{}, err
	}
	where, err := sqlspec.Where(plan.Filter, repositories.ArticleColumns)
	if err != nil {
		return planReport{}, err
	}
	orderBy, err := sqlspec.OrderBy(plan.Sort, repositories.ArticleColumns, "a.id")
	if err != nil {
		return planReport{}, err
	}
	window := sqlspec.LimitOffset(plan.Page)
	return planReport{
		Plan: plan,
		SQL: sqlReport{
			Where:   where.SQL,
			Args:    where.Args,
			OrderBy: orderBy,
			Window:  window.SQL,
			Bounds:  window.Args,
		},
	}, nil
}

func writePlan(w io.Writer, raw query.RawParams) error {
	report, err := buildPlanReport(raw)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
