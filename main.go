package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "querykit",
		Short: "Collection query engine: filter, sort, page, fields and include over REST listings",
		Long: `querykit serves REST collection endpoints driven by the filter, sort,
page, limit, fields and include query parameters.

Environment variables (also read from ./.env):
  APP_ADDR=:8080
  GIN_MODE=
  DB_DSN=                 empty serves the seeded in-memory collection
  CORS_ALLOWED_ORIGINS=   comma separated
  LOG_QUERIES=false`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newPlanCmd())

	if err := root.Execute(); err != nil {
		log.Printf("[MAIN] action=exit err=%v", err)
		os.Exit(1)
	}
}
