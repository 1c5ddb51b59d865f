// jobmate-review-service
//
// Catalog of internship reviews and internship offers.
// Exposes a REST API, a gRPC CatalogService and WebSocket view streams used
// by the Gateway to implement:
//   - reviews query / submitReview / setReviewStatus / deleteReviews
//   - internships query with filters, sort and pagination
//   - saved searches and recent queries
//
// Offers are imported from Adzuna on a cron schedule; review changes are
// published to Redis for Gateway SSE forward.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "review-service",
		Short:         "Internship review and offer catalog",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newSeedCmd(), newSearchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[review-service] %v\n", err)
		os.Exit(1)
	}
}
