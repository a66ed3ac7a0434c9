package interfaces

import (
	"context"

	"sleep-observer/src/models"
)

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for one-shot HTTP requests.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}

// -----------------------------------------------------------------------------
// IReportFetcher loads one nightly report from the dashboard back end.
// -----------------------------------------------------------------------------

type IReportFetcher interface {
	FetchSleepReport(ctx context.Context, date string) (*models.MSleepReport, error)
}
