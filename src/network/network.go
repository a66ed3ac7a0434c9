package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sleep-observer/src/helpers"
	"sleep-observer/src/logger"
	"sleep-observer/src/models"
)

const defaultUserAgent = "sleep-observer/1.0"

// maxBodyBytes caps report downloads.
const maxBodyBytes = 8 << 20

type AsyncNetworkManager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	return &AsyncNetworkManager{
		Config: cfg,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) userAgent() string {
	if ua := strings.TrimSpace(nm.Config.Network.UserAgent); ua != "" {
		return ua
	}
	return defaultUserAgent
}

// -----------------------------------------------------------------------------

// Get performs a single GET request. Report fetches are one-shot; the caller
// decides whether to ask again.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError(fmt.Sprintf("invalid url %q", urlStr), err)
	}

	q := reqURL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqURL.RawQuery = q.Encode()
	finalURL := reqURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, helpers.NewNetworkError("failed to build request", err)
	}
	req.Header.Set("User-Agent", nm.userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Info("Request failed: %v", err)
		return nil, helpers.NewNetworkError(fmt.Sprintf("GET %s failed", finalURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		nm.Logger.Info("Bad status %d from %s", resp.StatusCode, finalURL)
		return nil, helpers.NewNetworkError(fmt.Sprintf("bad status: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, helpers.NewNetworkError("failed to read response body", err)
	}
	return body, nil
}

// -----------------------------------------------------------------------------

// ReportFetcher loads nightly reports from the dashboard back end.
type ReportFetcher struct {
	BaseURL string
	Network *AsyncNetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewReportFetcher(cfg *models.MConfig, nm *AsyncNetworkManager, log *logger.Logger) *ReportFetcher {
	return &ReportFetcher{
		BaseURL: strings.TrimRight(cfg.Network.ReportBaseURL, "/"),
		Network: nm,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// FetchSleepReport requests {base}/report/{date}; date must be YYYY-MM-DD.
func (f *ReportFetcher) FetchSleepReport(ctx context.Context, date string) (*models.MSleepReport, error) {
	if f.BaseURL == "" {
		return nil, helpers.NewConfigurationError("network.report_base_url is not configured", nil)
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, helpers.NewValidationError(fmt.Sprintf("invalid report date %q", date))
	}

	body, err := f.Network.Get(ctx, f.BaseURL+"/report/"+url.PathEscape(date), nil)
	if err != nil {
		return nil, err
	}

	var report models.MSleepReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, helpers.NewNetworkError(fmt.Sprintf("malformed report for %s", date), err)
	}
	if report.Date == "" {
		report.Date = date
	}

	f.Logger.Debug("Fetched report %s (%d bytes)", date, len(body))
	return &report, nil
}
