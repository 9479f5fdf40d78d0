// Package bhavcopy fetches and cleans the NSE end-of-day bhavcopy file:
// one CSV per trading date covering every traded instrument.
package bhavcopy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "candlescan/internal/platform/http"
	"candlescan/models"
)

const defaultBaseURL = "https://nsearchives.nseindia.com/products/content"

// Client downloads daily bhavcopy files from the NSE archive.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new bhavcopy Client.
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new bhavcopy archive client.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
			// The archive rejects requests without a browser user agent.
			UserAgent: "Mozilla/5.0",
		}),
		logger: log.With().Str("component", "bhavcopy_client").Logger(),
	}
}

// DayBars fetches and cleans the bhavcopy for one trading day, returning one
// EQ-series PriceBar per symbol. A day with no published file (holidays, or
// dates before the archive window) yields (nil, nil): absence of data is not
// a fault.
func (c *Client) DayBars(ctx context.Context, day time.Time) ([]models.PriceBar, error) {
	url := fmt.Sprintf("%s/sec_bhavdata_full_%s.csv", c.baseURL, day.Format(models.DateLayoutCompact))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpclient.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			c.logger.Debug().Time("day", day).Msg("no bhavcopy published")
			return nil, nil
		}
		return nil, fmt.Errorf("fetching bhavcopy: %w", err)
	}
	defer resp.Body.Close()

	bars, err := Clean(resp.Body)
	if err != nil {
		// A file that cannot be parsed is treated the same as a missing one.
		c.logger.Warn().Err(err).Time("day", day).Msg("unparseable bhavcopy, treating day as empty")
		return nil, nil
	}

	c.logger.Debug().Time("day", day).Int("rows", len(bars)).Msg("fetched bhavcopy")
	return bars, nil
}
