// Package reportsapi fetches the aggregated business data reports are built
// from.
package reportsapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sriamman/reportdesk/internal/errors"
	"github.com/sriamman/reportdesk/internal/metrics"
	"github.com/sriamman/reportdesk/pkg/reporting"
)

const (
	pathSales     = "/reports/sales"
	pathProducts  = "/reports/products"
	pathAnalytics = "/reports/analytics"
	pathCustomers = "/reports/customers"

	maxErrorBody = 4 << 10
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Fingerprint pins the server certificate (SHA-256, colons optional).
	Fingerprint string

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: reports API URL %q", errors.ErrInvalidInput, cfg.BaseURL)
	}

	if u.Scheme == "http" && cfg.Token != "" && !isLoopback(u.Hostname()) {
		log.Warn().Str("url", u.String()).Msg("Sending API token over HTTP - consider enabling HTTPS")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.Fingerprint, cfg.Timeout)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(u.String(), "/"),
		token:      cfg.Token,
		httpClient: httpClient,
	}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (c *Client) request(ctx context.Context, op, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(path, 0)
		if isTimeout(err) {
			return nil, errors.WrapTimeoutError(op, path, err)
		}
		return nil, errors.WrapConnectionError(op, path, err)
	}
	metrics.RecordUpstreamRequest(path, resp.StatusCode)

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, errors.FromStatus(op, path, resp.StatusCode, apiErr)
	}

	return resp, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// getJSON fetches path and decodes the data member of the envelope into out.
func getJSON[T any](ctx context.Context, c *Client, op, path string, params url.Values) (*T, error) {
	resp, err := c.request(ctx, op, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.WrapValidationError(op, path, fmt.Errorf("failed to decode response: %w", err))
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, errors.NewUpstreamError(errors.ErrorTypeAPI, op, path, stderrors.New(msg))
	}

	return &env.Data, nil
}

// GetSales returns the period summary and the per-day series.
func (c *Client) GetSales(ctx context.Context) (*SalesReport, error) {
	params := url.Values{}
	params.Set("groupBy", "day")
	return getJSON[SalesReport](ctx, c, "fetch_sales", pathSales, params)
}

// GetProducts returns the best sellers and per-category product counts.
func (c *Client) GetProducts(ctx context.Context) (*ProductReport, error) {
	return getJSON[ProductReport](ctx, c, "fetch_products", pathProducts, nil)
}

// GetAnalytics returns stock movement and staff aggregates.
func (c *Client) GetAnalytics(ctx context.Context) (*AnalyticsReport, error) {
	return getJSON[AnalyticsReport](ctx, c, "fetch_analytics", pathAnalytics, nil)
}

// GetCustomers returns per-customer purchases. Deployments without the
// endpoint answer 404, which yields an empty report rather than an error.
func (c *Client) GetCustomers(ctx context.Context) (*CustomerReport, error) {
	report, err := getJSON[CustomerReport](ctx, c, "fetch_customers", pathCustomers, nil)
	if stderrors.Is(err, errors.ErrNotFound) {
		log.Debug().Msg("Customer report endpoint not available")
		return &CustomerReport{}, nil
	}
	return report, err
}

// FetchAll loads everything the report kind needs, issuing the calls
// concurrently, and maps it into a report input.
func (c *Client) FetchAll(ctx context.Context, kind reporting.ReportKind) (*reporting.ReportInput, error) {
	if _, err := reporting.ParseKind(string(kind)); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidInput, err)
	}

	var (
		sales     *SalesReport
		products  *ProductReport
		analytics *AnalyticsReport
		customers *CustomerReport
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = c.GetSales(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = c.GetProducts(gctx)
		return err
	})
	switch kind {
	case reporting.KindSales:
		g.Go(func() (err error) {
			customers, err = c.GetCustomers(gctx)
			return err
		})
	case reporting.KindFull:
		g.Go(func() (err error) {
			analytics, err = c.GetAnalytics(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := &reporting.ReportInput{}
	applySales(in, sales)
	applyProducts(in, products, kind == reporting.KindFull)
	if analytics != nil {
		applyAnalytics(in, analytics)
	}
	applyCustomers(in, customers)

	log.Debug().
		Str("kind", string(kind)).
		Int("days", len(in.Series)).
		Int("products", len(in.TopProducts)).
		Int("customers", len(in.Customers)).
		Msg("Fetched report data")

	return in, nil
}
