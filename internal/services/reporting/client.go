package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"finsight/internal/domain/models"
	domsvc "finsight/internal/domain/service"
	xhttp "finsight/pkg/http"
)

// Client fetches precomputed financial summaries from the external reporting
// service. A user the service does not know yields (nil, nil) so callers can
// fall back to ledger-derived figures.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
}

type Option func(*Client)

// WithAPIKey sets the reporting API key sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http = xhttp.NewClient(xhttp.WithTimeout(timeout))
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// summaryResponse is the reporting service wire format.
type summaryResponse struct {
	SavingsRate       *float64               `json:"savings_rate"`
	CategoryBreakdown []models.CategoryShare `json:"category_breakdown"`
}

// FinancialSummary fetches the user's summary figures.
func (c *Client) FinancialSummary(ctx context.Context, userID string) (*models.FinancialSummary, error) {
	opts := &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/users/%s/summary", c.baseURL, url.PathEscape(userID)),
		Headers: map[string]string{},
	}
	if c.apiKey != "" {
		opts.Headers["Authorization"] = "Bearer " + c.apiKey
	}

	resp, err := c.http.SendRequest(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("reporting request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reporting status %d", resp.StatusCode)
	}

	var body summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("reporting decode: %w", err)
	}

	summary := &models.FinancialSummary{
		CategoryBreakdown: body.CategoryBreakdown,
	}
	if body.SavingsRate != nil {
		summary.SavingsRate = *body.SavingsRate
		summary.HasSavingsRate = true
	}
	return summary, nil
}

var _ domsvc.SummaryProvider = (*Client)(nil)
