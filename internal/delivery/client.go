package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/ledgerbridge/qbsync/internal/model"
)

// Client delivers one payload per run to the spreadsheet web endpoint.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a delivery client for the given endpoint URL and API key.
func NewClient(url, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// BuildPayload assembles the delivery payload from all Ok resolved values
// plus the synthesized timestamps. Entries with other statuses are omitted;
// the caller reports them as warnings.
func (c *Client) BuildPayload(runID string, values []model.ResolvedValue, timestamps []model.ResolvedTimestamp) *Payload {
	p := &Payload{
		APIKey:           c.apiKey,
		RunID:            runID,
		ValueUpdates:     make([]ValueUpdate, 0, len(values)),
		TimestampUpdates: make([]CellUpdate, 0, len(timestamps)),
	}

	for _, v := range values {
		if v.Status != model.StatusOk {
			continue
		}
		p.ValueUpdates = append(p.ValueUpdates, ValueUpdate{
			SpreadsheetID: v.Target.SpreadsheetID,
			SheetName:     v.Target.SheetName,
			CellAddress:   v.Target.CellAddress,
			Value:         v.Balance,
			AccountName:   v.AccountName,
		})
	}
	for _, t := range timestamps {
		p.TimestampUpdates = append(p.TimestampUpdates, CellUpdate{
			SpreadsheetID: t.Target.SpreadsheetID,
			SheetName:     t.Target.SheetName,
			CellAddress:   t.Target.CellAddress,
			Value:         t.Formatted,
		})
	}

	return p
}

// Send POSTs the payload, retrying transient failures with exponential
// backoff and jitter up to the configured bound. An auth rejection returns
// ErrAuth without consuming any retry budget; a partial acceptance returns
// *PartialDeliveryError and is not retried.
func (c *Client) Send(ctx context.Context, payload *Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			c.logger.Debug("retrying delivery",
				"attempt", attempt,
				"backoff", jitter,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		err := c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err

		var httpErr *HTTPError
		switch {
		case errors.As(err, &httpErr) && httpErr.retryable():
			// Transient server failure, keep the budget going.
		case errors.As(err, &httpErr):
			return err
		case errors.Is(err, ErrAuth):
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// The http.Client timeout also reports DeadlineExceeded; only
			// the caller's own context ends the run early. A per-request
			// timeout is a transport failure and stays in the retry path.
			if ctx.Err() != nil {
				return err
			}
		default:
			var pde *PartialDeliveryError
			if errors.As(err, &pde) {
				return err
			}
			// Transport-level failure (connection refused, timeout): retry.
		}
	}

	return fmt.Errorf("%w: %d attempts: %w", ErrNetwork, c.maxRetries+1, lastErr)
}

// post performs one POST and classifies the response.
func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode == http.StatusUnprocessableEntity:
		return parseAcceptance(respBody, resp.StatusCode)
	default:
		return &HTTPError{StatusCode: resp.StatusCode, Body: respBody}
	}
}

// parseAcceptance inspects the per-update acceptance body. An empty or
// unparseable body on a 2xx counts as full acceptance.
func parseAcceptance(body []byte, statusCode int) error {
	var er endpointResponse
	if len(body) == 0 || json.Unmarshal(body, &er) != nil {
		if statusCode >= 200 && statusCode < 300 {
			return nil
		}
		return &HTTPError{StatusCode: statusCode, Body: body}
	}

	if len(er.Rejected) > 0 {
		return &PartialDeliveryError{
			Accepted: er.Updated,
			Rejected: er.Rejected,
		}
	}
	if statusCode >= 300 {
		return &HTTPError{StatusCode: statusCode, Body: body}
	}
	return nil
}
