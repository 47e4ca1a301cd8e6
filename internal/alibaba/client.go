package alibaba

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/clock"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

const (
	// DefaultMaxPageSize is the MaxResults hint for bulk fetches
	DefaultMaxPageSize = 300

	// DefaultTimeout bounds one page round-trip
	DefaultTimeout = 20 * time.Second

	defaultEndpoint = "https://business.aliyuncs.com/"
	apiVersion      = "2017-12-14"

	actionInstanceBill  = "DescribeInstanceBill"
	actionAmortizedCost = "DescribeInstanceAmortizedCostByAmortizationPeriod"
)

// Credentials are the per-request Alibaba Cloud access keys. They are held
// only for the lifetime of one client instance and never persisted.
type Credentials struct {
	AccessKeyID     string
	AccessKeySecret string
	RegionID        string
}

// Client issues signed BSS OpenAPI requests. One client serves exactly one
// caller; it carries no locking.
type Client struct {
	creds      Credentials
	endpoint   string
	httpClient *http.Client
	logger     *logger.Logger
	pageSize   int
	clock      clock.Clock
	nonce      func() string
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the BSS OpenAPI endpoint (used by tests)
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithPageSize overrides the MaxResults page-size hint
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock sets the time source for request timestamps
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// NewClient creates a client bound to one set of credentials
func NewClient(creds Credentials, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log,
		pageSize:   DefaultMaxPageSize,
		clock:      clock.RealClock{},
		nonce:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchInstanceBill returns every instance bill line for the billing cycle,
// concatenating all pages in provider order. When billingDate is non-empty the
// fetch narrows to that day at daily granularity.
func (c *Client) FetchInstanceBill(ctx context.Context, billingCycle, billingDate string) ([]BillItem, error) {
	if err := billing.ValidateCycle(billingCycle); err != nil {
		return nil, err
	}

	params := map[string]string{
		"BillingCycle": billingCycle,
		"MaxResults":   strconv.Itoa(c.pageSize),
	}
	if billingDate != "" {
		if err := billing.ValidateDate(billingDate); err != nil {
			return nil, err
		}
		params["BillingDate"] = billingDate
		params["Granularity"] = "DAILY"
	}

	return fetchAllPages[BillItem](ctx, c, actionInstanceBill, params)
}

// FetchAmortizedCost returns every amortized-cost line for the amortization
// period, concatenating all pages in provider order
func (c *Client) FetchAmortizedCost(ctx context.Context, billingCycle string) ([]AmortizedItem, error) {
	if err := billing.ValidateCycle(billingCycle); err != nil {
		return nil, err
	}

	params := map[string]string{
		"BillingCycle": billingCycle,
		"MaxResults":   strconv.Itoa(c.pageSize),
	}

	return fetchAllPages[AmortizedItem](ctx, c, actionAmortizedCost, params)
}

// fetchAllPages drives the continuation-cursor loop shared by both actions.
// It stops when the provider returns a blank cursor and aborts if the same
// cursor ever repeats, so a faulty provider cannot spin it forever.
func fetchAllPages[T any](ctx context.Context, c *Client, action string, params map[string]string) ([]T, error) {
	var (
		items  []T
		cursor string
		pages  int
	)

	for {
		req := make(map[string]string, len(params)+1)
		for k, v := range params {
			req[k] = v
		}
		if cursor != "" {
			req["NextToken"] = cursor
		}

		payload, err := c.call(ctx, action, req)
		if err != nil {
			return nil, err
		}

		pageItems, next, err := unwrapPage[T](payload)
		if err != nil {
			c.logger.Error("Alibaba page rejected",
				"action", action,
				"page", pages+1,
				"error", err,
				"payload", truncateForLog(payload))
			return nil, err
		}

		items = append(items, pageItems...)
		pages++

		if !hasMoreData(next) {
			break
		}
		if next == cursor {
			return nil, &billing.InvalidResponseError{
				Reason:  fmt.Sprintf("pagination loop detected: cursor %q repeated", next),
				Payload: payload,
			}
		}
		cursor = next
	}

	c.logger.Debug("pagination complete",
		"action", action,
		"pages", pages,
		"items", len(items))
	return items, nil
}

// hasMoreData treats a present but blank/whitespace cursor as end of data
func hasMoreData(nextToken string) bool {
	return strings.TrimSpace(nextToken) != ""
}

// unwrapPage validates one page payload against the typed schema
func unwrapPage[T any](payload []byte) ([]T, string, error) {
	var resp response[T]
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, "", &billing.InvalidResponseError{
			Reason:  "page failed schema validation",
			Payload: payload,
			Err:     err,
		}
	}
	if !resp.Success {
		return nil, "", &billing.UpstreamError{
			Code:    resp.Code,
			Message: resp.Message,
			Body:    string(payload),
		}
	}
	if resp.Data == nil {
		return nil, "", &billing.InvalidResponseError{
			Reason:  "response envelope missing Data",
			Payload: payload,
		}
	}
	return resp.Data.Items, resp.Data.NextToken, nil
}

// call signs and executes one RPC request, returning the raw body
func (c *Client) call(ctx context.Context, action string, params map[string]string) ([]byte, error) {
	all := map[string]string{
		"Action":           action,
		"Format":           "JSON",
		"Version":          apiVersion,
		"AccessKeyId":      c.creds.AccessKeyID,
		"SignatureMethod":  "HMAC-SHA1",
		"SignatureVersion": "1.0",
		"SignatureNonce":   c.nonce(),
		"Timestamp":        c.clock.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
	if c.creds.RegionID != "" {
		all["RegionId"] = c.creds.RegionID
	}
	for k, v := range params {
		all[k] = v
	}

	form := url.Values{}
	for k, v := range all {
		form.Set(k, v)
	}
	form.Set("Signature", signRequest(http.MethodPost, all, c.creds.AccessKeySecret))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &billing.TransientError{Op: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &billing.TransientError{Op: action, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &billing.UnauthorizedError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if resp.StatusCode != http.StatusOK {
		upstream := &billing.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		// BSS errors carry {Code, Message} even on non-200
		var envelope struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		}
		if json.Unmarshal(body, &envelope) == nil {
			upstream.Code = envelope.Code
			upstream.Message = envelope.Message
		}
		return nil, upstream
	}

	return body, nil
}

func truncateForLog(payload []byte) string {
	const max = 2048
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max]) + "...(truncated)"
}
