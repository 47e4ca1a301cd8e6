package azure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

const (
	// DefaultPollTimeout bounds one status check round-trip
	DefaultPollTimeout = 20 * time.Second

	// DefaultDownloadTimeout bounds the CSV download round-trip
	DefaultDownloadTimeout = 60 * time.Second

	// DefaultPollInterval is the sleep between blocking poll attempts
	DefaultPollInterval = 30 * time.Second

	// DefaultMaxPollAttempts caps the blocking wait loop
	DefaultMaxPollAttempts = 20

	// DefaultMetric is the cost metric when the caller does not pick one
	DefaultMetric = "ActualCost"

	reportAPIVersion        = "2021-10-01"
	subscriptionsAPIVersion = "2020-01-01"
)

// Credentials are the per-request service principal credentials
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Config tunes one client instance. Zero values fall back to the defaults
// above. ChinaCloud selects the 21Vianet-operated cloud endpoints.
type Config struct {
	ChinaCloud      bool
	PollTimeout     time.Duration
	DownloadTimeout time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
}

func (c *Config) applyDefaults() {
	if c.PollTimeout == 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.DownloadTimeout == 0 {
		c.DownloadTimeout = DefaultDownloadTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPollAttempts == 0 {
		c.MaxPollAttempts = DefaultMaxPollAttempts
	}
}

// TokenSource yields a bearer token for the management endpoint
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client drives the report workflow for one set of credentials. It caches
// one bearer token and is meant for exactly one concurrent caller.
type Client struct {
	cfg            Config
	management     string
	httpClient     *http.Client
	downloadClient *http.Client
	logger         *logger.Logger
	tokens         TokenSource
	token          string
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets the client used for start/poll calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithManagementEndpoint overrides the management endpoint (used by tests)
func WithManagementEndpoint(endpoint string) Option {
	return func(c *Client) { c.management = strings.TrimRight(endpoint, "/") }
}

// WithTokenSource replaces the azidentity-backed token source
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient builds a client for one set of credentials
func NewClient(creds Credentials, cfg Config, log *logger.Logger, opts ...Option) (*Client, error) {
	cfg.applyDefaults()

	cloudCfg := cloud.AzurePublic
	management := "https://management.azure.com"
	if cfg.ChinaCloud {
		cloudCfg = cloud.AzureChina
		management = "https://management.chinacloudapi.cn"
	}

	c := &Client{
		cfg:            cfg,
		management:     management,
		httpClient:     &http.Client{Timeout: cfg.PollTimeout},
		downloadClient: &http.Client{Timeout: cfg.DownloadTimeout},
		logger:         log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		cred, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret,
			&azidentity.ClientSecretCredentialOptions{
				ClientOptions: policy.ClientOptions{Cloud: cloudCfg},
			})
		if err != nil {
			return nil, &billing.UnauthorizedError{Err: err}
		}
		c.tokens = &credentialTokenSource{
			cred:  cred,
			scope: management + "/.default",
		}
	}

	return c, nil
}

// credentialTokenSource adapts azidentity to TokenSource
type credentialTokenSource struct {
	cred  *azidentity.ClientSecretCredential
	scope string
}

func (s *credentialTokenSource) Token(ctx context.Context) (string, error) {
	tok, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{s.scope}})
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

// Authenticate exchanges the credentials for a bearer token and caches it.
// Subsequent calls reuse the cached token.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.token != "" {
		return nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			return &billing.UnauthorizedError{
				StatusCode: respErr.StatusCode,
				Body:       respErr.ErrorCode,
				Err:        err,
			}
		}
		return &billing.UnauthorizedError{Err: err}
	}

	c.token = token
	return nil
}

// reportRequest is the generateDetailedCostReport body
type reportRequest struct {
	Metric     string           `json:"metric"`
	TimePeriod reportTimePeriod `json:"timePeriod"`
}

type reportTimePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StartReport submits report generation for a billing account and date range.
// Success is exclusively HTTP 202 with a Location header; the returned URL is
// the only handle a caller needs to resume polling later, even from another
// process.
func (c *Client) StartReport(ctx context.Context, billingAccountID, startDate, endDate, metric string) (string, error) {
	if err := billing.ValidateDate(startDate); err != nil {
		return "", err
	}
	if err := billing.ValidateDate(endDate); err != nil {
		return "", err
	}
	if metric == "" {
		metric = DefaultMetric
	}
	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf(
		"%s/providers/Microsoft.Billing/billingAccounts/%s/providers/Microsoft.CostManagement/generateDetailedCostReport?api-version=%s",
		c.management, url.PathEscape(billingAccountID), reportAPIVersion)

	body, err := json.Marshal(reportRequest{
		Metric:     metric,
		TimePeriod: reportTimePeriod{Start: startDate, End: endDate},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal report request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &billing.TransientError{Op: "start report", Err: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return "", upstreamFromBody(resp.StatusCode, respBody)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", &billing.InvalidResponseError{
			Reason:  "report accepted but Location header missing",
			Payload: respBody,
		}
	}

	c.logger.Debug("report generation started",
		"billing_account", billingAccountID,
		"start_date", startDate,
		"end_date", endDate,
		"metric", metric)
	return location, nil
}

// ReportStatus is the state of one report generation job
type ReportStatus string

// Status transitions only move forward: pending → completed or
// pending → error.
const (
	StatusPending   ReportStatus = "pending"
	StatusCompleted ReportStatus = "completed"
	StatusError     ReportStatus = "error"
)

// PollResult is the outcome of one status check
type PollResult struct {
	Status  ReportStatus
	CSVURL  string
	Message string
}

// PollOnce performs exactly one status check against the location URL. It
// never sleeps or retries internally; waiting between calls belongs to the
// caller, so a request-scoped environment with a hard wall-clock limit never
// blocks past its own timeout. The returned error is non-nil only when the
// result status is StatusError.
func (c *Client) PollOnce(ctx context.Context, locationURL string) (PollResult, error) {
	if err := c.Authenticate(ctx); err != nil {
		return PollResult{Status: StatusError, Message: err.Error()}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locationURL, nil)
	if err != nil {
		wrapped := fmt.Errorf("failed to build poll request: %w", err)
		return PollResult{Status: StatusError, Message: wrapped.Error()}, wrapped
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		transient := &billing.TransientError{Op: "poll report", Err: err}
		return PollResult{Status: StatusError, Message: transient.Error()}, transient
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		transient := &billing.TransientError{Op: "poll report", Err: err}
		return PollResult{Status: StatusError, Message: transient.Error()}, transient
	}

	return classifyPoll(resp.StatusCode, body)
}

// classifyPoll maps one (HTTP status, body) pair onto the report state
// machine. It is a pure function: no I/O, no time.
func classifyPoll(statusCode int, body []byte) (PollResult, error) {
	switch {
	case statusCode == http.StatusAccepted:
		return PollResult{Status: StatusPending}, nil

	case statusCode == http.StatusOK:
		// The provider occasionally answers 200 with an empty body while
		// still generating. Interim state, not an error.
		if len(bytes.TrimSpace(body)) == 0 {
			return PollResult{Status: StatusPending}, nil
		}

		if !gjson.ValidBytes(body) {
			invalid := &billing.InvalidResponseError{
				Reason:  "poll response is not valid JSON",
				Payload: body,
			}
			return PollResult{Status: StatusError, Message: invalid.Error()}, invalid
		}

		if gjson.GetBytes(body, "status").String() != "Completed" {
			return PollResult{Status: StatusPending}, nil
		}

		link := gjson.GetBytes(body, "manifest.blobs.0.blobLink").String()
		if link == "" {
			invalid := &billing.InvalidResponseError{
				Reason:  "report completed but no blob link in manifest",
				Payload: body,
			}
			return PollResult{Status: StatusError, Message: invalid.Error()}, invalid
		}
		return PollResult{Status: StatusCompleted, CSVURL: link}, nil

	default:
		upstream := upstreamFromBody(statusCode, body)
		return PollResult{Status: StatusError, Message: upstream.Error()}, upstream
	}
}

// errStillPending drives the blocking retry loop
var errStillPending = errors.New("report still pending")

// WaitForReport blocks until the report reaches a terminal state, sleeping a
// fixed interval between polls and giving up after MaxPollAttempts. It is a
// convenience for callers without a request deadline; serverless callers
// should drive PollOnce themselves.
func (c *Client) WaitForReport(ctx context.Context, locationURL string) (PollResult, error) {
	var result PollResult

	operation := func() error {
		res, err := c.PollOnce(ctx, locationURL)
		result = res
		if err != nil {
			return backoff.Permanent(err)
		}
		if res.Status == StatusPending {
			return errStillPending
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(c.cfg.PollInterval),
			uint64(c.cfg.MaxPollAttempts),
		), ctx)

	if err := backoff.Retry(operation, bo); err != nil {
		if errors.Is(err, errStillPending) {
			return result, fmt.Errorf("report not ready after %d poll attempts", c.cfg.MaxPollAttempts+1)
		}
		return result, err
	}
	return result, nil
}

// DownloadCSV fetches the finished report bytes from the blob link. The blob
// link is pre-signed and has not required auth in observed usage, but the
// bearer header is still sent defensively.
func (c *Client) DownloadCSV(ctx context.Context, csvURL string) ([]byte, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, &billing.TransientError{Op: "download csv", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &billing.TransientError{Op: "download csv", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamFromBody(resp.StatusCode, body)
	}

	c.logger.Debug("report downloaded", "bytes", len(body))
	return body, nil
}

// Subscription is one entry of the subscriptions listing
type Subscription struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscriptionId"`
	DisplayName    string `json:"displayName"`
	State          string `json:"state"`
}

// ListSubscriptions returns the subscriptions visible to the credentials
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscription, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/subscriptions?api-version=%s", c.management, subscriptionsAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build subscriptions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &billing.TransientError{Op: "list subscriptions", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &billing.TransientError{Op: "list subscriptions", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamFromBody(resp.StatusCode, body)
	}

	var listing struct {
		Value []Subscription `json:"value"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, &billing.InvalidResponseError{
			Reason:  "subscriptions listing failed schema validation",
			Payload: body,
			Err:     err,
		}
	}
	return listing.Value, nil
}

// upstreamFromBody builds an UpstreamError, extracting the ARM error envelope
// when the body carries one
func upstreamFromBody(statusCode int, body []byte) *billing.UpstreamError {
	upstream := &billing.UpstreamError{
		StatusCode: statusCode,
		Body:       string(body),
	}
	if gjson.ValidBytes(body) {
		upstream.Code = gjson.GetBytes(body, "error.code").String()
		upstream.Message = gjson.GetBytes(body, "error.message").String()
	}
	return upstream
}
