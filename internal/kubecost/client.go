package kubecost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

// DefaultTimeout bounds one allocation query round-trip
const DefaultTimeout = 30 * time.Second

const allocationPath = "/model/allocation"

// defaultAggregate matches the granularity the billing pipeline ingests
var defaultAggregate = []string{"cluster", "namespace"}

// Client queries one Kubecost deployment
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (used by tests)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for the Kubecost service at baseURL,
// e.g. http://kubecost.example.com:9090
func NewClient(baseURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &billing.InvalidArgumentError{
			Field:  "base url",
			Value:  baseURL,
			Reason: "must not be empty",
		}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchAllocations queries cost allocations for the [start, end) window. The
// step slices the window ("1d", "1h"); aggregateBy defaults to cluster and
// namespace when empty. Entries whose key does not carry at least
// cluster/namespace are skipped.
func (c *Client) FetchAllocations(ctx context.Context, start, end time.Time, step string, aggregateBy []string) ([]Allocation, error) {
	if !end.After(start) {
		return nil, &billing.InvalidArgumentError{
			Field:  "window",
			Value:  fmt.Sprintf("%s,%s", start.Format(time.RFC3339), end.Format(time.RFC3339)),
			Reason: "end must be after start",
		}
	}
	if step == "" {
		step = "1d"
	}
	if len(aggregateBy) == 0 {
		aggregateBy = defaultAggregate
	}

	params := url.Values{}
	params.Set("window", fmt.Sprintf("%s,%s",
		start.UTC().Format("2006-01-02T15:04:05Z"),
		end.UTC().Format("2006-01-02T15:04:05Z")))
	params.Set("step", step)
	params.Set("aggregate", strings.Join(aggregateBy, ","))
	params.Set("accumulate", "false")

	body, err := c.get(ctx, allocationPath, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []map[string]rawAllocation `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &billing.InvalidResponseError{
			Reason:  "allocation response failed schema validation",
			Payload: body,
			Err:     err,
		}
	}
	if envelope.Data == nil {
		return nil, &billing.InvalidResponseError{
			Reason:  "allocation response missing data field",
			Payload: body,
		}
	}

	var allocations []Allocation
	for _, entry := range envelope.Data {
		for _, key := range sortedEntryKeys(entry) {
			if strings.Count(key, "/") < 1 {
				c.logger.Debug("skipping allocation with unqualified key", "key", key)
				continue
			}
			allocations = append(allocations, normalize(key, entry[key]))
		}
	}

	c.logger.Debug("allocations fetched",
		"count", len(allocations),
		"window", params.Get("window"),
		"aggregate", params.Get("aggregate"))
	return allocations, nil
}

// Ping verifies the service answers an allocation query over the last day
func (c *Client) Ping(ctx context.Context) error {
	now := time.Now().UTC()
	params := url.Values{}
	params.Set("window", fmt.Sprintf("%s,%s",
		now.Add(-24*time.Hour).Format("2006-01-02T15:04:05Z"),
		now.Format("2006-01-02T15:04:05Z")))
	params.Set("step", "1d")
	params.Set("aggregate", strings.Join(defaultAggregate, ","))

	_, err := c.get(ctx, allocationPath, params)
	return err
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build allocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &billing.TransientError{Op: "kubecost allocation", Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &billing.TransientError{Op: "kubecost allocation", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &billing.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}

func sortedEntryKeys(entry map[string]rawAllocation) []string {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
