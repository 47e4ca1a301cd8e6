package kubecost

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

// sampleAllocationResponse is a trimmed real allocation answer for one AKS
// namespace
const sampleAllocationResponse = `{
	"code": 200,
	"data": [
		{
			"cluster-one/utc": {
				"name": "cluster-one/utc",
				"minutes": 35,
				"cpuCoreHours": 0.02917,
				"cpuCoreUsageAverage": 0.02627,
				"cpuCost": 0.00092,
				"ramByteHours": 162479023.68627,
				"ramByteUsageAverage": 279514316.8,
				"ramCost": 0.00064,
				"pvByteHours": 0,
				"pvCost": 0,
				"networkCost": 0,
				"loadBalancerCost": 0,
				"totalCost": 0.00156,
				"properties": {
					"cluster": "cluster-one",
					"namespace": "utc",
					"labels": {
						"agentpool": "pnp2",
						"app": "utc-project-tool",
						"kubernetes_azure_com_agentpool": "pnp2",
						"topology_kubernetes_io_region": "chinanorth3"
					}
				},
				"window": {"start": "2025-10-06T23:00:00Z", "end": "2025-10-07T00:00:00Z"}
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, logger.Discard(), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, server
}

func TestFetchAllocations(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		io.WriteString(w, sampleAllocationResponse)
	})

	start := time.Date(2025, 10, 6, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC)
	allocations, err := client.FetchAllocations(context.Background(), start, end, "1d", nil)
	if err != nil {
		t.Fatalf("FetchAllocations() error = %v", err)
	}

	if gotPath != "/model/allocation" {
		t.Errorf("path = %q, want /model/allocation", gotPath)
	}
	if got := gotQuery.Get("window"); got != "2025-10-06T23:00:00Z,2025-10-07T00:00:00Z" {
		t.Errorf("window param = %q", got)
	}
	if got := gotQuery.Get("aggregate"); got != "cluster,namespace" {
		t.Errorf("aggregate param = %q", got)
	}
	if got := gotQuery.Get("accumulate"); got != "false" {
		t.Errorf("accumulate param = %q", got)
	}

	if len(allocations) != 1 {
		t.Fatalf("got %d allocations, want 1", len(allocations))
	}
	a := allocations[0]
	if a.Cluster != "cluster-one" || a.Namespace != "utc" {
		t.Errorf("allocation = %s/%s, want cluster-one/utc", a.Cluster, a.Namespace)
	}
	if a.Workload != "" {
		t.Errorf("workload = %q, want empty for namespace-level aggregation", a.Workload)
	}
	if a.CPUCost != 0.00092 || a.MemoryCost != 0.00064 {
		t.Errorf("cpu/memory cost = %v/%v, want 0.00092/0.00064", a.CPUCost, a.MemoryCost)
	}
	if a.TotalCost != 0.00156 {
		t.Errorf("total cost = %v, want 0.00156", a.TotalCost)
	}
	if a.Region != "chinanorth3" {
		t.Errorf("region = %q, want chinanorth3", a.Region)
	}
	if a.CloudProvider != "azure" {
		t.Errorf("cloud provider = %q, want azure", a.CloudProvider)
	}
	if a.Labels["app"] != "utc-project-tool" {
		t.Errorf("labels = %v", a.Labels)
	}

	wantStart := time.Date(2025, 10, 6, 23, 0, 0, 0, time.UTC)
	if !a.WindowStart.Equal(wantStart) {
		t.Errorf("window start = %v, want %v", a.WindowStart, wantStart)
	}

	// 35 minutes of 0.02917 core-hours is 0.05 allocated cores
	if math.Abs(a.CPUCoresAllocated-0.05) > 0.001 {
		t.Errorf("cpu cores allocated = %v, want ~0.05", a.CPUCoresAllocated)
	}
}

func TestFetchAllocations_SkipsUnqualifiedKeys(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"__idle__":{"totalCost":5},"c1/ns1":{"totalCost":1,"window":{"start":"2025-10-06T00:00:00Z","end":"2025-10-07T00:00:00Z"}}}]}`)
	})

	allocations, err := client.FetchAllocations(context.Background(),
		time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), "1d", nil)
	if err != nil {
		t.Fatalf("FetchAllocations() error = %v", err)
	}
	if len(allocations) != 1 || allocations[0].Namespace != "ns1" {
		t.Errorf("allocations = %+v, want only c1/ns1", allocations)
	}
}

func TestFetchAllocations_InvalidWindow(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	now := time.Now()
	_, err := client.FetchAllocations(context.Background(), now, now, "1d", nil)
	var invalid *billing.InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %T, want *InvalidArgumentError", err)
	}
	if calls != 0 {
		t.Errorf("invalid window reached the network: %d calls", calls)
	}
}

func TestFetchAllocations_UpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "Internal Server Error")
	})

	_, err := client.FetchAllocations(context.Background(),
		time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), "1d", nil)
	var upstream *billing.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %T, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", upstream.StatusCode)
	}
}

func TestFetchAllocations_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>gateway timeout</html>"},
		{"missing data field", `{"code":200}`},
		{"data has wrong shape", `{"data":[{"c1/ns1":"surprise"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})
			_, err := client.FetchAllocations(context.Background(),
				time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC), "1d", nil)
			var invalid *billing.InvalidResponseError
			if !errors.As(err, &invalid) {
				t.Fatalf("error = %T (%v), want *InvalidResponseError", err, err)
			}
		})
	}
}

func TestPing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[]}`)
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	_, err := NewClient("", logger.Discard())
	var invalid *billing.InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %T, want *InvalidArgumentError", err)
	}
}
