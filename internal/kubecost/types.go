package kubecost

import (
	"sort"
	"strings"
	"time"
)

// Allocation is one normalized cost allocation entry
type Allocation struct {
	Cluster      string
	Namespace    string
	Workload     string
	WorkloadType string
	Container    string

	WindowStart time.Time
	WindowEnd   time.Time

	// Derived capacity figures; zero means unknown or not applicable
	CPUCoresAllocated  float64
	CPUCoresUsed       float64
	MemoryGBAllocated  float64
	MemoryGBUsed       float64
	StorageGBAllocated float64

	TotalCost   float64
	CPUCost     float64
	MemoryCost  float64
	StorageCost float64
	NetworkCost float64

	Labels      map[string]string
	Annotations map[string]string

	CloudProvider string
	Region        string
}

// rawAllocation mirrors one allocation value in the /model/allocation
// response. Only the fields the normalization reads are decoded.
type rawAllocation struct {
	Name       string        `json:"name"`
	Properties rawProperties `json:"properties"`
	Window     rawWindow     `json:"window"`

	Minutes float64 `json:"minutes"`

	CPUCoreHours        float64 `json:"cpuCoreHours"`
	CPUCoreUsageAverage float64 `json:"cpuCoreUsageAverage"`
	CPUCost             float64 `json:"cpuCost"`

	RAMByteHours        float64 `json:"ramByteHours"`
	RAMByteUsageAverage float64 `json:"ramByteUsageAverage"`
	RAMCost             float64 `json:"ramCost"`

	PVByteHours float64 `json:"pvByteHours"`
	PVCost      float64 `json:"pvCost"`

	NetworkCost      float64 `json:"networkCost"`
	LoadBalancerCost float64 `json:"loadBalancerCost"`
	TotalCost        float64 `json:"totalCost"`
}

type rawProperties struct {
	Cluster     string            `json:"cluster"`
	Namespace   string            `json:"namespace"`
	Container   string            `json:"container"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
}

type rawWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const bytesPerGB = 1 << 30

// normalize converts one raw entry into an Allocation. The allocation key
// carries "cluster/namespace[/workload]"; explicit properties override the
// key-derived cluster and namespace.
func normalize(key string, raw rawAllocation) Allocation {
	parts := strings.Split(key, "/")

	a := Allocation{
		Cluster:     parts[0],
		Namespace:   parts[1],
		WindowStart: raw.Window.Start,
		WindowEnd:   raw.Window.End,
		TotalCost:   raw.TotalCost,
		CPUCost:     raw.CPUCost,
		MemoryCost:  raw.RAMCost,
		StorageCost: raw.PVCost,
		NetworkCost: raw.NetworkCost + raw.LoadBalancerCost,
		Labels:      raw.Properties.Labels,
		Annotations: raw.Properties.Annotations,
		Container:   raw.Properties.Container,
	}
	if len(parts) > 2 {
		a.Workload = parts[2]
	}
	if raw.Properties.Cluster != "" {
		a.Cluster = raw.Properties.Cluster
	}
	if raw.Properties.Namespace != "" {
		a.Namespace = raw.Properties.Namespace
	}

	if hours := raw.Minutes / 60; hours > 0 {
		a.CPUCoresAllocated = raw.CPUCoreHours / hours
		a.MemoryGBAllocated = raw.RAMByteHours / hours / bytesPerGB
		a.StorageGBAllocated = raw.PVByteHours / hours / bytesPerGB
	}
	a.CPUCoresUsed = raw.CPUCoreUsageAverage
	a.MemoryGBUsed = raw.RAMByteUsageAverage / bytesPerGB

	a.WorkloadType = workloadType(a.Labels)
	a.CloudProvider = detectProvider(a.Labels, a.Cluster)
	a.Region = extractRegion(a.Labels)
	return a
}

// detectProvider guesses the hosting cloud from label keys, then from the
// cluster name
func detectProvider(labels map[string]string, cluster string) string {
	for _, key := range sortedKeys(labels) {
		switch k := strings.ToLower(key); {
		case strings.Contains(k, "alibaba"), strings.Contains(k, "aliyun"):
			return "alibaba"
		case strings.Contains(k, "azure"), strings.Contains(k, "microsoft"):
			return "azure"
		case strings.Contains(k, "aws"), strings.Contains(k, "amazon"):
			return "aws"
		case strings.Contains(k, "gcp"), strings.Contains(k, "google"):
			return "gcp"
		}
	}

	switch c := strings.ToLower(cluster); {
	case strings.Contains(c, "alibaba"), strings.Contains(c, "aliyun"):
		return "alibaba"
	case strings.Contains(c, "azure"), strings.Contains(c, "aks"):
		return "azure"
	case strings.Contains(c, "aws"), strings.Contains(c, "eks"):
		return "aws"
	case strings.Contains(c, "gcp"), strings.Contains(c, "gke"):
		return "gcp"
	}
	return "unknown"
}

// wellKnownRegionLabels are checked before falling back to a substring scan.
// Kubecost flattens dots in label keys to underscores, so both spellings
// appear in the wild.
var wellKnownRegionLabels = []string{
	"topology.kubernetes.io/region",
	"topology_kubernetes_io_region",
	"failure-domain.beta.kubernetes.io/region",
	"failure_domain_beta_kubernetes_io_region",
	"kubernetes.io/region",
}

func extractRegion(labels map[string]string) string {
	for _, key := range wellKnownRegionLabels {
		if v, ok := labels[key]; ok {
			return v
		}
	}
	for _, key := range sortedKeys(labels) {
		k := strings.ToLower(key)
		if strings.Contains(k, "region") || strings.Contains(k, "zone") {
			return labels[key]
		}
	}
	return ""
}

func workloadType(labels map[string]string) string {
	if v, ok := labels["app.kubernetes.io/component"]; ok {
		return v
	}
	if _, ok := labels["workload.user.cattle.io/workloadselector"]; ok {
		return "Deployment"
	}
	for _, key := range sortedKeys(labels) {
		k := strings.ToLower(key)
		if strings.Contains(k, "workload") || strings.Contains(k, "component") {
			return labels[key]
		}
	}
	return ""
}

// sortedKeys keeps label scans deterministic across map iteration orders
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
