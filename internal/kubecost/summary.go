package kubecost

import (
	"sort"

	"github.com/samber/lo"
)

// NamespaceCost aggregates one cluster/namespace pair
type NamespaceCost struct {
	Cluster     string  `json:"cluster"`
	Namespace   string  `json:"namespace"`
	TotalCost   float64 `json:"total_cost"`
	CPUCost     float64 `json:"cpu_cost"`
	MemoryCost  float64 `json:"memory_cost"`
	StorageCost float64 `json:"storage_cost"`
	NetworkCost float64 `json:"network_cost"`
	Allocations int     `json:"allocations"`
}

// Summary is a per-namespace cost rollup of one allocation result set
type Summary struct {
	TotalCost  float64         `json:"total_cost"`
	Namespaces []NamespaceCost `json:"namespaces"`
}

type namespaceKey struct {
	cluster   string
	namespace string
}

// Summarize folds allocations into per-namespace totals, most expensive
// first. Ties break on cluster then namespace so output is stable.
func Summarize(allocations []Allocation) Summary {
	grouped := lo.GroupBy(allocations, func(a Allocation) namespaceKey {
		return namespaceKey{cluster: a.Cluster, namespace: a.Namespace}
	})

	namespaces := lo.MapToSlice(grouped, func(key namespaceKey, group []Allocation) NamespaceCost {
		return NamespaceCost{
			Cluster:     key.cluster,
			Namespace:   key.namespace,
			TotalCost:   lo.SumBy(group, func(a Allocation) float64 { return a.TotalCost }),
			CPUCost:     lo.SumBy(group, func(a Allocation) float64 { return a.CPUCost }),
			MemoryCost:  lo.SumBy(group, func(a Allocation) float64 { return a.MemoryCost }),
			StorageCost: lo.SumBy(group, func(a Allocation) float64 { return a.StorageCost }),
			NetworkCost: lo.SumBy(group, func(a Allocation) float64 { return a.NetworkCost }),
			Allocations: len(group),
		}
	})

	sort.Slice(namespaces, func(i, j int) bool {
		if namespaces[i].TotalCost != namespaces[j].TotalCost {
			return namespaces[i].TotalCost > namespaces[j].TotalCost
		}
		if namespaces[i].Cluster != namespaces[j].Cluster {
			return namespaces[i].Cluster < namespaces[j].Cluster
		}
		return namespaces[i].Namespace < namespaces[j].Namespace
	})

	return Summary{
		TotalCost:  lo.SumBy(namespaces, func(n NamespaceCost) float64 { return n.TotalCost }),
		Namespaces: namespaces,
	}
}
