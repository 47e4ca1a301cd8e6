package kubecost

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	allocations := []Allocation{
		{Cluster: "c1", Namespace: "payments", TotalCost: 10, CPUCost: 6, MemoryCost: 4},
		{Cluster: "c1", Namespace: "payments", TotalCost: 5, CPUCost: 3, MemoryCost: 2},
		{Cluster: "c1", Namespace: "web", TotalCost: 30, NetworkCost: 1},
		{Cluster: "c2", Namespace: "payments", TotalCost: 2, StorageCost: 2},
	}

	summary := Summarize(allocations)

	if math.Abs(summary.TotalCost-47) > 1e-9 {
		t.Errorf("total cost = %v, want 47", summary.TotalCost)
	}
	if len(summary.Namespaces) != 3 {
		t.Fatalf("got %d namespaces, want 3", len(summary.Namespaces))
	}

	// Sorted by cost descending
	first := summary.Namespaces[0]
	if first.Cluster != "c1" || first.Namespace != "web" || first.TotalCost != 30 {
		t.Errorf("first namespace = %+v, want c1/web at 30", first)
	}

	second := summary.Namespaces[1]
	if second.Namespace != "payments" || second.TotalCost != 15 || second.Allocations != 2 {
		t.Errorf("second namespace = %+v, want c1/payments at 15 across 2 allocations", second)
	}
	if second.CPUCost != 9 || second.MemoryCost != 6 {
		t.Errorf("c1/payments cpu/memory = %v/%v, want 9/6", second.CPUCost, second.MemoryCost)
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalCost != 0 || len(summary.Namespaces) != 0 {
		t.Errorf("empty summary = %+v", summary)
	}
}

func TestSummarize_StableTieBreak(t *testing.T) {
	allocations := []Allocation{
		{Cluster: "c2", Namespace: "a", TotalCost: 1},
		{Cluster: "c1", Namespace: "b", TotalCost: 1},
		{Cluster: "c1", Namespace: "a", TotalCost: 1},
	}
	summary := Summarize(allocations)
	got := []string{}
	for _, n := range summary.Namespaces {
		got = append(got, n.Cluster+"/"+n.Namespace)
	}
	want := []string{"c1/a", "c1/b", "c2/a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
