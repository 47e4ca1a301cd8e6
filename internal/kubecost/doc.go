// Package kubecost reads cost allocation data from a Kubecost deployment.
//
// Allocations come from the /model/allocation endpoint keyed by
// "cluster/namespace[/workload]". The raw response is normalized into
// Allocation values with per-resource costs and derived capacity figures
// (core-hours and byte-hours divided by the window length). Summarize folds
// a result set into per-namespace totals for reporting.
package kubecost
