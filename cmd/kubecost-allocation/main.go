package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/Visionary-Future/cloud-billing/internal/kubecost"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

var (
	baseURL   = flag.String("url", "", "Kubecost base URL (default: KUBECOST_BASE_URL)")
	days      = flag.Int("days", 1, "Window length in days, ending now")
	step      = flag.String("step", "1d", "Window step, e.g. 1d or 1h")
	aggregate = flag.String("aggregate", "cluster,namespace", "Comma-separated aggregation dimensions")
	output    = flag.String("output", "", "Output path for allocations as JSON lines (default: stdout summary only)")
	envFile   = flag.String("env", ".env", "Path to the env file")
	logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load env file %s: %v", *envFile, err)
	}

	url := *baseURL
	if url == "" {
		url = os.Getenv("KUBECOST_BASE_URL")
	}

	logger := logger.New(*logLevel)
	client, err := kubecost.NewClient(url, logger)
	if err != nil {
		log.Fatalf("Failed to create kubecost client: %v", err)
	}

	end := time.Now().UTC()
	start := end.Add(-time.Duration(*days) * 24 * time.Hour)

	allocations, err := client.FetchAllocations(context.Background(), start, end, *step, strings.Split(*aggregate, ","))
	if err != nil {
		log.Fatalf("Failed to fetch allocations: %v", err)
	}
	logger.Info("Allocations fetched", "count", len(allocations))

	if *output != "" {
		if err := writeJSONL(*output, allocations); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		logger.Info("Allocations written", "path", *output)
	}

	summary := kubecost.Summarize(allocations)
	fmt.Printf("Total cost: %.4f across %d namespaces\n", summary.TotalCost, len(summary.Namespaces))
	for _, ns := range summary.Namespaces {
		fmt.Printf("  %-40s %10.4f (%d allocations)\n",
			ns.Cluster+"/"+ns.Namespace, ns.TotalCost, ns.Allocations)
	}
}

// writeJSONL writes one allocation per line so large result sets stream into
// downstream tooling
func writeJSONL(path string, allocations []kubecost.Allocation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, a := range allocations {
		if err := enc.Encode(a); err != nil {
			return err
		}
	}
	return nil
}
