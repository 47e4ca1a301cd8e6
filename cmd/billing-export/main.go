package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Visionary-Future/cloud-billing/internal/alibaba"
	"github.com/Visionary-Future/cloud-billing/internal/azure"
	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/clock"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
)

var (
	provider  = flag.String("provider", "", "Billing provider: alibaba or azure")
	month     = flag.String("month", "", "Billing cycle as YYYY-MM (default: previous month)")
	amortized = flag.Bool("amortized", false, "Export amortized cost instead of the instance bill (alibaba only)")
	envFile   = flag.String("env", ".env", "Path to the credentials env file")
	output    = flag.String("output", "", "Output CSV path (default: <provider>_billing_<month>.csv)")
	logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	// Credentials come from the env file for one run and are never written
	// anywhere else
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load env file %s: %v", *envFile, err)
	}

	logger := logger.New(*logLevel)

	cycle := *month
	if cycle == "" {
		cycle = billing.PreviousCycle(clock.RealClock{})
	}
	if err := billing.ValidateCycle(cycle); err != nil {
		log.Fatalf("Invalid month: %v", err)
	}

	path := *output
	if path == "" {
		path = fmt.Sprintf("%s_billing_%s.csv", *provider, cycle)
	}

	ctx := context.Background()
	var err error
	switch billing.Provider(*provider) {
	case billing.ProviderAlibaba:
		err = exportAlibaba(ctx, logger, cycle, path, *amortized)
	case billing.ProviderAzure:
		err = exportAzure(ctx, logger, cycle, path)
	case billing.ProviderAWS, billing.ProviderHuawei:
		err = billing.ErrNotImplemented
	default:
		err = fmt.Errorf("unknown provider %q: expected alibaba or azure", *provider)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	logger.Info("Export finished", "provider", *provider, "month", cycle, "output", path)
}

func requireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		log.Fatalf("Missing required environment variable %s", name)
	}
	return v
}

func exportAlibaba(ctx context.Context, log *logger.Logger, cycle, path string, amortized bool) error {
	client := alibaba.NewClient(alibaba.Credentials{
		AccessKeyID:     requireEnv("ALIBABA_ACCESS_KEY_ID"),
		AccessKeySecret: requireEnv("ALIBABA_ACCESS_KEY_SECRET"),
	}, log)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if amortized {
		items, err := client.FetchAmortizedCost(ctx, cycle)
		if err != nil {
			return err
		}
		if err := w.Write(alibaba.AmortizedItemHeader); err != nil {
			return err
		}
		for _, item := range items {
			if err := w.Write(item.CSVRow()); err != nil {
				return err
			}
		}
	} else {
		items, err := client.FetchInstanceBill(ctx, cycle, "")
		if err != nil {
			return err
		}
		if err := w.Write(alibaba.BillItemHeader); err != nil {
			return err
		}
		for _, item := range items {
			if err := w.Write(item.CSVRow()); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func exportAzure(ctx context.Context, log *logger.Logger, cycle, path string) error {
	client, err := azure.NewClient(azure.Credentials{
		TenantID:     requireEnv("AZURE_TENANT_ID"),
		ClientID:     requireEnv("AZURE_CLIENT_ID"),
		ClientSecret: requireEnv("AZURE_CLIENT_SECRET"),
	}, azure.Config{
		ChinaCloud: os.Getenv("AZURE_CHINA_CLOUD") == "true",
	}, log)
	if err != nil {
		return err
	}

	startDate, endDate, err := cycleBounds(cycle)
	if err != nil {
		return err
	}

	account := requireEnv("AZURE_BILLING_ACCOUNT_ID")
	location, err := client.StartReport(ctx, account, startDate, endDate, "")
	if err != nil {
		return err
	}
	log.Info("Report generation started, waiting", "location", location)

	result, err := client.WaitForReport(ctx, location)
	if err != nil {
		return err
	}

	data, err := client.DownloadCSV(ctx, result.CSVURL)
	if err != nil {
		return err
	}

	// Parse before writing so a contract change fails the export instead of
	// producing a broken file
	records, err := azure.ParseCSV(data)
	if err != nil {
		return err
	}
	log.Info("Report parsed", "records", len(records))

	return os.WriteFile(path, data, 0o600)
}

// cycleBounds expands YYYY-MM into its first and last day
func cycleBounds(cycle string) (string, string, error) {
	first, err := time.Parse("2006-01", cycle)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: %w", cycle, err)
	}
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02"), nil
}
