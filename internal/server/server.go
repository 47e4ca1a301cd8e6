package server

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Visionary-Future/cloud-billing/internal/alibaba"
	"github.com/Visionary-Future/cloud-billing/internal/azure"
	"github.com/Visionary-Future/cloud-billing/internal/config"
	"github.com/Visionary-Future/cloud-billing/internal/kubecost"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
	"github.com/Visionary-Future/cloud-billing/internal/version"
)

//go:embed templates/index.html
var indexTemplate string

// HTTP server timeout constants
const (
	DefaultReadTimeout  = 15 * time.Second  // Maximum duration for reading the entire request
	DefaultWriteTimeout = 120 * time.Second // Report downloads can be slow; writes get headroom
	DefaultIdleTimeout  = 60 * time.Second  // Maximum amount of time to wait for the next request
)

// alibabaBilling is the slice of the Alibaba client the handlers use
type alibabaBilling interface {
	FetchInstanceBill(ctx context.Context, billingCycle, billingDate string) ([]alibaba.BillItem, error)
	FetchAmortizedCost(ctx context.Context, billingCycle string) ([]alibaba.AmortizedItem, error)
}

// azureReports is the slice of the Azure client the handlers use
type azureReports interface {
	StartReport(ctx context.Context, billingAccountID, startDate, endDate, metric string) (string, error)
	PollOnce(ctx context.Context, locationURL string) (azure.PollResult, error)
	DownloadCSV(ctx context.Context, csvURL string) ([]byte, error)
}

// kubecostAllocations is the slice of the Kubecost client the handlers use
type kubecostAllocations interface {
	FetchAllocations(ctx context.Context, start, end time.Time, step string, aggregateBy []string) ([]kubecost.Allocation, error)
}

// Server represents the HTTP server. Clients are built per request from the
// credentials in the body; only the Kubecost client, which carries no
// credentials, lives for the server's lifetime.
type Server struct {
	server  *http.Server
	cfg     *config.Config
	logger  *logger.Logger
	metrics *Metrics

	newAlibaba func(creds alibaba.Credentials) (alibabaBilling, error)
	newAzure   func(creds azure.Credentials) (azureReports, error)
	kubecost   kubecostAllocations
}

// Option configures the Server; used by tests to stub out providers
type Option func(*Server)

// WithAlibabaFactory replaces the per-request Alibaba client constructor
func WithAlibabaFactory(f func(creds alibaba.Credentials) (alibabaBilling, error)) Option {
	return func(s *Server) { s.newAlibaba = f }
}

// WithAzureFactory replaces the per-request Azure client constructor
func WithAzureFactory(f func(creds azure.Credentials) (azureReports, error)) Option {
	return func(s *Server) { s.newAzure = f }
}

// WithKubecost sets the shared Kubecost client
func WithKubecost(kc kubecostAllocations) Option {
	return func(s *Server) { s.kubecost = kc }
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, log *logger.Logger, reg *prometheus.Registry, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
		cfg:     cfg,
		logger:  log,
		metrics: NewMetrics(reg),
	}

	s.newAlibaba = func(creds alibaba.Credentials) (alibabaBilling, error) {
		return alibaba.NewClient(creds, log,
			alibaba.WithPageSize(cfg.Alibaba.PageSize),
			alibaba.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Alibaba.APITimeout) * time.Second,
			})), nil
	}
	s.newAzure = func(creds azure.Credentials) (azureReports, error) {
		return azure.NewClient(creds, azure.Config{
			ChinaCloud:      cfg.Azure.ChinaCloud,
			PollTimeout:     time.Duration(cfg.Azure.PollTimeout) * time.Second,
			DownloadTimeout: time.Duration(cfg.Azure.DownloadTimeout) * time.Second,
			PollInterval:    time.Duration(cfg.Azure.PollInterval) * time.Second,
			MaxPollAttempts: cfg.Azure.MaxPollAttempts,
		}, log)
	}
	if cfg.Kubecost.BaseURL != "" {
		kc, err := kubecost.NewClient(cfg.Kubecost.BaseURL, log)
		if err == nil {
			s.kubecost = kc
		} else {
			log.Warn("kubecost disabled", "error", err)
		}
	}

	for _, opt := range opts {
		opt(s)
	}

	// Register handlers
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/alibaba/billing", s.handleAlibabaBilling)
	mux.HandleFunc("POST /api/alibaba/billing/csv", s.handleAlibabaBillingCSV)
	mux.HandleFunc("POST /api/alibaba/amortized", s.handleAlibabaAmortized)
	mux.HandleFunc("POST /api/azure/billing/start", s.handleAzureStart)
	mux.HandleFunc("POST /api/azure/billing/poll", s.handleAzurePoll)
	mux.HandleFunc("POST /api/azure/billing/csv", s.handleAzureCSV)
	mux.HandleFunc("POST /api/kubecost/allocation", s.handleKubecostAllocation)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.server.Handler = s.withObservability(mux)
	return s
}

// Handler exposes the configured handler chain (used by tests)
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr, "version", version.Version)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// indexPageData holds template data for the index page
type indexPageData struct {
	Version         string
	KubecostEnabled bool
}

// handleIndex serves a simple landing page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		s.logger.Error("Failed to parse index template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := indexPageData{
		Version:         version.Version,
		KubecostEnabled: s.kubecost != nil,
	}

	w.Header().Set("Content-Type", "text/html")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute index template", "error", err)
	}
}

// handleHealth handles health check requests (always returns 200 for liveness)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"status":"healthy","version":%q}`, version.Version); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}
