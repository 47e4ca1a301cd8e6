package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Visionary-Future/cloud-billing/internal/alibaba"
	"github.com/Visionary-Future/cloud-billing/internal/azure"
	"github.com/Visionary-Future/cloud-billing/internal/billing"
	"github.com/Visionary-Future/cloud-billing/internal/kubecost"
)

// alibabaRequest carries per-request Alibaba credentials and query parameters
type alibabaRequest struct {
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	BillingCycle    string `json:"billing_cycle"`
	BillingDate     string `json:"billing_date,omitempty"`
}

func (r alibabaRequest) credentials() (alibaba.Credentials, error) {
	if r.AccessKeyID == "" || r.AccessKeySecret == "" {
		return alibaba.Credentials{}, &billing.InvalidArgumentError{
			Field:  "credentials",
			Value:  "",
			Reason: "access_key_id and access_key_secret are required",
		}
	}
	return alibaba.Credentials{
		AccessKeyID:     r.AccessKeyID,
		AccessKeySecret: r.AccessKeySecret,
	}, nil
}

// azureRequest carries per-request Azure credentials plus the parameters of
// whichever report operation is being called
type azureRequest struct {
	TenantID         string `json:"tenant_id"`
	ClientID         string `json:"client_id"`
	ClientSecret     string `json:"client_secret"`
	BillingAccountID string `json:"billing_account_id,omitempty"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	Metric           string `json:"metric,omitempty"`
	Location         string `json:"location,omitempty"`
}

func (r azureRequest) credentials() (azure.Credentials, error) {
	if r.TenantID == "" || r.ClientID == "" || r.ClientSecret == "" {
		return azure.Credentials{}, &billing.InvalidArgumentError{
			Field:  "credentials",
			Value:  "",
			Reason: "tenant_id, client_id and client_secret are required",
		}
	}
	return azure.Credentials{
		TenantID:     r.TenantID,
		ClientID:     r.ClientID,
		ClientSecret: r.ClientSecret,
	}, nil
}

type kubecostRequest struct {
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Step      string   `json:"step,omitempty"`
	Aggregate []string `json:"aggregate,omitempty"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &billing.InvalidArgumentError{
			Field:  "request body",
			Value:  "",
			Reason: "must be valid JSON",
		}
	}
	return nil
}

// writeError maps the error taxonomy onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var invalidArg *billing.InvalidArgumentError
	var unauthorized *billing.UnauthorizedError
	var invalidResp *billing.InvalidResponseError
	var transient *billing.TransientError
	var upstream *billing.UpstreamError

	switch {
	case errors.As(err, &invalidArg):
		status = http.StatusBadRequest
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
	case errors.As(err, &invalidResp), errors.As(err, &upstream):
		status = http.StatusBadGateway
	case errors.As(err, &transient):
		status = http.StatusGatewayTimeout
	case errors.Is(err, billing.ErrNotImplemented):
		status = http.StatusNotImplemented
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func (s *Server) handleAlibabaBilling(w http.ResponseWriter, r *http.Request) {
	var req alibabaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	creds, err := req.credentials()
	if err != nil {
		s.writeError(w, err)
		return
	}

	client, err := s.newAlibaba(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items, err := client.FetchInstanceBill(r.Context(), req.BillingCycle, req.BillingDate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"billing_cycle": req.BillingCycle,
		"count":         len(items),
		"items":         items,
	})
}

func (s *Server) handleAlibabaBillingCSV(w http.ResponseWriter, r *http.Request) {
	var req alibabaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	creds, err := req.credentials()
	if err != nil {
		s.writeError(w, err)
		return
	}

	client, err := s.newAlibaba(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items, err := client.FetchInstanceBill(r.Context(), req.BillingCycle, req.BillingDate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "alibaba_billing_"+req.BillingCycle+".csv"))

	cw := csv.NewWriter(w)
	if err := cw.Write(alibaba.BillItemHeader); err != nil {
		s.logger.Error("Failed to write CSV header", "error", err)
		return
	}
	for _, item := range items {
		if err := cw.Write(item.CSVRow()); err != nil {
			s.logger.Error("Failed to write CSV row", "error", err)
			return
		}
	}
	cw.Flush()
}

func (s *Server) handleAlibabaAmortized(w http.ResponseWriter, r *http.Request) {
	var req alibabaRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	creds, err := req.credentials()
	if err != nil {
		s.writeError(w, err)
		return
	}

	client, err := s.newAlibaba(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items, err := client.FetchAmortizedCost(r.Context(), req.BillingCycle)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"billing_cycle": req.BillingCycle,
		"count":         len(items),
		"items":         items,
	})
}

func (s *Server) handleAzureStart(w http.ResponseWriter, r *http.Request) {
	var req azureRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	creds, err := req.credentials()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.BillingAccountID == "" {
		s.writeError(w, &billing.InvalidArgumentError{
			Field:  "billing_account_id",
			Value:  "",
			Reason: "must not be empty",
		})
		return
	}

	client, err := s.newAzure(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	location, err := client.StartReport(r.Context(), req.BillingAccountID, req.StartDate, req.EndDate, req.Metric)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"location": location})
}

func (s *Server) handleAzurePoll(w http.ResponseWriter, r *http.Request) {
	req, client, ok := s.azureLocationRequest(w, r)
	if !ok {
		return
	}

	result, err := client.PollOnce(r.Context(), req.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  string(result.Status),
		"csv_url": result.CSVURL,
	})
}

func (s *Server) handleAzureCSV(w http.ResponseWriter, r *http.Request) {
	req, client, ok := s.azureLocationRequest(w, r)
	if !ok {
		return
	}

	result, err := client.PollOnce(r.Context(), req.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result.Status == azure.StatusPending {
		s.writeJSON(w, http.StatusAccepted, map[string]string{"status": string(azure.StatusPending)})
		return
	}

	data, err := client.DownloadCSV(r.Context(), result.CSVURL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="azure_billing.csv"`)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write CSV response", "error", err)
	}
}

// azureLocationRequest decodes and validates the shared poll/download request
// shape and builds the per-request client
func (s *Server) azureLocationRequest(w http.ResponseWriter, r *http.Request) (azureRequest, azureReports, bool) {
	var req azureRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return req, nil, false
	}
	creds, err := req.credentials()
	if err != nil {
		s.writeError(w, err)
		return req, nil, false
	}
	if req.Location == "" {
		s.writeError(w, &billing.InvalidArgumentError{
			Field:  "location",
			Value:  "",
			Reason: "must carry the URL returned by the start call",
		})
		return req, nil, false
	}

	client, err := s.newAzure(creds)
	if err != nil {
		s.writeError(w, err)
		return req, nil, false
	}
	return req, client, true
}

func (s *Server) handleKubecostAllocation(w http.ResponseWriter, r *http.Request) {
	if s.kubecost == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "kubecost is not configured",
		})
		return
	}

	var req kubecostRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		s.writeError(w, &billing.InvalidArgumentError{
			Field:  "start",
			Value:  req.Start,
			Reason: "expected RFC 3339 timestamp",
		})
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		s.writeError(w, &billing.InvalidArgumentError{
			Field:  "end",
			Value:  req.End,
			Reason: "expected RFC 3339 timestamp",
		})
		return
	}

	allocations, err := s.kubecost.FetchAllocations(r.Context(), start, end, req.Step, req.Aggregate)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, kubecostSummaryResponse(allocations))
}

func kubecostSummaryResponse(allocations []kubecost.Allocation) map[string]any {
	return map[string]any{
		"allocations": len(allocations),
		"summary":     kubecost.Summarize(allocations),
	}
}
