package azure

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Visionary-Future/cloud-billing/internal/billing"
)

// ChargeType classifies one billing record line
type ChargeType string

// Charge types observed in Azure cost detail reports
const (
	ChargeTypeRoundingAdjustment ChargeType = "RoundingAdjustment"
	ChargeTypePurchase           ChargeType = "Purchase"
	ChargeTypeUsage              ChargeType = "Usage"
	ChargeTypeRefund             ChargeType = "Refund"
	ChargeTypeOther              ChargeType = "Other"
	ChargeTypeUnusedReservation  ChargeType = "UnusedReservation"
)

func parseChargeType(s string) (ChargeType, error) {
	switch ChargeType(s) {
	case ChargeTypeRoundingAdjustment, ChargeTypePurchase, ChargeTypeUsage,
		ChargeTypeRefund, ChargeTypeOther, ChargeTypeUnusedReservation:
		return ChargeType(s), nil
	}
	return "", fmt.Errorf("unknown charge type %q", s)
}

// csvDateLayout is the date form used inside report CSVs
const csvDateLayout = "01/02/2006"

// BillingRecord is one row of a downloaded cost detail CSV. Most columns
// stay verbatim strings; only dates, the four cost amounts and the charge
// type are coerced at ingestion.
type BillingRecord struct {
	InvoiceID                    string
	PreviousInvoiceID            string
	BillingAccountID             string
	BillingAccountName           string
	BillingProfileID             string
	BillingProfileName           string
	InvoiceSectionID             string
	InvoiceSectionName           string
	ResellerName                 string
	ResellerMpnID                string
	CostCenter                   string
	BillingPeriodEndDate         string
	BillingPeriodStartDate       string
	ServicePeriodStartDate       *time.Time
	ServicePeriodEndDate         *time.Time
	Date                         *time.Time
	ServiceFamily                string
	ProductOrderID               string
	ProductOrderName             string
	ConsumedService              string
	MeterID                      string
	MeterName                    string
	MeterCategory                string
	MeterSubCategory             string
	MeterRegion                  string
	ProductID                    string
	ProductName                  string
	SubscriptionID               string
	SubscriptionName             string
	PublisherType                string
	PublisherID                  string
	PublisherName                string
	ResourceGroupName            string
	ResourceID                   string
	ResourceLocation             string
	Location                     string
	EffectivePrice               string
	Quantity                     string
	UnitOfMeasure                string
	ChargeType                   ChargeType
	BillingCurrency              string
	PricingCurrency              string
	CostInBillingCurrency        float64
	CostInPricingCurrency        string
	CostInUSD                    float64
	PaygCostInBillingCurrency    float64
	PaygCostInUSD                float64
	ExchangeRatePricingToBilling string
	ExchangeRateDate             string
	IsAzureCreditEligible        string
	ServiceInfo1                 string
	ServiceInfo2                 string
	AdditionalInfo               string
	Tags                         string
	PayGPrice                    string
	Frequency                    string
	Term                         string
	ReservationID                string
	ReservationName              string
	PricingModel                 string
	UnitPrice                    string
	CostAllocationRuleName       string
	BenefitID                    string
	BenefitName                  string
	Provider                     string
}

// RecordHeader is the CSV column order, matching the provider's report
// header names.
var RecordHeader = []string{
	"invoiceId", "previousInvoiceId", "billingAccountId", "billingAccountName",
	"billingProfileId", "billingProfileName", "invoiceSectionId",
	"invoiceSectionName", "resellerName", "resellerMpnId", "costCenter",
	"billingPeriodEndDate", "billingPeriodStartDate", "servicePeriodStartDate",
	"servicePeriodEndDate", "date", "serviceFamily", "productOrderId",
	"productOrderName", "consumedService", "meterId", "meterName",
	"meterCategory", "meterSubCategory", "meterRegion", "ProductId",
	"ProductName", "SubscriptionId", "subscriptionName", "publisherType",
	"publisherId", "publisherName", "resourceGroupName", "ResourceId",
	"resourceLocation", "location", "effectivePrice", "quantity",
	"unitOfMeasure", "chargeType", "billingCurrency", "pricingCurrency",
	"costInBillingCurrency", "costInPricingCurrency", "costInUsd",
	"paygCostInBillingCurrency", "paygCostInUsd",
	"exchangeRatePricingToBilling", "exchangeRateDate",
	"isAzureCreditEligible", "serviceInfo1", "serviceInfo2", "additionalInfo",
	"tags", "PayGPrice", "frequency", "term", "reservationId",
	"reservationName", "pricingModel", "unitPrice", "costAllocationRuleName",
	"benefitId", "benefitName", "provider",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV decodes a downloaded report into billing records. The first line
// is the header; every data row must validate, and any malformed row fails
// the whole parse. A leading UTF-8 byte-order mark is stripped.
func ParseCSV(data []byte) ([]BillingRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // column count is validated against the header below

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &billing.InvalidResponseError{Reason: "malformed report CSV", Err: err}
	}
	if len(rows) == 0 {
		return nil, &billing.InvalidResponseError{Reason: "report CSV has no header row"}
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, name := range RecordHeader {
		if _, ok := index[name]; !ok {
			return nil, &billing.InvalidResponseError{
				Reason: fmt.Sprintf("report CSV missing column %q", name),
			}
		}
	}

	records := make([]BillingRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			return nil, &billing.InvalidResponseError{
				Reason: fmt.Sprintf("row %d has %d fields, header has %d", line+2, len(row), len(rows[0])),
			}
		}
		record, err := parseRecord(index, row)
		if err != nil {
			return nil, &billing.InvalidResponseError{
				Reason: fmt.Sprintf("row %d failed validation", line+2),
				Err:    err,
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// rowReader reads one CSV row by column name, collecting the first coercion
// failure instead of returning an error per field
type rowReader struct {
	index map[string]int
	row   []string
	err   error
}

func (r *rowReader) str(name string) string {
	return r.row[r.index[name]]
}

// date parses MM/DD/YYYY; empty or unparseable values become nil
func (r *rowReader) date(name string) *time.Time {
	v := r.str(name)
	if v == "" {
		return nil
	}
	t, err := time.Parse(csvDateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

// money parses a cost amount; empty becomes 0, anything else must parse
func (r *rowReader) money(name string) float64 {
	v := r.str(name)
	if v == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %q: %w", name, err)
	}
	return f
}

func (r *rowReader) chargeType(name string) ChargeType {
	ct, err := parseChargeType(r.str(name))
	if err != nil && r.err == nil {
		r.err = err
	}
	return ct
}

func parseRecord(index map[string]int, row []string) (BillingRecord, error) {
	r := &rowReader{index: index, row: row}

	record := BillingRecord{
		InvoiceID:                    r.str("invoiceId"),
		PreviousInvoiceID:            r.str("previousInvoiceId"),
		BillingAccountID:             r.str("billingAccountId"),
		BillingAccountName:           r.str("billingAccountName"),
		BillingProfileID:             r.str("billingProfileId"),
		BillingProfileName:           r.str("billingProfileName"),
		InvoiceSectionID:             r.str("invoiceSectionId"),
		InvoiceSectionName:           r.str("invoiceSectionName"),
		ResellerName:                 r.str("resellerName"),
		ResellerMpnID:                r.str("resellerMpnId"),
		CostCenter:                   r.str("costCenter"),
		BillingPeriodEndDate:         r.str("billingPeriodEndDate"),
		BillingPeriodStartDate:       r.str("billingPeriodStartDate"),
		ServicePeriodStartDate:       r.date("servicePeriodStartDate"),
		ServicePeriodEndDate:         r.date("servicePeriodEndDate"),
		Date:                         r.date("date"),
		ServiceFamily:                r.str("serviceFamily"),
		ProductOrderID:               r.str("productOrderId"),
		ProductOrderName:             r.str("productOrderName"),
		ConsumedService:              r.str("consumedService"),
		MeterID:                      r.str("meterId"),
		MeterName:                    r.str("meterName"),
		MeterCategory:                r.str("meterCategory"),
		MeterSubCategory:             r.str("meterSubCategory"),
		MeterRegion:                  r.str("meterRegion"),
		ProductID:                    r.str("ProductId"),
		ProductName:                  r.str("ProductName"),
		SubscriptionID:               r.str("SubscriptionId"),
		SubscriptionName:             r.str("subscriptionName"),
		PublisherType:                r.str("publisherType"),
		PublisherID:                  r.str("publisherId"),
		PublisherName:                r.str("publisherName"),
		ResourceGroupName:            r.str("resourceGroupName"),
		ResourceID:                   r.str("ResourceId"),
		ResourceLocation:             r.str("resourceLocation"),
		Location:                     r.str("location"),
		EffectivePrice:               r.str("effectivePrice"),
		Quantity:                     r.str("quantity"),
		UnitOfMeasure:                r.str("unitOfMeasure"),
		ChargeType:                   r.chargeType("chargeType"),
		BillingCurrency:              r.str("billingCurrency"),
		PricingCurrency:              r.str("pricingCurrency"),
		CostInBillingCurrency:        r.money("costInBillingCurrency"),
		CostInPricingCurrency:        r.str("costInPricingCurrency"),
		CostInUSD:                    r.money("costInUsd"),
		PaygCostInBillingCurrency:    r.money("paygCostInBillingCurrency"),
		PaygCostInUSD:                r.money("paygCostInUsd"),
		ExchangeRatePricingToBilling: r.str("exchangeRatePricingToBilling"),
		ExchangeRateDate:             r.str("exchangeRateDate"),
		IsAzureCreditEligible:        r.str("isAzureCreditEligible"),
		ServiceInfo1:                 r.str("serviceInfo1"),
		ServiceInfo2:                 r.str("serviceInfo2"),
		AdditionalInfo:               r.str("additionalInfo"),
		Tags:                         r.str("tags"),
		PayGPrice:                    r.str("PayGPrice"),
		Frequency:                    r.str("frequency"),
		Term:                         r.str("term"),
		ReservationID:                r.str("reservationId"),
		ReservationName:              r.str("reservationName"),
		PricingModel:                 r.str("pricingModel"),
		UnitPrice:                    r.str("unitPrice"),
		CostAllocationRuleName:       r.str("costAllocationRuleName"),
		BenefitID:                    r.str("benefitId"),
		BenefitName:                  r.str("benefitName"),
		Provider:                     r.str("provider"),
	}

	return record, r.err
}

// CSVRow projects the record back into RecordHeader column order. Parsing a
// written row yields identical field values; the coercions are idempotent.
func (rec BillingRecord) CSVRow() []string {
	return []string{
		rec.InvoiceID, rec.PreviousInvoiceID, rec.BillingAccountID,
		rec.BillingAccountName, rec.BillingProfileID, rec.BillingProfileName,
		rec.InvoiceSectionID, rec.InvoiceSectionName, rec.ResellerName,
		rec.ResellerMpnID, rec.CostCenter, rec.BillingPeriodEndDate,
		rec.BillingPeriodStartDate, formatDate(rec.ServicePeriodStartDate),
		formatDate(rec.ServicePeriodEndDate), formatDate(rec.Date),
		rec.ServiceFamily, rec.ProductOrderID, rec.ProductOrderName,
		rec.ConsumedService, rec.MeterID, rec.MeterName, rec.MeterCategory,
		rec.MeterSubCategory, rec.MeterRegion, rec.ProductID, rec.ProductName,
		rec.SubscriptionID, rec.SubscriptionName, rec.PublisherType,
		rec.PublisherID, rec.PublisherName, rec.ResourceGroupName,
		rec.ResourceID, rec.ResourceLocation, rec.Location,
		rec.EffectivePrice, rec.Quantity, rec.UnitOfMeasure,
		string(rec.ChargeType), rec.BillingCurrency, rec.PricingCurrency,
		formatMoney(rec.CostInBillingCurrency), rec.CostInPricingCurrency,
		formatMoney(rec.CostInUSD), formatMoney(rec.PaygCostInBillingCurrency),
		formatMoney(rec.PaygCostInUSD), rec.ExchangeRatePricingToBilling,
		rec.ExchangeRateDate, rec.IsAzureCreditEligible, rec.ServiceInfo1,
		rec.ServiceInfo2, rec.AdditionalInfo, rec.Tags, rec.PayGPrice,
		rec.Frequency, rec.Term, rec.ReservationID, rec.ReservationName,
		rec.PricingModel, rec.UnitPrice, rec.CostAllocationRuleName,
		rec.BenefitID, rec.BenefitName, rec.Provider,
	}
}

// WriteCSV renders records back into report CSV form
func WriteCSV(records []BillingRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(RecordHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := w.Write(rec.CSVRow()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(csvDateLayout)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
