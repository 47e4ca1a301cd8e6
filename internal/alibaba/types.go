package alibaba

import (
	"github.com/Visionary-Future/cloud-billing/internal/billing"
)

// BillItem is one instance-level line of the DescribeInstanceBill response.
// Field names match the wire keys exactly, so no struct tags are needed.
// Immutable once parsed.
type BillItem struct {
	AfterDiscountAmount       float64
	InstanceSpec              string
	ProductName               string
	InstanceID                string
	BillAccountID             string
	DeductedByCashCoupons     float64
	BillingDate               string
	ListPriceUnit             string
	PaymentAmount             float64
	ListPrice                 string
	DeductedByPrepaidCard     float64
	InvoiceDiscount           float64
	Item                      string
	SubscriptionType          string
	PretaxGrossAmount         float64
	InstanceConfig            string
	Currency                  string
	CommodityCode             string
	ItemName                  string
	CostUnit                  string
	ResourceGroup             string
	AdjustAmount              float64
	BillingType               string
	DeductedByCoupons         float64
	Usage                     string
	ProductDetail             string
	ProductCode               string
	Zone                      string
	ProductType               string
	OutstandingAmount         float64
	BizType                   string
	BillingItem               string
	NickName                  string
	PipCode                   string
	IntranetIP                string
	ServicePeriodUnit         string
	ServicePeriod             string
	DeductedByResourcePackage string
	UsageUnit                 string
	InternetIP                string
	PretaxAmount              float64
	OwnerID                   string
	BillAccountName           string
	Region                    string
	Tag                       string
	CashAmount                float64
}

// AmortizedItem is one line of the amortized-cost response. BillAccountID and
// BillOwnerID arrive inconsistently as number or string, so they ingest
// through billing.FlexString.
type AmortizedItem struct {
	CurrentAmortizationPretaxAmount            float64
	RemainingAmortizationDeductedByCoupons     float64
	ProductName                                string
	PreviouslyAmortizedExpenditureAmount       float64
	InstanceID                                 string
	BillAccountID                              billing.FlexString
	ProductDetailCode                          string
	PreviouslyAmortizedRoundDownDiscount       float64
	AmortizationStatus                         string
	DeductedByPrepaidCard                      float64
	SplitItemName                              string
	SubscriptionType                           string
	CurrentAmortizationDeductedByCashCoupons   float64
	CostUnitCode                               string
	RemainingAmortizationDeductedByPrepaidCard float64
	CostUnit                                   string
	DeductedByCoupons                          float64
	ProductCode                                string
	BillOwnerID                                billing.FlexString
	BizType                                    string
	PreviouslyAmortizedPretaxAmount            float64
	IntranetIP                                 string
	CurrentAmortizationPretaxGrossAmount       float64
	InternetIP                                 string
	RemainingAmortizationExpenditureAmount     float64
	Region                                     string
	RemainingAmortizationInvoiceDiscount       float64
	PreviouslyAmortizedDeductedByCashCoupons   float64
	CurrentAmortizationDeductedByCoupons       float64
	CurrentAmortizationRoundDownDiscount       float64
	CurrentAmortizationExpenditureAmount       float64
	RemainingAmortizationRoundDownDiscount     float64
	PreviouslyAmortizedInvoiceDiscount         float64
	DeductedByCashCoupons                      float64
	PreviouslyAmortizedDeductedByCoupons       float64
	RemainingAmortizationDeductedByCashCoupons float64
	InvoiceDiscount                            float64
	SplitProductDetail                         string
	CurrentAmortizationDeductedByPrepaidCard   float64
	AmortizationPeriod                         string
	PretaxGrossAmount                          float64
	PreviouslyAmortizedPretaxGrossAmount       float64
	ResourceGroup                              string
	SplitAccountName                           string
	RoundDownDiscount                          float64
	ProductDetail                              string
	ConsumePeriod                              string
	Zone                                       string
	BillOwnerName                              string
	SplitItemID                                string
	RemainingAmortizationPretaxGrossAmount     float64
	PretaxAmount                               float64
	CurrentAmortizationInvoiceDiscount         float64
	ExpenditureAmount                          float64
	RemainingAmortizationPretaxAmount          float64
	BillAccountName                            string
	Tag                                        string
	PreviouslyAmortizedDeductedByPrepaidCard   float64
}

// page is the Data envelope shared by both bill actions
type page[T any] struct {
	BillingCycle string `json:"BillingCycle"`
	TotalCount   int    `json:"TotalCount"`
	AccountID    string `json:"AccountID"`
	AccountName  string `json:"AccountName"`
	MaxResults   int    `json:"MaxResults"`
	NextToken    string `json:"NextToken"`
	Items        []T    `json:"Items"`
}

// response is the outer BSS OpenAPI envelope
type response[T any] struct {
	RequestID string   `json:"RequestId"`
	Message   string   `json:"Message"`
	Code      string   `json:"Code"`
	Success   bool     `json:"Success"`
	Data      *page[T] `json:"Data"`
}
