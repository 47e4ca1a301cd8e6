package alibaba

import "strconv"

// BillItemHeader is the CSV column order for exported bill items, matching
// the struct field order.
var BillItemHeader = []string{
	"AfterDiscountAmount", "InstanceSpec", "ProductName", "InstanceID",
	"BillAccountID", "DeductedByCashCoupons", "BillingDate", "ListPriceUnit",
	"PaymentAmount", "ListPrice", "DeductedByPrepaidCard", "InvoiceDiscount",
	"Item", "SubscriptionType", "PretaxGrossAmount", "InstanceConfig",
	"Currency", "CommodityCode", "ItemName", "CostUnit", "ResourceGroup",
	"AdjustAmount", "BillingType", "DeductedByCoupons", "Usage",
	"ProductDetail", "ProductCode", "Zone", "ProductType",
	"OutstandingAmount", "BizType", "BillingItem", "NickName", "PipCode",
	"IntranetIP", "ServicePeriodUnit", "ServicePeriod",
	"DeductedByResourcePackage", "UsageUnit", "InternetIP", "PretaxAmount",
	"OwnerID", "BillAccountName", "Region", "Tag", "CashAmount",
}

// CSVRow projects the item into BillItemHeader column order
func (i BillItem) CSVRow() []string {
	return []string{
		formatAmount(i.AfterDiscountAmount), i.InstanceSpec, i.ProductName,
		i.InstanceID, i.BillAccountID, formatAmount(i.DeductedByCashCoupons),
		i.BillingDate, i.ListPriceUnit, formatAmount(i.PaymentAmount),
		i.ListPrice, formatAmount(i.DeductedByPrepaidCard),
		formatAmount(i.InvoiceDiscount), i.Item, i.SubscriptionType,
		formatAmount(i.PretaxGrossAmount), i.InstanceConfig, i.Currency,
		i.CommodityCode, i.ItemName, i.CostUnit, i.ResourceGroup,
		formatAmount(i.AdjustAmount), i.BillingType,
		formatAmount(i.DeductedByCoupons), i.Usage, i.ProductDetail,
		i.ProductCode, i.Zone, i.ProductType,
		formatAmount(i.OutstandingAmount), i.BizType, i.BillingItem,
		i.NickName, i.PipCode, i.IntranetIP, i.ServicePeriodUnit,
		i.ServicePeriod, i.DeductedByResourcePackage, i.UsageUnit,
		i.InternetIP, formatAmount(i.PretaxAmount), i.OwnerID,
		i.BillAccountName, i.Region, i.Tag, formatAmount(i.CashAmount),
	}
}

// AmortizedItemHeader is the CSV column order for exported amortized-cost
// lines, matching the struct field order.
var AmortizedItemHeader = []string{
	"CurrentAmortizationPretaxAmount", "RemainingAmortizationDeductedByCoupons",
	"ProductName", "PreviouslyAmortizedExpenditureAmount", "InstanceID",
	"BillAccountID", "ProductDetailCode",
	"PreviouslyAmortizedRoundDownDiscount", "AmortizationStatus",
	"DeductedByPrepaidCard", "SplitItemName", "SubscriptionType",
	"CurrentAmortizationDeductedByCashCoupons", "CostUnitCode",
	"RemainingAmortizationDeductedByPrepaidCard", "CostUnit",
	"DeductedByCoupons", "ProductCode", "BillOwnerID", "BizType",
	"PreviouslyAmortizedPretaxAmount", "IntranetIP",
	"CurrentAmortizationPretaxGrossAmount", "InternetIP",
	"RemainingAmortizationExpenditureAmount", "Region",
	"RemainingAmortizationInvoiceDiscount",
	"PreviouslyAmortizedDeductedByCashCoupons",
	"CurrentAmortizationDeductedByCoupons",
	"CurrentAmortizationRoundDownDiscount",
	"CurrentAmortizationExpenditureAmount",
	"RemainingAmortizationRoundDownDiscount",
	"PreviouslyAmortizedInvoiceDiscount", "DeductedByCashCoupons",
	"PreviouslyAmortizedDeductedByCoupons",
	"RemainingAmortizationDeductedByCashCoupons", "InvoiceDiscount",
	"SplitProductDetail", "CurrentAmortizationDeductedByPrepaidCard",
	"AmortizationPeriod", "PretaxGrossAmount",
	"PreviouslyAmortizedPretaxGrossAmount", "ResourceGroup",
	"SplitAccountName", "RoundDownDiscount", "ProductDetail",
	"ConsumePeriod", "Zone", "BillOwnerName", "SplitItemID",
	"RemainingAmortizationPretaxGrossAmount", "PretaxAmount",
	"CurrentAmortizationInvoiceDiscount", "ExpenditureAmount",
	"RemainingAmortizationPretaxAmount", "BillAccountName", "Tag",
	"PreviouslyAmortizedDeductedByPrepaidCard",
}

// CSVRow projects the item into AmortizedItemHeader column order
func (i AmortizedItem) CSVRow() []string {
	return []string{
		formatAmount(i.CurrentAmortizationPretaxAmount),
		formatAmount(i.RemainingAmortizationDeductedByCoupons),
		i.ProductName,
		formatAmount(i.PreviouslyAmortizedExpenditureAmount),
		i.InstanceID, string(i.BillAccountID), i.ProductDetailCode,
		formatAmount(i.PreviouslyAmortizedRoundDownDiscount),
		i.AmortizationStatus, formatAmount(i.DeductedByPrepaidCard),
		i.SplitItemName, i.SubscriptionType,
		formatAmount(i.CurrentAmortizationDeductedByCashCoupons),
		i.CostUnitCode,
		formatAmount(i.RemainingAmortizationDeductedByPrepaidCard),
		i.CostUnit, formatAmount(i.DeductedByCoupons), i.ProductCode,
		string(i.BillOwnerID), i.BizType,
		formatAmount(i.PreviouslyAmortizedPretaxAmount), i.IntranetIP,
		formatAmount(i.CurrentAmortizationPretaxGrossAmount), i.InternetIP,
		formatAmount(i.RemainingAmortizationExpenditureAmount), i.Region,
		formatAmount(i.RemainingAmortizationInvoiceDiscount),
		formatAmount(i.PreviouslyAmortizedDeductedByCashCoupons),
		formatAmount(i.CurrentAmortizationDeductedByCoupons),
		formatAmount(i.CurrentAmortizationRoundDownDiscount),
		formatAmount(i.CurrentAmortizationExpenditureAmount),
		formatAmount(i.RemainingAmortizationRoundDownDiscount),
		formatAmount(i.PreviouslyAmortizedInvoiceDiscount),
		formatAmount(i.DeductedByCashCoupons),
		formatAmount(i.PreviouslyAmortizedDeductedByCoupons),
		formatAmount(i.RemainingAmortizationDeductedByCashCoupons),
		formatAmount(i.InvoiceDiscount), i.SplitProductDetail,
		formatAmount(i.CurrentAmortizationDeductedByPrepaidCard),
		i.AmortizationPeriod, formatAmount(i.PretaxGrossAmount),
		formatAmount(i.PreviouslyAmortizedPretaxGrossAmount),
		i.ResourceGroup, i.SplitAccountName,
		formatAmount(i.RoundDownDiscount), i.ProductDetail,
		i.ConsumePeriod, i.Zone, i.BillOwnerName, i.SplitItemID,
		formatAmount(i.RemainingAmortizationPretaxGrossAmount),
		formatAmount(i.PretaxAmount),
		formatAmount(i.CurrentAmortizationInvoiceDiscount),
		formatAmount(i.ExpenditureAmount),
		formatAmount(i.RemainingAmortizationPretaxAmount),
		i.BillAccountName, i.Tag,
		formatAmount(i.PreviouslyAmortizedDeductedByPrepaidCard),
	}
}

// formatAmount renders a monetary amount with the shortest exact decimal form
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
