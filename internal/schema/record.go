package schema

import "github.com/fiscalhub/invoice-ingest/constants"

// Canonical invoice keys. The set is fixed: every normalized record carries
// exactly these nine keys, each nullable, plus storage_location added after a
// successful relocation.
const (
	KeyIssuerName    = "issuer_name"
	KeyIssuerTaxID   = "issuer_tax_id"
	KeyIssuerAddress = "issuer_address"
	KeyConsumerTaxID = "consumer_tax_id"
	KeyIssueDate     = "issue_date"
	KeyInvoiceNumber = "invoice_number"
	KeyInvoiceSeries = "invoice_series"
	KeyTotalAmount   = "total_amount"
	KeyPaymentMethod = "payment_method"
)

// CanonicalKeys lists the nine invoice keys in schema order.
var CanonicalKeys = []string{
	KeyIssuerName,
	KeyIssuerTaxID,
	KeyIssuerAddress,
	KeyConsumerTaxID,
	KeyIssueDate,
	KeyInvoiceNumber,
	KeyInvoiceSeries,
	KeyTotalAmount,
	KeyPaymentMethod,
}

// InvoiceRecord is the canonical structured entity for one receipt/invoice.
// Nil means the extractor could not find the field; the key itself is never
// omitted from the JSON shape. Mutated once by the Normalizer, then only the
// late StorageLocation write after relocation.
type InvoiceRecord struct {
	IssuerName      *string `json:"issuer_name"`
	IssuerTaxID     *string `json:"issuer_tax_id"`
	IssuerAddress   *string `json:"issuer_address"`
	ConsumerTaxID   *string `json:"consumer_tax_id"`
	IssueDate       *string `json:"issue_date"`
	InvoiceNumber   *string `json:"invoice_number"`
	InvoiceSeries   *string `json:"invoice_series"`
	TotalAmount     *string `json:"total_amount"` // decimal string, period separator
	PaymentMethod   *string `json:"payment_method"`
	StorageLocation *string `json:"storage_location,omitempty"`
}

// Payment returns the canonical payment method, defaulting to PaymentOther
// when the field is null.
func (r *InvoiceRecord) Payment() constants.PaymentMethod {
	if r.PaymentMethod == nil {
		return constants.PaymentOther
	}
	pm, _ := constants.CanonicalizePaymentMethod(*r.PaymentMethod)
	return pm
}

// Empty reports whether every canonical field is null.
func (r *InvoiceRecord) Empty() bool {
	return r.IssuerName == nil &&
		r.IssuerTaxID == nil &&
		r.IssuerAddress == nil &&
		r.ConsumerTaxID == nil &&
		r.IssueDate == nil &&
		r.InvoiceNumber == nil &&
		r.InvoiceSeries == nil &&
		r.TotalAmount == nil &&
		r.PaymentMethod == nil
}
