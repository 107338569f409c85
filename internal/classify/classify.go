// Package classify routes normalized invoice records to object-store
// partitions. The split is binary on purpose: downstream storage only
// distinguishes cash-equivalent payments from everything else.
package classify

import (
	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
)

// Classify maps a record's payment method to its destination partition.
// cash and pix land in the cash partition; card, other, and null all land in
// the other partition. Pure and total: every record maps to exactly one of
// the two partitions.
func Classify(rec *schema.InvoiceRecord) constants.Partition {
	switch rec.Payment() {
	case constants.PaymentCash, constants.PaymentPix:
		return constants.PartitionCash
	default:
		return constants.PartitionOther
	}
}
