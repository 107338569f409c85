package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
)

func TestClassify(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name    string
		payment *string
		want    constants.Partition
	}{
		{"cash goes to cash partition", strPtr("cash"), constants.PartitionCash},
		{"pix goes to cash partition", strPtr("pix"), constants.PartitionCash},
		{"card goes to other partition", strPtr("card"), constants.PartitionOther},
		{"other goes to other partition", strPtr("other"), constants.PartitionOther},
		{"null goes to other partition", nil, constants.PartitionOther},
		{"unknown label goes to other partition", strPtr("boleto"), constants.PartitionOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &schema.InvoiceRecord{PaymentMethod: tt.payment}
			assert.Equal(t, tt.want, Classify(rec))
		})
	}
}
