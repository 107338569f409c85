package schema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/common"
)

// Normalizer validates and normalizes candidate records coming out of the
// record extractor. It is the only place untyped maps are allowed; everything
// downstream sees InvoiceRecord.
type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize turns an untyped candidate mapping into an InvoiceRecord.
// Rules:
//   - exactly the nine canonical keys are retained, extras dropped, missing
//     keys defaulted to null;
//   - numeric values are coerced to decimal strings before validation;
//   - string fields are trimmed, and trim-to-empty becomes null;
//   - payment_method is lowercased and coerced to "other" when it is not one
//     of the enumerated values (an unknown label never fails the file);
//   - a record that normalizes to all-null fails as EmptyExtraction.
//
// Normalize is idempotent: re-normalizing its own output is a no-op.
func (n *Normalizer) Normalize(candidate map[string]any) (*InvoiceRecord, error) {
	if candidate == nil {
		return nil, fmt.Errorf("%w: nil candidate", common.ErrInvalidRecordSchema)
	}

	retained := make(map[string]any, len(CanonicalKeys))
	var dropped []string
	for k := range candidate {
		if !isCanonical(k) {
			dropped = append(dropped, k)
		}
	}
	for _, k := range CanonicalKeys {
		retained[k] = coerceValue(candidate[k])
	}
	if len(dropped) > 0 {
		n.logger.Warn("schema.normalize.dropped_keys", "keys", dropped)
	}

	// payment_method coercion happens before validation so the schema only
	// ever sees enumerable values or null.
	if v, ok := retained[KeyPaymentMethod].(string); ok {
		pm, known := constants.CanonicalizePaymentMethod(v)
		if !known {
			n.logger.Warn("schema.normalize.payment_method_coerced", "value", v, "coerced_to", string(pm))
		}
		retained[KeyPaymentMethod] = string(pm)
	}

	doc, err := json.Marshal(retained)
	if err != nil {
		return nil, fmt.Errorf("%w: encode candidate: %v", common.ErrInvalidRecordSchema, err)
	}
	if err := validateAgainstSchema(buildRecordSchema(), doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidRecordSchema, err)
	}

	var rec InvoiceRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode candidate: %v", common.ErrInvalidRecordSchema, err)
	}

	if rec.Empty() {
		return nil, fmt.Errorf("%w: all fields null after normalization", common.ErrEmptyExtraction)
	}
	return &rec, nil
}

func isCanonical(key string) bool {
	for _, k := range CanonicalKeys {
		if k == key {
			return true
		}
	}
	return false
}

// coerceValue maps a raw candidate value onto string-or-nil. Numbers become
// decimal strings (period separator), trimmed-empty strings become nil, and
// anything non-scalar becomes nil.
func coerceValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		return s
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return nil
	default:
		return nil
	}
}
