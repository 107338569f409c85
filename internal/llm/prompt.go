package llm

import (
	"strings"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
)

// BuildPrompt composes the extraction prompt for one document. The contract
// the prompt enforces is strict: only a JSON object, exactly the nine
// canonical keys, JSON null (never a language null token) for anything the
// model cannot find.
func BuildPrompt(text string) string {
	keys := make([]string, len(schema.CanonicalKeys))
	for i, k := range schema.CanonicalKeys {
		keys[i] = `"` + k + `"`
	}

	var b strings.Builder
	b.WriteString("Analyze the following text extracted from a receipt or invoice and return ONLY a valid JSON object with these fields: ")
	b.WriteString(strings.Join(keys, ", "))
	b.WriteString(".\n\nFollow these rules strictly:\n")
	b.WriteString("- \"issue_date\" must use the DD/MM/YYYY format.\n")
	b.WriteString("- \"total_amount\" must be a string containing only digits and a period as the decimal separator (e.g. \"123.45\").\n")
	b.WriteString("- \"payment_method\" must be one of the following strings: ")
	b.WriteString(quoteJoin(constants.PaymentMethodStrings()))
	b.WriteString(".\n")
	b.WriteString("- If a field is not found in the text, its value must be JSON null (the JSON null value, never the string \"null\" or a language-specific null token).\n")
	b.WriteString("- Do not wrap the response in ```json fences.\n")
	b.WriteString("- Do not include any explanation or additional text, only the JSON object.\n")
	b.WriteString("\nDocument text:\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n")
	return b.String()
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}
