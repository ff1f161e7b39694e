// Package textutils extracts structured values from free-text transaction
// descriptions.
package textutils

import (
	"regexp"
	"strings"
)

var (
	merchantPrefix    = regexp.MustCompile(`(?i)^(?:DEBIT CARD PURCHASE|CREDIT CARD|ACH|CHECK|TRANSFER|PAYMENT)\b\s*-?\s*`)
	merchantRefSuffix = regexp.MustCompile(`\s+#\d+.*$`)
	merchantDateTail  = regexp.MustCompile(`\s+\d{2}/\d{2}.*$`)
)

// ExtractMerchant derives a merchant name from a bank description by removing
// known transaction-kind prefixes, a trailing "#1234..." reference and a
// trailing "MM/DD..." date. The description is returned unchanged when nothing
// is left.
func ExtractMerchant(description string) string {
	merchant := merchantPrefix.ReplaceAllString(description, "")
	merchant = merchantRefSuffix.ReplaceAllString(merchant, "")
	merchant = merchantDateTail.ReplaceAllString(merchant, "")
	merchant = strings.TrimSpace(merchant)
	if merchant == "" {
		return description
	}
	return merchant
}
