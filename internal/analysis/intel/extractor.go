package intel

import (
	"regexp"
	"sort"
	"strings"

	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
)

var (
	// 9-18 digits, optionally grouped with spaces or hyphens.
	bankAccountPattern = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4,10}\b`)

	// local-part@provider against the closed list of payment-handle suffixes.
	upiPattern = regexp.MustCompile(`(?i)\b[\w.\-]+@(?:paytm|ybl|axisbank|oksbi|icici|sbi|hdfc|airtel|freecharge|jiomoney|mobikwik|apl|okicici|okaxis|tmp)\b`)

	// Indian mobile numbers, optionally with a +91 prefix.
	phonePattern = regexp.MustCompile(`(?:\+91[\s-]?)?[6-9]\d{9}\b`)

	urlPattern   = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	bitlyPattern = regexp.MustCompile(`(?i)bit\.ly/\S+`)

	separators = strings.NewReplacer(" ", "", "-", "")
)

// scamKeywords is the fixed vocabulary matched case-insensitively as
// substrings of the message text.
var scamKeywords = []string{
	"urgent", "immediately", "blocked", "suspended", "verify",
	"otp", "password", "cvv", "expire", "limited time", "act now",
	"account closed", "confirm identity", "click here", "debit", "credit",
	"transaction", "kyc", "bank", "financial", "loan", "lucky draw",
	"prize", "winning", "redeem", "cashback", "reward", "congratulations",
	"fund", "transfer", "link", "application", "form", "secret", "code",
	"security", "fraud", "alert", "problem", "issue", "restore", "validate",
	"investment", "opportunity", "profit", "money", "fee", "tax", "customs",
	"delivery", "package", "shipment", "update", "attention", "warning",
	"confirm", "personal", "information", "details", "contact", "official",
	"government", "police", "court", "arrest", "warrant", "fine", "penalty",
}

// ExtractAll runs every extractor over the message text and returns the
// deduplicated, sorted values per category. Identical text always yields
// identical results. Empty or whitespace-only text yields empty lists
// for all five categories.
func ExtractAll(text string) model.Intelligence {
	if strings.TrimSpace(text) == "" {
		return model.Intelligence{
			model.CategoryBankAccounts:  {},
			model.CategoryUPIIDs:        {},
			model.CategoryPhishingLinks: {},
			model.CategoryPhoneNumbers:  {},
			model.CategoryKeywords:      {},
		}
	}

	return model.Intelligence{
		model.CategoryBankAccounts:  extractBankAccounts(text),
		model.CategoryUPIIDs:        extractUPIIDs(text),
		model.CategoryPhishingLinks: extractPhishingLinks(text),
		model.CategoryPhoneNumbers:  extractPhoneNumbers(text),
		model.CategoryKeywords:      extractKeywords(text),
	}
}

func extractBankAccounts(text string) []string {
	found := make(map[string]struct{})
	for _, match := range bankAccountPattern.FindAllString(text, -1) {
		cleaned := separators.Replace(match)
		if validBankAccount(cleaned) {
			found[cleaned] = struct{}{}
		}
	}
	return sortedValues(found)
}

func extractUPIIDs(text string) []string {
	found := make(map[string]struct{})
	for _, match := range upiPattern.FindAllString(text, -1) {
		found[strings.ToLower(match)] = struct{}{}
	}
	return sortedValues(found)
}

func extractPhoneNumbers(text string) []string {
	found := make(map[string]struct{})
	for _, match := range phonePattern.FindAllString(text, -1) {
		cleaned := separators.Replace(match)
		if validPhoneNumber(cleaned) {
			found[cleaned] = struct{}{}
		}
	}
	return sortedValues(found)
}

func extractPhishingLinks(text string) []string {
	found := make(map[string]struct{})
	for _, pattern := range []*regexp.Regexp{urlPattern, bitlyPattern} {
		for _, match := range pattern.FindAllString(text, -1) {
			cleaned := strings.Trim(match, ".,;!?\"'")
			if validURL(cleaned) {
				found[cleaned] = struct{}{}
			}
		}
	}
	return sortedValues(found)
}

func extractKeywords(text string) []string {
	found := make(map[string]struct{})
	lowered := strings.ToLower(text)
	for _, keyword := range scamKeywords {
		if strings.Contains(lowered, keyword) {
			found[keyword] = struct{}{}
		}
	}
	return sortedValues(found)
}

func sortedValues(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
