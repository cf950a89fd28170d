package intel

import (
	"reflect"
	"testing"

	model "github.com/priyansh-soni/honeypot-agent/internal/model/session"
)

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestExtractAllEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		result := ExtractAll(text)
		if len(result) != 5 {
			t.Fatalf("expected all five categories, got %d", len(result))
		}
		for cat, values := range result {
			if len(values) != 0 {
				t.Fatalf("category %s not empty for blank text: %v", cat, values)
			}
		}
	}
}

func TestExtractAllDeterministic(t *testing.T) {
	text := "URGENT: account 1234-5678-90123456 suspended, pay fee@paytm or call +919876543210, see http://scam.site now"
	first := ExtractAll(text)
	second := ExtractAll(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not deterministic:\n%v\n%v", first, second)
	}
}

func TestExtractBankAccountGrouped(t *testing.T) {
	result := ExtractAll("Your account 1234-5678-90123456 has been suspended")

	accounts := result[model.CategoryBankAccounts]
	if !reflect.DeepEqual(accounts, []string{"1234567890123456"}) {
		t.Fatalf("expected normalized 16-digit account, got %v", accounts)
	}
	if !contains(result[model.CategoryKeywords], "suspended") {
		t.Fatalf("expected keyword 'suspended', got %v", result[model.CategoryKeywords])
	}
}

func TestBankAccountValidation(t *testing.T) {
	// Repeated digits are never an account number.
	if validBankAccount("111111111") {
		t.Fatal("all-identical 9-digit value accepted")
	}
	if validBankAccount("0000000000000000") {
		t.Fatal("all-identical 16-digit value accepted")
	}

	// Bare sequential ramps are rejected, longer numbers containing
	// the ramp are kept.
	if validBankAccount("1234567890") {
		t.Fatal("ascending ramp accepted")
	}
	if validBankAccount("9876543210") {
		t.Fatal("descending ramp accepted")
	}
	if validBankAccount("0123456789") {
		t.Fatal("padded ascending ramp accepted")
	}
	if !validBankAccount("123456789012") {
		t.Fatal("12-digit number rejected")
	}
	if !validBankAccount("1234567890123456") {
		t.Fatal("16-digit number rejected")
	}
	if !validBankAccount("9876543210987") {
		t.Fatal("13-digit number rejected")
	}

	// Length bounds and digit purity.
	if validBankAccount("12345678") {
		t.Fatal("8-digit value accepted")
	}
	if validBankAccount("1234567890123456789") {
		t.Fatal("19-digit value accepted")
	}
	if validBankAccount("123A4567890") {
		t.Fatal("non-digit value accepted")
	}
	if validBankAccount("") {
		t.Fatal("empty value accepted")
	}
}

func TestExtractBankAccountsMixed(t *testing.T) {
	text := "My account is 1234-5678-90123456 and also 9876 5432 1098. Repeated: 7777-7777-7777-7777. Too short: 987654."
	accounts := extractBankAccounts(text)

	for _, want := range []string{"1234567890123456", "987654321098"} {
		if !contains(accounts, want) {
			t.Fatalf("missing account %s in %v", want, accounts)
		}
	}
	if contains(accounts, "7777777777777777") {
		t.Fatalf("all-identical number extracted: %v", accounts)
	}
}

func TestExtractUPIIDs(t *testing.T) {
	text := "My UPI ID is User@Paytm and another one is john.doe@ybl. Ignore email@example.com."
	ids := extractUPIIDs(text)

	want := []string{"john.doe@ybl", "user@paytm"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestExtractPhoneNumbers(t *testing.T) {
	result := ExtractAll("Call +919876543210 or 8765432109, not 123456789")

	phones := result[model.CategoryPhoneNumbers]
	want := []string{"+919876543210", "8765432109"}
	if !reflect.DeepEqual(phones, want) {
		t.Fatalf("expected %v, got %v", want, phones)
	}
}

func TestPhoneRejectsInvalidLeadingDigit(t *testing.T) {
	phones := extractPhoneNumbers("reach me at +911234567890")
	if len(phones) != 0 {
		t.Fatalf("mobile range starts at 6, got %v", phones)
	}
}

func TestExtractPhishingLinks(t *testing.T) {
	text := "Visit http://phishing.com/scam and also bit.ly/malicious. This is not a link: example.com. Good link: https://valid.org/safe"
	links := extractPhishingLinks(text)

	for _, want := range []string{"http://phishing.com/scam", "bit.ly/malicious", "https://valid.org/safe"} {
		if !contains(links, want) {
			t.Fatalf("missing link %s in %v", want, links)
		}
	}
	if contains(links, "example.com") {
		t.Fatalf("bare domain extracted: %v", links)
	}
}

func TestLinkTrailingPunctuationStripped(t *testing.T) {
	links := extractPhishingLinks("Click www.fake-bank.su/login!")
	if !contains(links, "www.fake-bank.su/login") {
		t.Fatalf("expected trimmed link, got %v", links)
	}
}

func TestExtractKeywords(t *testing.T) {
	keywords := extractKeywords("This is an URGENT message to verify your details immediately. Click here!")

	for _, want := range []string{"urgent", "verify", "immediately", "click here", "details"} {
		if !contains(keywords, want) {
			t.Fatalf("missing keyword %s in %v", want, keywords)
		}
	}
	if contains(keywords, "message") {
		t.Fatalf("non-vocabulary word extracted: %v", keywords)
	}
}

func TestExtractAllCombined(t *testing.T) {
	text := "URGENT: Your account 1234-5678-90123456 has been suspended. " +
		"Visit http://scam.site to verify. Send funds to user@axisbank. This is a limited time offer."
	result := ExtractAll(text)

	if !contains(result[model.CategoryBankAccounts], "1234567890123456") {
		t.Fatalf("bank account missing: %v", result[model.CategoryBankAccounts])
	}
	if !contains(result[model.CategoryPhishingLinks], "http://scam.site") {
		t.Fatalf("link missing: %v", result[model.CategoryPhishingLinks])
	}
	if !contains(result[model.CategoryUPIIDs], "user@axisbank") {
		t.Fatalf("upi id missing: %v", result[model.CategoryUPIIDs])
	}
	for _, want := range []string{"urgent", "suspended", "limited time"} {
		if !contains(result[model.CategoryKeywords], want) {
			t.Fatalf("keyword %s missing: %v", want, result[model.CategoryKeywords])
		}
	}
}
