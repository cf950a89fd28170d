package intel

import "strings"

const (
	ascendingRun  = "123456789"
	descendingRun = "987654321"
)

// validBankAccount accepts a cleaned digit string of 9-18 digits that is
// neither a single repeated digit nor a bare sequential ramp. The ramp
// check only disqualifies values the nine-digit run makes up almost
// entirely (at most one extra digit); longer numbers legitimately
// contain such runs.
func validBankAccount(number string) bool {
	if len(number) < 9 || len(number) > 18 {
		return false
	}
	if !allDigits(number) {
		return false
	}
	if allSameDigit(number) {
		return false
	}
	if len(number) <= 10 && (strings.Contains(number, ascendingRun) || strings.Contains(number, descendingRun)) {
		return false
	}
	return true
}

// validPhoneNumber accepts a cleaned match: 13 characters when the +91
// prefix is present, a bare 10-digit run otherwise.
func validPhoneNumber(number string) bool {
	if strings.HasPrefix(number, "+91") {
		return len(number) == 13 && allDigits(number[3:])
	}
	return len(number) == 10 && allDigits(number)
}

// validURL performs a structural well-formedness check: a scheme or
// www. prefix (or a known shortener) followed by a non-empty host/path.
func validURL(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, prefix := range []string{"http://", "https://", "www.", "bit.ly/"} {
		if strings.HasPrefix(lowered, prefix) {
			rest := raw[len(prefix):]
			return rest != "" && !strings.ContainsAny(rest, " \t")
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
