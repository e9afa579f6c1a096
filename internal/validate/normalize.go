package validate

import "strings"

// NormalizeEmail canonicalizes an email address for duplicate grouping:
// trimmed, lower-cased, and shape-checked (local@domain with a dotted
// domain). ok is false for missing or malformed values.
func NormalizeEmail(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return "", false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") {
		return "", false
	}
	return s, true
}

// NormalizePhone reduces a phone number to a canonical digit sequence,
// keeping a leading + country-code marker when present and promoting a bare
// 11-digit 1-prefixed number to its +1 form. Values with fewer than seven
// digits are treated as unknown contacts, not errors.
func NormalizePhone(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	hasPlus := strings.HasPrefix(s, "+")
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 7 {
		return "", false
	}
	if hasPlus {
		return "+" + d, true
	}
	if len(d) == 11 && d[0] == '1' {
		return "+" + d, true
	}
	return d, true
}
