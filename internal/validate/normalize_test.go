package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"John.Doe@Email.com", "john.doe@email.com", true},
		{"john.doe@email.com ", "john.doe@email.com", true},
		{"  USER@EXAMPLE.ORG", "user@example.org", true},
		{"", "", false},
		{"   ", "", false},
		{"no-at-sign", "", false},
		{"@domain.com", "", false},
		{"user@", "", false},
		{"user@nodot", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeEmail(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizeEmailCaseInsensitiveKeys(t *testing.T) {
	a, okA := NormalizeEmail("John.Doe@Email.com")
	b, okB := NormalizeEmail("john.doe@email.com ")
	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"555-7410", "5557410", true},
		{"(555) 741-0123", "5557410123", true},
		{"+1 555 741 0123", "+15557410123", true},
		{"1-555-741-0123", "+15557410123", true},
		{"555.8520", "5558520", true},
		{"", "", false},
		{"n/a", "", false},
		{"12345", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
