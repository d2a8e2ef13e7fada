package validation

import "testing"

func TestRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value string
		want  bool
	}{
		{"email dotted", Email, "a.b@c.co", true},
		{"email no tld", Email, "a@b", false},
		{"email long tld", Email, "a@b.info", false},
		{"email dashed domain", Email, "first-last@mail-host.com", true},
		{"email double dot", Email, "a..b@c.com", false},
		{"card spaced", CardNumber, "4111 1111 1111 1111", true},
		{"card dashed", CardNumber, "4111-1111-1111-1111", true},
		{"card letters", CardNumber, "abcd", false},
		{"card separators only", CardNumber, "- -", false},
		{"card empty", CardNumber, "", false},
		{"exp short", ExpDate, "7/2026", true},
		{"exp letters", ExpDate, "xx/xxxx", false},
		{"exp embedded", ExpDate, "exp 07/26!", true},
		{"exp strict embedded", ExpDateStrict, "exp 07/26!", false},
		{"exp strict", ExpDateStrict, "07/26", true},
		{"cvv", CVV, "123", true},
		{"cvv embedded", CVV, "a1234b", true},
		{"cvv short", CVV, "12", false},
		{"cvv strict embedded", CVVStrict, "a1234b", false},
		{"cvv strict five digits", CVVStrict, "12345", false},
		{"cvv strict", CVVStrict, "1234", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rule(tc.value); got != tc.want {
				t.Fatalf("rule(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
