package data

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{"pending", "approved", true},
		{"pending", "refused", true},
		{"pending", "pending", true},
		{"approved", "approved", false},
		{"refused", "refused", false},
		{"approved", "refused", false},
		{"approved", "pending", false},
		{"refused", "approved", false},
		{"refused", "pending", false},
		{"pending", "archived", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}
