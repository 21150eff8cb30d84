package pubkey

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"jupiter program", "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", true},
		{"wrapped sol mint", "So11111111111111111111111111111111111111112", true},
		{"system program", "11111111111111111111111111111111", true},
		{"empty", "", false},
		{"not base58", "0OIl+/=", false},
		{"too short", "abc", false},
		{"too long", "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4JUP6", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.in); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsOnCurveRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"", "abc", "not base58 +/="} {
		if IsOnCurve(in) {
			t.Errorf("IsOnCurve(%q) = true, want false", in)
		}
	}
}

func TestIsOnCurveImpliesValid(t *testing.T) {
	addrs := []string{
		"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
		"So11111111111111111111111111111111111111112",
		"11111111111111111111111111111111",
	}
	for _, a := range addrs {
		if IsOnCurve(a) && !IsValid(a) {
			t.Errorf("IsOnCurve(%q) true but IsValid false", a)
		}
	}
}
