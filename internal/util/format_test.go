package util

import "testing"

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{0.99, "$0.99"},
		{1234.5, "$1,234.5"},
		{2328942.98, "$2,328,942.98"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.in); got != c.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(3503); got != "3,503" {
		t.Errorf("FormatCount(3503) = %q, want %q", got, "3,503")
	}
	if got := FormatCount(0); got != "0" {
		t.Errorf("FormatCount(0) = %q, want %q", got, "0")
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(1, 4); got != "25.0%" {
		t.Errorf("FormatPercent(1, 4) = %q, want %q", got, "25.0%")
	}
	// Zero total must not divide by zero
	if got := FormatPercent(5, 0); got != "0.0%" {
		t.Errorf("FormatPercent(5, 0) = %q, want %q", got, "0.0%")
	}
}
