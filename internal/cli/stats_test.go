package cli

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "1d", want: 24 * time.Hour},
		{in: "48h", want: 48 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
	}
	for _, tc := range cases {
		got, err := parseDuration(tc.in)
		if err != nil {
			t.Errorf("parseDuration(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := parseDuration("sometime"); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestFormatStatsDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{in: 30 * 24 * time.Hour, want: "30 days"},
		{in: 24 * time.Hour, want: "1 days"},
		{in: 36 * time.Hour, want: "36h"},
		{in: 2 * time.Hour, want: "2h"},
	}
	for _, tc := range cases {
		if got := formatStatsDuration(tc.in); got != tc.want {
			t.Errorf("formatStatsDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
