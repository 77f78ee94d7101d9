package timecode

import (
	"math"
	"testing"
)

func TestFormatSubtitle(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{59.999, "00:00:59,999"},
		{61, "00:01:01,000"},
		{3599.25, "00:59:59,250"},
		{3661.042, "01:01:01,042"},
		{-5, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatSubtitle(tt.seconds); got != tt.want {
			t.Errorf("FormatSubtitle(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatSRTUsesDotSeparator(t *testing.T) {
	if got := FormatSRT(90.25); got != "00:01:30.250" {
		t.Fatalf("FormatSRT(90.25) = %q", got)
	}
}

func TestRangeToken(t *testing.T) {
	if got := RangeToken(10, 3725); got != "_00-00-10_01-02-05" {
		t.Fatalf("RangeToken(10, 3725) = %q", got)
	}
}

func TestParseValid(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"00:00:00,000", 0},
		{"0:0:1", 1},
		{"01:02:03", 3723},
		{"00:00:10,500", 10.5},
		{"00:00:10.500", 10.5},
		{"12:59:59,999", 46799.999},
		{" 00:01:00 ", 60},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.text)
		if !ok {
			t.Errorf("Parse(%q) rejected, want %v", tt.text, tt.want)
			continue
		}
		if math.Abs(got-tt.want) > 0.0005 {
			t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseRejects(t *testing.T) {
	inputs := []string{
		"",
		"1:2",
		"1:2:3:4",
		"1:61:00",
		"1:00:60",
		"-1:00:00",
		"0:-1:0",
		"abc",
		"00:00:10,",
		"1:2:x",
	}
	for _, text := range inputs {
		if got, ok := Parse(text); ok {
			t.Errorf("Parse(%q) = %v, want rejection", text, got)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.001, 1.25, 59.999, 61.5, 3661.042, 86399.5} {
		text := FormatSubtitle(seconds)
		got, ok := Parse(text)
		if !ok {
			t.Fatalf("Parse(%q) rejected", text)
		}
		if math.Abs(got-seconds) > 0.001 {
			t.Errorf("round trip %v -> %q -> %v drifted more than 1ms", seconds, text, got)
		}
	}
}
