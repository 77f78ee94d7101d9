package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", Auto, true},
		{"auto", Auto, true},
		{" AUTO ", Auto, true},
		{"en", "en", true},
		{"EN", "en", true},
		{"eng", "en", true},
		{"en-US", "en", true},
		{"uk", "uk", true},
		{"ukr", "uk", true},
		{"deu", "de", true},
		{"??", "", false},
		{"notalanguage", "", false},
	}
	for _, tc := range tests {
		got, ok := Normalize(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestHint(t *testing.T) {
	if got := Hint(Auto); got != "" {
		t.Errorf("Hint(auto) = %q, want empty", got)
	}
	if got := Hint(""); got != "" {
		t.Errorf("Hint(empty) = %q, want empty", got)
	}
	if got := Hint("uk"); got != "uk" {
		t.Errorf("Hint(uk) = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("auto"); got != "Auto-detect" {
		t.Errorf("DisplayName(auto) = %q", got)
	}
	if got := DisplayName("en"); got != "English" {
		t.Errorf("DisplayName(en) = %q", got)
	}
	if got := DisplayName("zz"); got == "" {
		t.Error("DisplayName must never be empty")
	}
}
