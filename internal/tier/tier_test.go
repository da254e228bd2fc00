package tier

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		expected Tier
	}{
		{"pro", Pro},
		{"free", Free},
		{"", Free},
		{"enterprise", Free},
		{"PRO", Free},
	}

	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.expected {
			t.Errorf("Parse(%q): expected %s, got %s", tt.in, tt.expected, got)
		}
	}
}

func TestValid(t *testing.T) {
	for _, s := range []string{"free", "pro"} {
		if !Valid(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "basic", "Pro"} {
		if Valid(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
