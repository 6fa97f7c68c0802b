package llm

import "testing"

func TestParseScalarScore(t *testing.T) {
	cases := []struct {
		response string
		want     float64
		ok       bool
	}{
		{"0.85", 0.85, true},
		{"Score: 0.4 out of 1", 0.4, true},
		{"I'd rate this an 8", 0.8, true},
		{"8.5/10", 0.85, true},
		{"no numeric content here", 0, false},
		{"-3", 0, false},
		{"15", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseScalarScore(tc.response)
		if ok != tc.ok {
			t.Errorf("ParseScalarScore(%q) ok=%v, want %v", tc.response, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("ParseScalarScore(%q) = %v, want %v", tc.response, got, tc.want)
		}
	}
}
