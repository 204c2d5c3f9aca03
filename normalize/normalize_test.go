package normalize

import "testing"

func TestString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  Shaft  A-12 ", "shaft a-12"},
		{"MILLING", "milling"},
		{"a\tb\nc", "a b c"},
		{"zero\u200Bwidth", "zerowidth"},
		{"\uFEFFBOM lead", "bom lead"},
		{"ＦＷ１２３", "fw123"}, // fullwidth folds via NFKC
		{"เจาะ  รู", "เจาะ รู"},
	}
	for _, tc := range cases {
		if got := String(tc.in); got != tc.want {
			t.Errorf("String(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProjectNo(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"007", "7"},
		{"7", "7"},
		{" 0A7 ", "a7"},
		{"000", "0"},
		{"0", "0"},
		{"", ""},
		{"PJ-052", "pj-052"},
	}
	for _, tc := range cases {
		if got := ProjectNo(tc.in); got != tc.want {
			t.Errorf("ProjectNo(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
