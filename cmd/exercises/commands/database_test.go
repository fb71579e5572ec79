package commands

import "testing"

func TestNormalizeExercise(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1", "1"},
		{"4", "4"},
		{"01", "1"},
		{"007", "7"},
		{" 2 ", "2"},
		{" 03 ", "3"},
		{"0", ""},
		{"00", ""},
		{"", ""},
		{"10", "10"},
		{"abc", "abc"},
	}
	for _, c := range cases {
		got := normalizeExercise(c.raw)
		if got != c.want {
			t.Errorf("normalizeExercise(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}
