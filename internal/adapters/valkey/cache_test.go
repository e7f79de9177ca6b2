package valkey

import "testing"

func TestOperation(t *testing.T) {
	cases := map[string]string{
		"grid:lines:3:0.000000": "grid",
		"plain":                 "plain",
		"":                      "",
	}
	for key, want := range cases {
		if got := operation(key); got != want {
			t.Errorf("operation(%q): expected %q, got %q", key, want, got)
		}
	}
}
