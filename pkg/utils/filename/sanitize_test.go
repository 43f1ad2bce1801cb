package filename

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"nasa_1001":          "nasa_1001",
		"  spaced out  ":     "spaced-out",
		"a/b\\c":             "a-b-c",
		"../../escape":       "escape",
		".hidden":            "hidden",
		"trailing.":          "trailing",
		"dash---run":         "dash-run",
		"<angle>:and|more?*": "angle-and-more",
		"...":                "",
		"   ":                "",
		"":                   "",
	}

	for input, want := range cases {
		require.Equal(t, want, Sanitize(input), "input %q", input)
	}
}

func TestSanitize_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := Sanitize(long)
	require.Len(t, got, 120)

	// A dash landing on the cut point is trimmed too.
	got = Sanitize(strings.Repeat("a", 119) + "-" + strings.Repeat("b", 100))
	require.Equal(t, strings.Repeat("a", 119), got)
}
