package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToLowerCamel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "name", want: "name"},
		{in: "within_view", want: "withinView"},
		{in: "exported_deps", want: "exportedDeps"},
		{in: "a__b", want: "aB"},
		{in: "_x", want: "X"},
		{in: "trailing_", want: "trailing"},
		{in: "MixedCase", want: "mixedcase"},
		{in: "foo_BAR_baz", want: "fooBarBaz"},
		{in: "src_2", want: "src2"},
		{in: "größe_x", want: "größeX"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ToLowerCamel(tc.in))
		})
	}
}

func TestToLowerUnderscore(t *testing.T) {
	t.Parallel()

	require.Equal(t, "name", ToLowerUnderscore("name"))
	require.Equal(t, "within_view", ToLowerUnderscore("withinView"))
	require.Equal(t, "exported_deps", ToLowerUnderscore("exportedDeps"))

	// Round trip for the identifiers schemas actually use.
	for _, name := range []string{"deps", "srcs", "exportedDeps", "annotationProcessorDeps"} {
		require.Equal(t, name, ToLowerCamel(ToLowerUnderscore(name)))
	}
}
