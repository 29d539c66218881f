package urlcanon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "twitter drops entire query",
			in:   "https://twitter.com/user/status/123?s=20&utm_source=x",
			want: "twitter.com/user/status/123",
		},
		{
			name: "twitter subdomain",
			in:   "https://mobile.twitter.com/user/status/123?s=20",
			want: "mobile.twitter.com/user/status/123",
		},
		{
			name: "x.com folds into twitter.com",
			in:   "https://x.com/user/status/123?t=abcdef",
			want: "twitter.com/user/status/123",
		},
		{
			name: "x.com subdomain folds too",
			in:   "https://mobile.x.com/user/status/123",
			want: "mobile.twitter.com/user/status/123",
		},
		{
			name: "youtube keeps v then list",
			in:   "https://www.youtube.com/watch?t=30&list=PL1&v=abc123",
			want: "youtube.com/watch?v=abc123&list=PL1",
		},
		{
			name: "youtube drops everything without v or list",
			in:   "https://youtu.be/abc?t=30&si=xyz",
			want: "youtu.be/abc",
		},
		{
			name: "generic keeps non-tracking params in order",
			in:   "https://example.com/page?id=5&utm_source=fb&ref=home",
			want: "example.com/page?id=5",
		},
		{
			name: "generic keeps param values verbatim",
			in:   "https://example.com/search?q=a%20b&fbclid=IwAR0&page=2",
			want: "example.com/search?q=a%20b&page=2",
		},
		{
			name: "host lowercased path case preserved",
			in:   "https://WWW.Example.com/Path",
			want: "example.com/Path",
		},
		{
			name: "fragment dropped",
			in:   "https://example.com/x?id=1#section",
			want: "example.com/x?id=1",
		},
		{
			name: "uppercase tracking name not stripped",
			in:   "https://example.com/p?UTM_SOURCE=x",
			want: "example.com/p?UTM_SOURCE=x",
		},
		{
			name: "default port dropped",
			in:   "https://example.com:443/a?b=1",
			want: "example.com/a?b=1",
		},
		{
			name: "scheme-less input repaired and filtered",
			in:   "example.com/page?utm_source=x",
			want: "example.com/page",
		},
		{
			name: "protocol-relative input",
			in:   "//www.example.com/a?fbclid=1&id=2",
			want: "example.com/a?id=2",
		},
		{
			name: "bare hostname",
			in:   "www.Example.com",
			want: "example.com",
		},
		{
			name: "fallback keeps query verbatim",
			in:   "http://exa mple.com/path?utm_source=x",
			want: "exa mple.com/path?utm_source=x",
		},
		{
			name: "fallback bare host",
			in:   "http://WWW.Exa mple.com",
			want: "exa mple.com",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://twitter.com/user/status/123?s=20",
		"https://www.youtube.com/watch?v=abc&list=PL1&t=30",
		"https://example.com/page?id=5&utm_source=fb",
		"not a url at all",
	}
	for _, in := range inputs {
		require.Equal(t, Normalize(in), Normalize(in), "input %q", in)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	t.Run("tracking noise ignored", func(t *testing.T) {
		t.Parallel()
		require.True(t, Match(
			"https://x.com/a/status/1?s=20",
			"https://twitter.com/a/status/1",
		))
	})

	t.Run("different content does not match", func(t *testing.T) {
		t.Parallel()
		require.False(t, Match(
			"https://twitter.com/a/status/1",
			"https://twitter.com/a/status/2",
		))
	})

	t.Run("scheme and www are irrelevant", func(t *testing.T) {
		t.Parallel()
		require.True(t, Match(
			"http://www.example.com/page?id=5",
			"https://example.com/page?id=5&gclid=123",
		))
	})
}
