package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/deeplink/deeplink"
	"github.com/vitalvas/deeplink/linkconfig"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestMatchCommand(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		stdout, _, err := execute(t, "match", "--config", "testdata/links.yaml", "https://example.com/artist/metallica/1")
		require.NoError(t, err)

		var report matchReport
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, matchReport{
			URL:      "https://example.com/artist/metallica/1",
			Matched:  true,
			Route:    "artist",
			Template: "/artist/{slug}/{id}",
			Target:   "myapp://artist/1?slug=metallica",
			Vars:     deeplink.Vars{"slug": {"metallica"}, "id": {"1"}},
		}, report)
	})

	tests := []struct {
		name   string
		url    string
		path   string
		want   string
		errMsg string
	}{
		{name: "target", url: "https://example.com/artist/metallica/1", path: "target", want: "myapp://artist/1?slug=metallica"},
		{name: "var", url: "https://example.com/artist/metallica/1", path: "vars.slug.0", want: "metallica"},
		{name: "list var", url: "https://example.com/search/red+shoes", path: "vars.terms.#", want: "2"},
		{name: "fallback route", url: "https://example.com/", path: "route", want: "fallback"},
		{name: "missing path", url: "https://example.com/", path: "nope", errMsg: `path "nope" not found`},
	}

	for _, tt := range tests {
		t.Run("select "+tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, "match", "-c", "testdata/links.yaml", "--select", tt.path, tt.url)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", stdout)
		})
	}

	t.Run("host not allowed", func(t *testing.T) {
		stdout, _, err := execute(t, "match", "-c", "testdata/links.yaml", "--select", "matched", "https://evil.com/artist/a/1")
		require.ErrorIs(t, err, linkconfig.ErrHostNotAllowed)
		assert.Equal(t, "false\n", stdout)
	})

	t.Run("attempts listed when nothing claims", func(t *testing.T) {
		dir := t.TempDir()
		path := dir + "/links.yaml"
		writeFile(t, path, "routes:\n  - template: /a/{id}\n    require: id\n  - template: /b\n")

		stdout, _, err := execute(t, "match", "-c", path, "https://example.com/a/")
		require.ErrorIs(t, err, deeplink.ErrNoMatch)

		var report matchReport
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.False(t, report.Matched)
		assert.Equal(t, errNotClaimed.Error(), report.Error)
		require.Len(t, report.Attempts, 2)
		assert.Contains(t, report.Attempts[0], "rejected the match")
		assert.Contains(t, report.Attempts[1], "does not match")
	})

	t.Run("requires one argument", func(t *testing.T) {
		_, _, err := execute(t, "match", "-c", "testdata/links.yaml")
		assert.Error(t, err)
	})

	t.Run("missing config", func(t *testing.T) {
		_, _, err := execute(t, "match", "-c", "testdata/missing.yaml", "https://example.com/")
		assert.Error(t, err)
	})

	t.Run("debug logging", func(t *testing.T) {
		_, stderr, err := execute(t, "match", "-c", "testdata/links.yaml", "--log-level", "debug", "https://example.com/artist/a/1")
		require.NoError(t, err)
		assert.Contains(t, stderr, "deeplink claimed")
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := execute(t, "match", "-c", "testdata/links.yaml", "--log-level", "loud", "https://example.com/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestRoutesCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		stdout, _, err := execute(t, "routes", "-c", "testdata/links.yaml")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, []string{"#", "NAME", "PATTERN", "TARGET"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"0", "artist", "/artist/{slug}/{id}", "myapp://artist/{id}?slug={slug}"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"3", "fallback", "{*}", "myapp://home"}, strings.Fields(lines[4]))
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "routes", "-c", "testdata/links.yaml", "--json")
		require.NoError(t, err)

		var routes []linkconfig.RouteInfo
		require.NoError(t, json.Unmarshal([]byte(stdout), &routes))
		require.Len(t, routes, 4)
		assert.Equal(t, "/artist/{}/{}", routes[0].Description)
	})

	t.Run("unnamed route", func(t *testing.T) {
		dir := t.TempDir()
		path := dir + "/links.yaml"
		writeFile(t, path, "routes:\n  - template: /a\n")

		stdout, _, err := execute(t, "routes", "-c", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "-")
	})
}

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		want   string
		errMsg string
	}{
		{name: "scalar", args: []string{"artist", "slug=metallica", "id=1"}, want: "/artist/metallica/1\n"},
		{name: "list", args: []string{"search", "terms=red", "terms=shoes"}, want: "/search/red+shoes\n"},
		{name: "empty value", args: []string{"artist", "slug=", "id=1"}, want: "/artist//1\n"},
		{name: "unknown route", args: []string{"nope"}, errMsg: "unknown route"},
		{name: "invalid pair", args: []string{"artist", "slug"}, errMsg: "expected key=value"},
		{name: "empty key", args: []string{"artist", "=x"}, errMsg: "expected key=value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"encode", "-c", "testdata/links.yaml"}, tt.args...)...)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"a=1", "b=x=y", "a=2"})
	require.NoError(t, err)
	assert.Equal(t, deeplink.Vars{"a": {"1", "2"}, "b": {"x=y"}}, vars)
}

func TestVersionCommand(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		stdout, _, err := execute(t, "version", "--short")
		require.NoError(t, err)
		assert.Equal(t, "dev\n", stdout)
	})

	t.Run("full", func(t *testing.T) {
		stdout, _, err := execute(t, "version")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Version:    dev")
		assert.Contains(t, stdout, "Go version:")
	})
}

func TestServeCommandErrors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		_, _, err := execute(t, "serve", "-c", "testdata/missing.yaml", "--addr", "127.0.0.1:0")
		assert.Error(t, err)
	})

	t.Run("invalid address", func(t *testing.T) {
		_, _, err := execute(t, "serve", "-c", "testdata/links.yaml", "--addr", "127.0.0.1:-1")
		assert.Error(t, err)
	})
}
