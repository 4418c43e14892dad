package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestSig(t *testing.T) {
	code, out, _ := runCLI(t, "", "sig", "ma{s*}")
	require.Equal(t, 0, code)
	require.Equal(t, "ma{sv}\n", out)

	code, out, _ = runCLI(t, "", "sig", "--tree", "(si)")
	require.Equal(t, 0, code)
	require.Equal(t, "tuple\n  0: string\n  1: int32\n", out)

	code, _, errOut := runCLI(t, "", "sig", "a{s}")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "invalid signature")
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"argument", "", []string{"decode", "-t", "ai", "[1, 2, 3]"}, "[1, 2, 3]\n"},
		{"stdin", "('a', 1)\n", []string{"decode", "-t", "(si)"}, "(\"a\", 1)\n"},
		{"stdin dash", "<42>", []string{"decode", "--type", "v", "-"}, "42\n"},
		{"maybe", "", []string{"decode", "-t", "mas", "nothing"}, "nothing\n"},
		{"json", "", []string{"decode", "-t", "a{sv}", "--json", "{'b': <1>, 'a': <[true]>}"}, "{\"b\":1,\"a\":[true]}\n"},
		{"fallback text", "", []string{"decode", "-t", "s", "hello world"}, "\"hello world\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, tt.stdin, tt.args...)
			require.Equal(t, 0, code, errOut)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	code, _, errOut := runCLI(t, "", "decode", "[1]")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "--type")

	code, _, _ = runCLI(t, "", "decode", "-t", "a{", "[1]")
	require.Equal(t, 2, code)

	code, _, errOut = runCLI(t, "", "decode", "-t", "a{si}", "[1]")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "expected a mapping")

	code, _, _ = runCLI(t, "", "decode", "-t", "v", "{1, 2}")
	require.Equal(t, 1, code, "sets have no text form")

	code, _, _ = runCLI(t, "", "decode", "-t", "i", "1", "2")
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "decode", "--bogus")
	require.Equal(t, 2, code)
}

func TestEncode(t *testing.T) {
	code, out, errOut := runCLI(t, `{"size": [640, 480], "name": "x"}`, "encode", "-t", "a{sv}")
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "{\"size\": [640, 480], \"name\": \"x\"}\n", out)

	code, out, _ = runCLI(t, `["a", "7"]`, "encode", "-t", "(si)")
	require.Equal(t, 0, code)
	require.Equal(t, "(\"a\", 7)\n", out)

	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1.5]`), 0o600))
	code, out, _ = runCLI(t, "", "encode", "-t", "ad", path)
	require.Equal(t, 0, code)
	require.Equal(t, "[1.5]\n", out)

	code, _, _ = runCLI(t, `{"a": 1`, "encode", "-t", "a{si}")
	require.Equal(t, 1, code)

	code, _, _ = runCLI(t, "", "encode", "-t", "ai", filepath.Join(t.TempDir(), "missing.json"))
	require.Equal(t, 1, code)
}

const testSchema = `
schema "org.gnome.desktop.interface" {
  path = "/org/gnome/desktop/interface/"

  key "clock-format" {
    type    = "s"
    default = "24h"
  }

  key "cursor-size" {
    type    = "i"
    default = 24
  }

  key "favorites" {
    type = "as"
  }
}
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.hcl")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o600))
	return path
}

func TestCheck(t *testing.T) {
	schema := writeSchema(t)
	dump := "[org/gnome/desktop/interface]\nclock-format='12h'\ncursor-size=<24>\n"

	code, out, errOut := runCLI(t, dump, "check", "-s", schema)
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "[org/gnome/desktop/interface]\nclock-format=\"12h\"\ncursor-size=24\n", out)

	code, out, _ = runCLI(t, dump, "check", "-s", schema, "--changed")
	require.Equal(t, 0, code)
	require.Equal(t, "[org/gnome/desktop/interface]\nclock-format=\"12h\"\n", out)

	code, out, _ = runCLI(t, "", "check", "-s", schema, "--defaults")
	require.Equal(t, 0, code)
	require.Equal(t, "[org/gnome/desktop/interface]\nclock-format=\"24h\"\ncursor-size=24\n", out)
}

func TestCheck_Failures(t *testing.T) {
	schema := writeSchema(t)

	dumpPath := filepath.Join(t.TempDir(), "dump.ini")
	require.NoError(t, os.WriteFile(dumpPath, []byte("[org/gnome/desktop/interface]\nfavorites='x'\n"), 0o600))
	code, _, errOut := runCLI(t, "", "check", "-s", schema, dumpPath)
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "favorites")

	code, _, _ = runCLI(t, "key=1\n", "check", "-s", schema)
	require.Equal(t, 1, code)

	code, _, _ = runCLI(t, "", "check")
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "check", "-s", filepath.Join(t.TempDir(), "missing.hcl"))
	require.Equal(t, 1, code)
}

func TestCheck_LogsUnknownSections(t *testing.T) {
	schema := writeSchema(t)
	code, _, errOut := runCLI(t, "[org/other]\na=1\n", "check", "-s", schema, "--log-format", "json")
	require.Equal(t, 0, code)
	require.Contains(t, errOut, `"msg":"No schema for section, skipping."`)
	require.Contains(t, errOut, `"section":"org/other"`)
}

func TestLogFlags(t *testing.T) {
	code, _, errOut := runCLI(t, "", "sig", "i", "--log-level", "loud")
	require.Equal(t, 2, code)
	require.Contains(t, errOut, "invalid log-level")

	code, _, _ = runCLI(t, "", "sig", "i", "--log-format", "xml")
	require.Equal(t, 2, code)

	code, _, errOut = runCLI(t, "", "decode", "-t", "i", "5", "--log-level", "debug")
	require.Equal(t, 0, code)
	require.Contains(t, errOut, "Decoded value.")
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	require.Equal(t, 0, code)
	require.Equal(t, "gvtext v0.1.0\n", out)

	code, _, _ = runCLI(t, "", "nope")
	require.Equal(t, 2, code)
}
