package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleksaelezovic/ntfilters/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const input = `<s> <p> "hi"@en .
<s> <p> "bonjour"@fr .
<s> <p> "hallo"@de .
<s> <p> <http://x> .
<s> <p> "ok" .
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T, text string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.nt")
	require.NoError(t, os.WriteFile(in, []byte(text), 0o644))
	return in, filepath.Join(dir, "out.nt")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFilterLanguages(t *testing.T) {
	in, out := writeInput(t, input)

	status, err := execute(t, "-l", "en", "--lang", "de", in, out)
	require.NoError(t, err)

	assert.Equal(t, `<s> <p> "hi"@en .
<s> <p> "hallo"@de .
<s> <p> <http://x> .
<s> <p> "ok" .
`, readFile(t, out))
	assert.Contains(t, status, "Read 5 lines.\nParsed 5 triples\nof which 4 were written out again\n")
}

func TestFilterLanguagesFromEnvironment(t *testing.T) {
	t.Setenv("NTFILTERS_LANG", "fr")
	in, out := writeInput(t, input)

	_, err := execute(t, in, out)
	require.NoError(t, err)

	assert.Equal(t, `<s> <p> "bonjour"@fr .
<s> <p> <http://x> .
<s> <p> "ok" .
`, readFile(t, out))
}

func TestFilterLanguagesReportsInvalidLines(t *testing.T) {
	in, out := writeInput(t, "# comment\n"+input)

	output, err := execute(t, "-l", "en", in, out)
	require.NoError(t, err)
	assert.Contains(t, output, "line does not contain a valid triple")
	assert.Contains(t, output, "Read 6 lines.\nParsed 5 triples\nof which 3 were written out again\n")
}

func TestFilterLanguagesEmptyInput(t *testing.T) {
	in, out := writeInput(t, "")

	status, err := execute(t, "-l", "en", in, out)
	require.NoError(t, err)
	assert.Empty(t, readFile(t, out))
	assert.Contains(t, status, "Read 0 lines.\nParsed 0 triples\nof which 0 were written out again\n")
}

func TestFilterLanguagesUsageErrors(t *testing.T) {
	in, out := writeInput(t, input)

	output, err := execute(t, "-l", "en")
	assert.ErrorIs(t, err, config.ErrMissingArguments)
	assert.Contains(t, output, "Usage:")

	output, err = execute(t, "-x", in, out)
	assert.ErrorContains(t, err, "unknown shorthand flag")
	assert.Contains(t, output, "Usage:")

	_, err = execute(t, filepath.Join(t.TempDir(), "missing.nt"), out)
	assert.ErrorContains(t, err, "unable to open file")
}
