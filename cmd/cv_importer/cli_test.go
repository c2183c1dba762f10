package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/cv-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileText = `Jan Kowalski
Senior Software Engineer at Acme
Warsaw, Poland

Experience
Senior Software Engineer · Acme · Mar 2021 - Present · 3 yrs
Building payment services in Go.
Developer · Beta · Jan 2018 - Feb 2021
Backend work.

Education
Warsaw University of Technology · MSc Computer Science · 2012 - 2017

Skills
Python, Leadership, English
`

const profileHTML = `<html><head><title>LinkedIn</title><script>var x = 1;</script></head>
<body><main>
<h1>Anna Nowak</h1>
<div>Data Scientist at Gamma</div>
<section><h2>Experience</h2>
<div>Data Scientist · Gamma · Jan 2020 - Present</div>
</section>
</main></body></html>`

// executeCommand runs the CLI in-process with a clean environment
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "MAX_INPUT_BYTES", "PORT", "CV_LOCALES"} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseLinkedin_Stdout(t *testing.T) {
	in := writeFile(t, t.TempDir(), "jan.txt", profileText)

	stdout, _, err := executeCommand(t, "parse-linkedin", "--in", in, "--validate")
	require.NoError(t, err)

	var result types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "Jan Kowalski", result.Personal.FullName)
	assert.Len(t, result.Experience, 2)
	assert.Len(t, result.Skills, 3)
}

func TestParseLinkedin_HTMLInput(t *testing.T) {
	in := writeFile(t, t.TempDir(), "anna.html", profileHTML)

	stdout, _, err := executeCommand(t, "parse-linkedin", "--in", in)
	require.NoError(t, err)

	var result types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "Anna Nowak", result.Personal.FullName)
	assert.NotContains(t, stdout, "var x")
}

func TestParseLinkedin_OutFile(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "jan.txt", profileText)
	out := filepath.Join(dir, "jan.json")

	_, _, err := executeCommand(t, "parse-linkedin", "--in", in, "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"full_name": "Jan Kowalski"`)
}

func TestParseLinkedin_ManyFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "jan.txt", profileText)
	b := writeFile(t, dir, "anna.html", profileHTML)
	outDir := filepath.Join(dir, "out") + "/"
	cleanedDir := filepath.Join(dir, "cleaned")

	stdout, _, err := executeCommand(t, "parse-linkedin", "--in", a, "--in", b,
		"--out", outDir, "--cleaned-dir", cleanedDir, "--concurrency", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "jan.linkedin.json")
	assert.FileExists(t, filepath.Join(outDir, "jan.linkedin.json"))
	assert.FileExists(t, filepath.Join(outDir, "anna.linkedin.json"))
	assert.FileExists(t, filepath.Join(cleanedDir, "jan.cleaned.txt"))
	assert.FileExists(t, filepath.Join(cleanedDir, "anna.meta.json"))
}

func TestParseLinkedin_Verbose(t *testing.T) {
	in := writeFile(t, t.TempDir(), "jan.txt", profileText)

	_, stderr, err := executeCommand(t, "parse-linkedin", "--in", in, "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stderr, "PARSED LINKEDIN PROFILE")
	assert.Contains(t, stderr, "FIELD EXTRACTION")
}

func TestParseLinkedin_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "jan.txt", profileText)
	config := writeFile(t, dir, "bad.json", `{"cache_ttl": "soon"}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing --in", []string{"parse-linkedin"}, `required flag(s) "in" not set`},
		{"missing file", []string{"parse-linkedin", "--in", filepath.Join(dir, "nope.txt")}, "file not found"},
		{"many files to one file", []string{"parse-linkedin", "--in", in, "--in", in, "--out", filepath.Join(dir, "x.json")}, "--out must be a directory"},
		{"unknown locale", []string{"parse-linkedin", "--in", in, "--locale", "xx"}, "xx"},
		{"invalid config", []string{"parse-linkedin", "--in", in, "--config", config}, "cache_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImportLinkedin_Errors(t *testing.T) {
	in := writeFile(t, t.TempDir(), "jan.txt", profileText)
	userID := "6f1c2f4e-8a51-4f3b-9b1e-2b7f3c9d4a10"

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing flags", []string{"import-linkedin"}, "required flag(s)"},
		{"invalid user id", []string{"import-linkedin", "--in", in, "--user-id", "jan"}, "invalid --user-id"},
		{"invalid part", []string{"import-linkedin", "--in", in, "--user-id", userID, "--apply", "hobbies"}, "unknown import part"},
		{"no database", []string{"import-linkedin", "--in", in, "--user-id", userID}, "database URL is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	_, _, err := executeCommand(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")
}

func TestValidateResult(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "jan.txt", profileText)
	out := filepath.Join(dir, "jan.json")
	_, _, err := executeCommand(t, "parse-linkedin", "--in", in, "--out", out)
	require.NoError(t, err)

	stdout, _, err := executeCommand(t, "validate-result", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "jan.json: ok")

	bad := writeFile(t, dir, "bad.json", `{"personal": 3}`)
	_, stderr, err := executeCommand(t, "validate-result", out, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed validation")
	assert.Contains(t, stderr, "bad.json")
}

func TestValidateResult_CustomSchema(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "names.schema.json", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {"name": {"type": "string"}}
}`)
	good := writeFile(t, dir, "good.json", `{"name": "Jan"}`)
	bad := writeFile(t, dir, "bad.json", `{"title": "Jan"}`)

	_, _, err := executeCommand(t, "validate-result", "--schema", schema, good)
	require.NoError(t, err)

	_, _, err = executeCommand(t, "validate-result", "--schema", schema, bad)
	require.Error(t, err)

	_, _, err = executeCommand(t, "validate-result", "--schema", filepath.Join(dir, "missing.json"), good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema file not found")
}
