package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(t *testing.T, env map[string]string) *Resolver {
	t.Helper()
	dir := t.TempDir()
	return &Resolver{
		ConfigPath: filepath.Join(dir, "config.json"),
		EnvFile:    filepath.Join(dir, ".env"),
		Getenv:     func(k string) string { return env[k] },
	}
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestResolveCommandLineWins(t *testing.T) {
	r := testResolver(t, map[string]string{"WORDBREAKER_LANGUAGE": "french"})
	writeJSON(t, r.ConfigPath, map[string]interface{}{"language": "german", "corpus": "file.txt", "datafolder": "data"})

	cfg, err := r.Resolve(Config{Language: "english", Cycles: 10})
	require.NoError(t, err)
	assert.Equal(t, "english", cfg.Language)
	assert.Equal(t, "file.txt", cfg.Corpus)
	assert.Equal(t, "data", cfg.Datafolder)
	assert.Equal(t, 10, cfg.Cycles)
	assert.Equal(t, DefaultCandidates, cfg.Candidates)
	assert.Equal(t, filepath.Join("data", "english", "file.txt"), cfg.CorpusPath())

	// Command line values are written back.
	assert.Equal(t, "english", readJSON(t, r.ConfigPath)["language"])
}

func TestResolveConfigFileBeforeEnvironment(t *testing.T) {
	r := testResolver(t, map[string]string{
		"WORDBREAKER_LANGUAGE":   "french",
		"WORDBREAKER_DATAFOLDER": "envdata",
		"WORDBREAKER_CYCLES":     "7",
		"WORDBREAKER_VERBOSE":    "yes",
	})
	writeJSON(t, r.ConfigPath, map[string]interface{}{"language": "german", "corpus": "file.txt"})
	before, err := os.ReadFile(r.ConfigPath)
	require.NoError(t, err)

	cfg, err := r.Resolve(Config{})
	require.NoError(t, err)
	assert.Equal(t, "german", cfg.Language)
	assert.Equal(t, "envdata", cfg.Datafolder)
	assert.Equal(t, 7, cfg.Cycles)
	assert.True(t, cfg.Trace())

	// Nothing new from the command line or the prompt, so the file is untouched.
	after, err := os.ReadFile(r.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResolveDotEnv(t *testing.T) {
	r := testResolver(t, map[string]string{"WORDBREAKER_CORPUS": "process.txt"})
	require.NoError(t, os.WriteFile(r.EnvFile, []byte("WORDBREAKER_LANGUAGE=english\nWORDBREAKER_CORPUS=dotenv.txt\nWORDBREAKER_DATAFOLDER=data\nWORDBREAKER_CANDIDATES=40\n"), 0644))

	cfg, err := r.Resolve(Config{})
	require.NoError(t, err)
	assert.Equal(t, "english", cfg.Language)
	// The process environment beats .env.
	assert.Equal(t, "process.txt", cfg.Corpus)
	assert.Equal(t, 40, cfg.Candidates)
	assert.Equal(t, DefaultCycles, cfg.Cycles)
}

func TestResolvePromptsForMissingValues(t *testing.T) {
	r := testResolver(t, nil)
	r.In = strings.NewReader("english\ncorpus.txt\n")
	var out bytes.Buffer
	r.Out = &out
	writeJSON(t, r.ConfigPath, map[string]interface{}{"datafolder": "data", "extra": "kept"})

	cfg, err := r.Resolve(Config{})
	require.NoError(t, err)
	assert.Equal(t, "english", cfg.Language)
	assert.Equal(t, "corpus.txt", cfg.Corpus)
	assert.Contains(t, out.String(), "Enter language name:")
	assert.Contains(t, out.String(), "Enter corpus filename:")
	assert.NotContains(t, out.String(), "datafolder")

	doc := readJSON(t, r.ConfigPath)
	assert.Equal(t, "english", doc["language"])
	assert.Equal(t, "corpus.txt", doc["corpus"])
	assert.Equal(t, "kept", doc["extra"])
}

func TestResolveMissingWithoutPrompt(t *testing.T) {
	r := testResolver(t, nil)
	_, err := r.Resolve(Config{Language: "english"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissing))
	assert.Contains(t, err.Error(), "corpus")
}

func TestResolvePromptEndsEarly(t *testing.T) {
	r := testResolver(t, nil)
	r.In = strings.NewReader("english\n")
	_, err := r.Resolve(Config{})
	require.ErrorIs(t, err, ErrMissing)
}

func TestResolveBadConfigFile(t *testing.T) {
	r := testResolver(t, nil)
	require.NoError(t, os.WriteFile(r.ConfigPath, []byte("{not json"), 0644))
	_, err := r.Resolve(Config{Language: "english", Corpus: "c", Datafolder: "d"})
	require.Error(t, err)
}

func TestResolveVerboseFalseOverridesFileAndEnvironment(t *testing.T) {
	r := testResolver(t, map[string]string{"WORDBREAKER_VERBOSE": "true"})
	writeJSON(t, r.ConfigPath, map[string]interface{}{"language": "english", "corpus": "c.txt", "datafolder": "data", "verbose": true})

	cfg, err := r.Resolve(Config{})
	require.NoError(t, err)
	assert.True(t, cfg.Trace())

	off := false
	cfg, err = r.Resolve(Config{Verbose: &off})
	require.NoError(t, err)
	assert.False(t, cfg.Trace())

	// The environment alone can also turn the trace off.
	r = testResolver(t, map[string]string{"WORDBREAKER_VERBOSE": "false"})
	writeJSON(t, r.ConfigPath, map[string]interface{}{"language": "english", "corpus": "c.txt", "datafolder": "data"})
	cfg, err = r.Resolve(Config{})
	require.NoError(t, err)
	assert.False(t, cfg.Trace())
	require.NotNil(t, cfg.Verbose)
}
