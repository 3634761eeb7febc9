package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kelime.toml", `
[log]
level = "debug"

[build]
concurrency = 4
skip_malformed_files = true

[suffix]
corpora = ["treebanks/**/*.conllu"]
output = "out/suffix.klm"

[sentence]
abbreviations = "abbr.yaml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Build.Concurrency)
	assert.True(t, cfg.Build.SkipMalformedFiles)
	assert.Equal(t, []string{"treebanks/**/*.conllu"}, cfg.Suffix.Corpora)
	assert.Equal(t, "out/suffix.klm", cfg.Suffix.Output)
	assert.Equal(t, "abbr.yaml", cfg.Sentence.Abbreviations)

	// untouched sections keep their defaults
	assert.Equal(t, Default().MWE, cfg.MWE)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kelime.yml", `
log:
  level: warn
mwe:
  corpora:
    - parseme/*.cupt
  output: mwe.klm
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"parseme/*.cupt"}, cfg.MWE.Corpora)
	assert.Equal(t, Default().Build, cfg.Build)
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "kelime.ini", "level=info"},
		{"unknown toml key", "a.toml", "[log]\nlevels = \"info\"\n"},
		{"unknown yaml key", "b.yaml", "logging:\n  level: info\n"},
		{"bad level", "c.toml", "[log]\nlevel = \"loud\"\n"},
		{"negative concurrency", "d.yaml", "build:\n  concurrency: -1\n"},
		{"bad pattern", "e.toml", "[suffix]\ncorpora = [\"[a-\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, dir, "x.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExpandCorpora(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "tb/a.conllu", "")
	b := writeFile(t, dir, "tb/nested/b.conllu", "")
	writeFile(t, dir, "tb/readme.txt", "")

	paths, err := ExpandCorpora([]string{
		filepath.Join(dir, "tb/**/*.conllu"),
		filepath.Join(dir, "tb/a.conllu"), // duplicate
	})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths)
}

func TestExpandCorpora_KeepsPatternOrder(t *testing.T) {
	dir := t.TempDir()
	train := writeFile(t, dir, "tr_boun-ud-train.conllu", "")
	dev := writeFile(t, dir, "tr_boun-ud-dev.conllu", "")
	test := writeFile(t, dir, "tr_boun-ud-test.conllu", "")

	paths, err := ExpandCorpora([]string{train, dev})
	require.NoError(t, err)
	assert.Equal(t, []string{train, dev}, paths)

	// a glob is sorted within itself and skips files listed before it
	paths, err = ExpandCorpora([]string{train, filepath.Join(dir, "*.conllu")})
	require.NoError(t, err)
	assert.Equal(t, []string{train, dev, test}, paths)
}

func TestExpandCorpora_NoMatches(t *testing.T) {
	_, err := ExpandCorpora([]string{filepath.Join(t.TempDir(), "*.conllu")})
	assert.ErrorIs(t, err, ErrNoMatches)
}
