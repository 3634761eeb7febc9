// Package config loads kelime's settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat is returned for a config file that is neither TOML nor YAML.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrNoMatches is returned when a corpus pattern matches no file.
	ErrNoMatches = errors.New("corpus pattern matched no files")
)

// Config is the whole configuration file.
type Config struct {
	Log      Log      `toml:"log" yaml:"log"`
	Build    Build    `toml:"build" yaml:"build"`
	Suffix   Lexicon  `toml:"suffix" yaml:"suffix"`
	MWE      Lexicon  `toml:"mwe" yaml:"mwe"`
	Sentence Sentence `toml:"sentence" yaml:"sentence"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level" yaml:"level"` // debug, info, warn, error
}

// Build configures how lexicon builds read their corpora.
type Build struct {
	Concurrency        int  `toml:"concurrency" yaml:"concurrency"` // 0 = NumCPU
	SkipMalformedFiles bool `toml:"skip_malformed_files" yaml:"skip_malformed_files"`
}

// Lexicon describes one lexicon build: corpus globs in, one file out.
type Lexicon struct {
	Corpora []string `toml:"corpora" yaml:"corpora"`
	Output  string   `toml:"output" yaml:"output"`
}

// Sentence configures the sentence splitter.
type Sentence struct {
	Abbreviations string `toml:"abbreviations" yaml:"abbreviations"` // path to an abbreviation list
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:    Log{Level: "info"},
		Build:  Build{Concurrency: runtime.NumCPU()},
		Suffix: Lexicon{Output: "suffix.klm"},
		MWE:    Lexicon{Output: "mwe.klm"},
	}
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Build.Concurrency < 0 {
		return fmt.Errorf("build.concurrency must not be negative, got %d", c.Build.Concurrency)
	}
	for name, lex := range map[string]Lexicon{"suffix": c.Suffix, "mwe": c.MWE} {
		for _, pattern := range lex.Corpora {
			if !doublestar.ValidatePathPattern(pattern) {
				return fmt.Errorf("%s.corpora: invalid pattern %q", name, pattern)
			}
		}
	}
	return nil
}

// ExpandCorpora expands doublestar patterns ("treebanks/**/*.conllu") into a
// list of files without duplicates. Patterns keep the order they are given
// in and the matches of one pattern are sorted; a file matched twice stays
// at its first position. A pattern that matches nothing is an error, so a
// typo does not silently build an empty lexicon.
func ExpandCorpora(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				paths = append(paths, m)
			}
		}
	}
	return paths, nil
}
