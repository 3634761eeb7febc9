package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wizenheimer/kelime"
	"github.com/wizenheimer/kelime/internal/config"
)

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Lexicon file to write (overrides config)",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"j"},
			Usage:   "Files parsed at once, 0 for one per CPU (overrides config)",
		},
		&cli.BoolFlag{
			Name:  "skip-malformed",
			Usage: "Drop files with broken multi-row tokens instead of failing",
		},
	}
}

// buildJob is a resolved lexicon build.
type buildJob struct {
	paths  []string
	output string
	cfg    kelime.BuildConfig
}

// resolveBuild merges the command line over the config section lex.
// Positional arguments replace the configured corpus patterns.
func resolveBuild(c *cli.Context, lex config.Lexicon) (*buildJob, error) {
	e := getEnv(c)

	patterns := lex.Corpora
	if c.NArg() > 0 {
		patterns = c.Args().Slice()
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: pass corpus files or set corpora in the config", kelime.ErrNoCorpora)
	}
	paths, err := config.ExpandCorpora(patterns)
	if err != nil {
		return nil, err
	}

	job := &buildJob{
		paths:  paths,
		output: lex.Output,
		cfg: kelime.BuildConfig{
			Logger:             e.log,
			Concurrency:        e.cfg.Build.Concurrency,
			SkipMalformedFiles: e.cfg.Build.SkipMalformedFiles || c.Bool("skip-malformed"),
		},
	}
	if c.IsSet("output") {
		job.output = c.String("output")
	}
	if c.IsSet("concurrency") {
		job.cfg.Concurrency = c.Int("concurrency")
	}
	if job.output == "" {
		return nil, errors.New("no output file: pass --output or set it in the config")
	}
	return job, nil
}

func buildSuffixCommand() *cli.Command {
	return &cli.Command{
		Name:      "build-suffix",
		Usage:     "Learn a suffix lexicon from CoNLL-U treebanks",
		ArgsUsage: "[corpus glob ...]",
		Flags:     buildFlags(),
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			job, err := resolveBuild(c, e.cfg.Suffix)
			if err != nil {
				return err
			}

			start := time.Now()
			lex, err := kelime.BuildSuffixLexicon(c.Context, job.paths, job.cfg)
			if err != nil {
				return err
			}
			if err := kelime.WriteLexiconFile(job.output, lex); err != nil {
				return err
			}
			e.log.Info("suffix lexicon written",
				zap.String("output", job.output),
				zap.Int("files", len(job.paths)),
				zap.Int("suffixes", lex.Trie.Len()),
				zap.Int("replacements", lex.Replacements.Len()),
				zap.Duration("took", time.Since(start)))
			return nil
		},
	}
}

func buildMWECommand() *cli.Command {
	return &cli.Command{
		Name:      "build-mwe",
		Usage:     "Collect multi-word expressions from PARSEME .cupt corpora",
		ArgsUsage: "[corpus glob ...]",
		Flags:     buildFlags(),
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			job, err := resolveBuild(c, e.cfg.MWE)
			if err != nil {
				return err
			}

			start := time.Now()
			trie, err := kelime.BuildMWELexicon(c.Context, job.paths, job.cfg)
			if err != nil {
				return err
			}
			if err := kelime.WriteLexiconFile(job.output, trie); err != nil {
				return err
			}
			e.log.Info("MWE lexicon written",
				zap.String("output", job.output),
				zap.Int("files", len(job.paths)),
				zap.Int("expressions", trie.Len()),
				zap.Duration("took", time.Since(start)))
			return nil
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the surface tokens of CoNLL-U treebanks, one per line",
		ArgsUsage: "[corpus glob ...]",
		Action: func(c *cli.Context) error {
			e := getEnv(c)
			patterns := e.cfg.Suffix.Corpora
			if c.NArg() > 0 {
				patterns = c.Args().Slice()
			}
			if len(patterns) == 0 {
				return fmt.Errorf("%w: pass corpus files or set suffix.corpora in the config", kelime.ErrNoCorpora)
			}
			paths, err := config.ExpandCorpora(patterns)
			if err != nil {
				return err
			}

			for _, path := range paths {
				tokens, err := kelime.ReadTokens(path)
				if err != nil {
					return err
				}
				e.log.Debug("corpus read", zap.String("path", path), zap.Int("tokens", len(tokens)))
				for _, t := range tokens {
					fmt.Fprintln(c.App.Writer, t)
				}
			}
			return nil
		},
	}
}
