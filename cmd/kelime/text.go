package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/wizenheimer/kelime"
)

func mweFlag() cli.Flag {
	return &cli.StringFlag{Name: "mwe", Usage: "MWE lexicon written by build-mwe"}
}

func lexiconFlag() cli.Flag {
	return &cli.StringFlag{Name: "lexicon", Aliases: []string{"l"}, Usage: "Suffix lexicon written by build-suffix"}
}

func abbreviationsFlag() cli.Flag {
	return &cli.StringFlag{Name: "abbreviations", Usage: "Abbreviation list (overrides config)"}
}

func replacementsFlag() cli.Flag {
	return &cli.BoolFlag{Name: "replacements", Value: true, Usage: "Restore learned stem endings"}
}

// readText returns the positional arguments joined by spaces, or stdin when
// there are none.
func readText(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadTokenizer(c *cli.Context) (*kelime.Tokenizer, error) {
	path := c.String("mwe")
	if path == "" {
		return kelime.NewTokenizer(nil), nil
	}
	trie, err := kelime.ReadMWELexiconFile(path)
	if err != nil {
		return nil, err
	}
	getEnv(c).log.Debug("MWE lexicon loaded", zap.String("path", path), zap.Int("expressions", trie.Len()))
	return kelime.NewTokenizer(trie), nil
}

func loadStemmer(c *cli.Context) (*kelime.Stemmer, error) {
	path := c.String("lexicon")
	if path == "" {
		return nil, nil
	}
	lex, err := kelime.ReadSuffixLexiconFile(path)
	if err != nil {
		return nil, err
	}
	getEnv(c).log.Debug("suffix lexicon loaded", zap.String("path", path), zap.Int("suffixes", lex.Trie.Len()))
	return kelime.NewStemmer(lex), nil
}

func loadSplitter(c *cli.Context) (*kelime.SentenceSplitter, error) {
	path := getEnv(c).cfg.Sentence.Abbreviations
	if c.IsSet("abbreviations") {
		path = c.String("abbreviations")
	}
	if path == "" {
		return kelime.NewSentenceSplitter(nil), nil
	}
	abbrevs, err := kelime.LoadAbbreviations(path)
	if err != nil {
		return nil, err
	}
	return kelime.NewSentenceSplitter(abbrevs), nil
}

func loadAnalyzer(c *cli.Context) (*kelime.Analyzer, error) {
	tok, err := loadTokenizer(c)
	if err != nil {
		return nil, err
	}
	stem, err := loadStemmer(c)
	if err != nil {
		return nil, err
	}
	cfg := kelime.DefaultAnalyzerConfig()
	cfg.UseReplacements = c.Bool("replacements")
	return kelime.NewAnalyzer(tok, stem, cfg), nil
}

func tokenizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokenize",
		Usage:     "Print the tokens of text as ID, category and text",
		ArgsUsage: "[text ...]",
		Flags:     []cli.Flag{mweFlag()},
		Action: func(c *cli.Context) error {
			tok, err := loadTokenizer(c)
			if err != nil {
				return err
			}
			text, err := readText(c)
			if err != nil {
				return err
			}
			for _, t := range tok.Tokenize(text) {
				fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", t.ID, t.Category, t.Text)
			}
			return nil
		},
	}
}

func stemCommand() *cli.Command {
	return &cli.Command{
		Name:      "stem",
		Usage:     "Print the stem and suffix of each word",
		ArgsUsage: "[word ...]",
		Flags:     []cli.Flag{lexiconFlag(), replacementsFlag()},
		Action: func(c *cli.Context) error {
			if !c.IsSet("lexicon") {
				return errors.New("stem needs --lexicon")
			}
			analyzer, err := loadAnalyzer(c)
			if err != nil {
				return err
			}
			text, err := readText(c)
			if err != nil {
				return err
			}
			for _, term := range analyzer.Analyze(text) {
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", term.Token.Text, term.Text, term.Suffix)
			}
			return nil
		},
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Print one sentence per line",
		ArgsUsage: "[text ...]",
		Flags:     []cli.Flag{abbreviationsFlag()},
		Action: func(c *cli.Context) error {
			splitter, err := loadSplitter(c)
			if err != nil {
				return err
			}
			text, err := readText(c)
			if err != nil {
				return err
			}
			for _, s := range splitter.Split(text) {
				fmt.Fprintln(c.App.Writer, s)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Print the sentences of a file that contain every term in any inflection",
		ArgsUsage: "FILE TERM [TERM ...]",
		Flags: []cli.Flag{
			lexiconFlag(),
			mweFlag(),
			abbreviationsFlag(),
			replacementsFlag(),
			&cli.BoolFlag{Name: "any", Usage: "Match sentences with at least one term"},
			&cli.StringSliceFlag{Name: "exclude", Aliases: []string{"x"}, Usage: "Drop sentences containing this term"},
			&cli.StringSliceFlag{Name: "category", Usage: "Keep sentences with a token of this category (DATE, EMAIL, ...)"},
			&cli.StringFlag{Name: "save-index", Usage: "Write the sentence concordance to this file"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return errors.New("search needs a file and at least one term")
			}
			e := getEnv(c)
			analyzer, err := loadAnalyzer(c)
			if err != nil {
				return err
			}
			splitter, err := loadSplitter(c)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return err
			}

			sentences := splitter.Split(string(data))
			concordance := kelime.NewConcordance(analyzer)
			for i, s := range sentences {
				concordance.Index(uint32(i), s)
			}
			e.log.Debug("sentences indexed",
				zap.Int("sentences", concordance.Len()),
				zap.Int("terms", concordance.Terms()))

			if path := c.String("save-index"); path != "" {
				if err := kelime.WriteLexiconFile(path, concordance); err != nil {
					return err
				}
			}

			query, err := buildQuery(concordance, c.Args().Tail(), c.Bool("any"),
				c.StringSlice("exclude"), c.StringSlice("category"))
			if err != nil {
				return err
			}
			it := query.Iterator()
			for it.HasNext() {
				id := it.Next()
				fmt.Fprintf(c.App.Writer, "%d\t%s\n", id, sentences[id])
			}
			return nil
		},
	}
}

func buildQuery(c *kelime.Concordance, terms []string, matchAny bool, exclude, categories []string) (*roaring.Bitmap, error) {
	qb := kelime.NewQueryBuilder(c).Group(func(q *kelime.QueryBuilder) {
		for i, term := range terms {
			if i > 0 {
				if matchAny {
					q.Or()
				} else {
					q.And()
				}
			}
			q.Term(term)
		}
	})
	for _, name := range categories {
		cat, ok := kelime.ParseCategory(strings.ToUpper(name))
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		qb.And().Category(cat)
	}
	for _, term := range exclude {
		qb.And().Not().Term(term)
	}
	return qb.Execute(), nil
}
