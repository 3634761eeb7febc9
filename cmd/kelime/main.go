package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wizenheimer/kelime/internal/config"
)

// Version is set at build time.
var Version = "dev"

const envKey = "env"

// env is what the global flags resolve to; every command reads it.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func getEnv(c *cli.Context) *env {
	return c.App.Metadata[envKey].(*env)
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// newLogger builds a console logger on w.
func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)), nil
}

// setup loads the config file and builds the logger.
func setup(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = strings.ToLower(c.String("log-level"))
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := newLogger(c.App.ErrWriter, cfg.Log.Level)
	if err != nil {
		return err
	}
	c.App.Metadata[envKey] = &env{cfg: cfg, log: log}
	return nil
}

func teardown(c *cli.Context) error {
	if e, ok := c.App.Metadata[envKey].(*env); ok {
		_ = e.log.Sync()
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "kelime",
		Usage:    "Turkish text processing: learned stemming, MWE-aware tokenization, sentence splitting",
		Version:  Version,
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (.toml, .yaml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			buildSuffixCommand(),
			buildMWECommand(),
			tokensCommand(),
			tokenizeCommand(),
			stemCommand(),
			splitCommand(),
			searchCommand(),
		},
	}
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "kelime:", err)
		os.Exit(1)
	}
}
