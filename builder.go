package kelime

import (
	"context"
	"errors"
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoCorpora is returned when a build is started without any corpus file.
var ErrNoCorpora = errors.New("no corpus files given")

// BuildConfig controls how lexicons are built from corpus files.
type BuildConfig struct {
	Logger *zap.Logger // nil disables logging

	// Concurrency is the number of files parsed at once. Values below 1 use
	// GOMAXPROCS. The result never depends on it: files are merged in the
	// order they were given.
	Concurrency int

	// SkipMalformedFiles drops a file whose multi-row tokens are broken
	// instead of failing the build. The file is reported as a warning.
	SkipMalformedFiles bool
}

// DefaultBuildConfig returns the configuration used by the CLI when nothing
// is overridden.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Logger:      zap.NewNop(),
		Concurrency: runtime.GOMAXPROCS(0),
	}
}

func (c BuildConfig) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c BuildConfig) concurrency() int {
	if c.Concurrency < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Concurrency
}

// extractFunc reads one corpus file into a per-file result.
type extractFunc[T any] func(ctx context.Context, path string) (T, error)

// extractAll runs extract over every path with bounded concurrency and
// returns the results in path order. A nil entry marks a file that was
// dropped because it was malformed and cfg allows skipping it.
//
// Per-file errors do not cancel the other files, so a failed build reports
// every broken file at once.
func extractAll[T any](ctx context.Context, paths []string, cfg BuildConfig, extract extractFunc[T]) ([]*T, error) {
	if len(paths) == 0 {
		return nil, ErrNoCorpora
	}

	results := make([]*T, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := extract(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				errs[i] = err
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log := cfg.logger()
	var failed error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if cfg.SkipMalformedFiles && errors.Is(err, ErrMultiRowRange) {
			log.Warn("dropping malformed corpus file", zap.String("path", paths[i]), zap.Error(err))
			continue
		}
		multierr.AppendInto(&failed, err)
	}
	if failed != nil {
		return nil, failed
	}
	return results, nil
}
