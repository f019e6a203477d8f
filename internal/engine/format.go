package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/payjar/pkg/format"
	"golang.org/x/sync/errgroup"
)

// FormatResult is the formatting outcome for one file.
type FormatResult struct {
	Path      string
	Original  string
	Formatted string
	Err       error // read, lex or parse failure
}

// Changed reports whether formatting altered the file.
func (r FormatResult) Changed() bool {
	return r.Err == nil && r.Original != r.Formatted
}

// FormatFiles formats every file concurrently. When write is set, changed
// files are rewritten in place. Results keep the order of paths; the returned
// error is only set when ctx is canceled.
func (e *Engine) FormatFiles(ctx context.Context, paths []string, write bool) ([]FormatResult, error) {
	results := make([]FormatResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = formatFile(path, write)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	changed := 0
	for _, r := range results {
		if r.Changed() {
			changed++
		}
	}
	e.logger.Debug("formatted files", "total", len(results), "changed", changed, "write", write)
	return results, nil
}

func formatFile(path string, write bool) FormatResult {
	res := FormatResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return res
	}

	res.Original = string(data)
	res.Formatted, res.Err = format.Source(res.Original)
	if !write || !res.Changed() {
		return res
	}

	if err := os.WriteFile(path, []byte(res.Formatted), info.Mode().Perm()); err != nil {
		res.Err = fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res
}
