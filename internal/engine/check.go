package engine

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/payjar/pkg/payjar"
	"golang.org/x/sync/errgroup"
)

// CheckResult is the validation outcome for one file.
type CheckResult struct {
	Path string
	Err  error // nil when the file lexes and parses
}

// OK reports whether the file is valid.
func (r CheckResult) OK() bool {
	return r.Err == nil
}

// CheckFiles lexes and parses every file concurrently. Results keep the order
// of paths. The returned error is only set when ctx is canceled; per-file
// failures are reported in the results.
func (e *Engine) CheckFiles(ctx context.Context, paths []string) ([]CheckResult, error) {
	results := make([]CheckResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = CheckResult{Path: path, Err: checkFile(path)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	e.logger.Debug("checked files", "total", len(results), "failed", failed)
	return results, nil
}

func checkFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return payjar.Validate(string(data))
}
