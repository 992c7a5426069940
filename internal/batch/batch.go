// Package batch processes many documents concurrently with a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gardar/blockgraph/pkg/blocks"
)

// Loader produces the blocks for one input
type Loader func(ctx context.Context, path string) ([]blocks.Block, error)

// Options control a batch run
type Options struct {
	Workers    int // <= 0 means one worker per input
	Label      string
	Layout     blocks.LayoutConfig
	Duplicates blocks.DuplicatePolicy
	FailFast   bool // Stop at the first failed document instead of recording it
}

// Result is everything extracted from one document
type Result struct {
	Path   string
	Blocks []blocks.Block
	Record *blocks.LayoutRecord
	Stats  blocks.LayoutStats
	Fields map[string]interface{}
	Tables []blocks.Table
	Err    error
}

// Run loads and resolves every path. Results keep the order of paths.
// Without FailFast a failed document is reported in its Result and the
// rest still run; with FailFast the first failure cancels the batch.
func Run(ctx context.Context, paths []string, load Loader, opts Options) ([]Result, error) {
	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, path := range paths {
		g.Go(func() error {
			res := Process(ctx, path, load, opts)
			results[i] = res
			if res.Err != nil && opts.FailFast {
				return fmt.Errorf("%s: %w", path, res.Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Process runs a single document through load and the resolvers
func Process(ctx context.Context, path string, load Loader, opts Options) Result {
	res := Result{Path: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	bs, err := load(ctx, path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Blocks = bs

	res.Record, res.Stats, err = blocks.BuildLayoutRecordStats(bs, opts.Label, opts.Layout)
	if err != nil {
		res.Err = err
		return res
	}

	idx := blocks.NewIndex(bs)
	res.Fields, err = idx.FormFields(opts.Duplicates)
	if err != nil {
		res.Err = err
		return res
	}
	res.Tables = idx.Tables()
	return res
}

// Files lists the files under dir whose extension is in exts, sorted by path.
// Extensions are matched case-insensitively and include the dot.
func Files(dir string, exts ...string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if len(want) == 0 || want[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
