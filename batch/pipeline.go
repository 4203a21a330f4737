// SPDX-License-Identifier: MIT
// Copyright (c) 2026 scfmod

// Package batch runs one transform over every file a resolved input expands
// to, in parallel, and mirrors the results under an output root.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/scfmod/fs-utils/garpath"
	"github.com/scfmod/fs-utils/output"
	"github.com/woozymasta/pathrules"
)

// maxAutoWorkers caps the automatic worker count on very wide machines.
const maxAutoWorkers = 32

// Process transforms one item's payload into output bytes.
type Process func(it *Item) ([]byte, error)

// Options configure one pipeline run.
type Options struct {
	// Recursive controls whether directory and subtree inputs descend
	// beyond their direct children.
	Recursive bool
	// Workers is the worker count. Zero selects an automatic count;
	// one runs the batch sequentially.
	Workers int
	// Filter, when non-nil, restricts items to matching logical paths.
	Filter *pathrules.Matcher
	// Skip, when non-nil, drops items by logical path before dispatch.
	Skip func(rel string) bool
	// Process transforms each item's payload. Required.
	Process Process
	// OutputName maps an item's logical path to its output path. Nil keeps
	// the path unchanged.
	OutputName func(rel string) string
	// Writer persists results. Required.
	Writer *output.Writer
	// OnItemDone, when non-nil, observes every finished item. Called from
	// worker goroutines.
	OnItemDone func(res ItemResult)
}

// accepts applies the extension filter and skip predicate to one logical path.
func (o *Options) accepts(rel string) bool {
	if o.Filter != nil && !o.Filter.Included(rel, false) {
		return false
	}
	if o.Skip != nil && o.Skip(rel) {
		return false
	}

	return true
}

// applyDefaults fills unset option fields and validates required ones.
func (o *Options) applyDefaults() error {
	if o.Process == nil {
		return errors.New("batch: Process is required")
	}
	if o.Writer == nil {
		return errors.New("batch: Writer is required")
	}

	if o.Workers <= 0 {
		o.Workers = min(runtime.GOMAXPROCS(0), maxAutoWorkers)
	}

	return nil
}

// ItemResult records the outcome of one item.
type ItemResult struct {
	// RelPath is the item's logical relative path.
	RelPath string
	// OutPath is the absolute written path on success.
	OutPath string
	// Err is the per-item failure, nil on success.
	Err error
}

// Result aggregates a whole pipeline run.
type Result struct {
	// Items holds every processed item's outcome.
	Items []ItemResult
	// Enumerated counts items produced by enumeration.
	Enumerated int
	// Attempted counts items dispatched to workers.
	Attempted int
	// Succeeded counts items written successfully.
	Succeeded int
	// Failures counts items that ended in a per-item error.
	Failures int
	// FatalErr is set when a worker raised a fatal error and the run
	// stopped early.
	FatalErr error
}

// Failed reports whether any item failed or the run aborted.
func (r *Result) Failed() bool {
	return r.Failures > 0 || r.FatalErr != nil
}

// fatalError marks an error that must abort the whole batch.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return e.err.Error()
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// Fatal wraps err so that the pipeline stops dispatching new items when a
// worker returns it. In-flight items still finish.
func Fatal(err error) error {
	if err == nil {
		return nil
	}

	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// Run enumerates in, processes every item with opts.Process and writes the
// results through opts.Writer. Per-item errors are recorded and the batch
// continues; an error wrapped with Fatal (or a canceled ctx) stops dispatch,
// drains in-flight work and is surfaced on Result.FatalErr.
func Run(ctx context.Context, in *garpath.Resolved, opts Options) (*Result, error) {
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}

	items, err := enumerate(in, opts)
	if err != nil {
		return nil, err
	}
	// Zero matched items is a successful (empty) run, not an error.
	if len(items) == 0 {
		return &Result{}, nil
	}

	workers := min(opts.Workers, len(items))

	// Buffered so the feed never blocks on slow workers; fatal stop just
	// abandons the remainder of the queue.
	tasks := make(chan *Item, len(items))
	for _, it := range items {
		tasks <- it
	}
	close(tasks)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg        sync.WaitGroup
		fatalOnce sync.Once
		fatalErr  error
	)
	buffers := make([][]ItemResult, workers)

	abort := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	for w := range workers {
		wg.Go(func() {
			var local []ItemResult

			for it := range tasks {
				if runCtx.Err() != nil {
					break
				}

				res := runItem(it, &opts)
				if res.Err != nil && IsFatal(res.Err) {
					abort(res.Err)
				}
				local = append(local, res)

				if opts.OnItemDone != nil {
					opts.OnItemDone(res)
				}
			}

			buffers[w] = local
		})
	}
	wg.Wait()

	if fatalErr == nil && ctx.Err() != nil {
		fatalErr = ctx.Err()
	}

	result := mergeResults(buffers, len(items))
	result.FatalErr = fatalErr
	return result, nil
}

// runItem processes a single item end to end.
func runItem(it *Item, opts *Options) ItemResult {
	res := ItemResult{RelPath: it.RelPath}

	data, err := opts.Process(it)
	if err != nil {
		res.Err = fmt.Errorf("process %s: %w", it.RelPath, err)
		return res
	}

	outRel := it.RelPath
	if opts.OutputName != nil {
		outRel = opts.OutputName(outRel)
	}

	dst, err := opts.Writer.Write(outRel, data)
	if err != nil {
		res.Err = fmt.Errorf("write %s: %w", outRel, err)
		return res
	}

	res.OutPath = dst
	return res
}

// mergeResults combines per-worker result buffers into one Result. Workers
// never share an accumulator; this is the only place counts are derived.
func mergeResults(buffers [][]ItemResult, enumerated int) *Result {
	result := &Result{Enumerated: enumerated}

	for _, buf := range buffers {
		for _, res := range buf {
			result.Items = append(result.Items, res)
			result.Attempted++
			if res.Err != nil {
				result.Failures++
			} else {
				result.Succeeded++
			}
		}
	}

	return result
}
