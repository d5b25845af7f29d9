// Package compilerun coordinates blueprint compiles as deduplicated,
// cancellable operations. Concurrent requests that share a key join one
// in-flight compile instead of racing each other over the same output
// tree.
package compilerun

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/Far-Beyond-Pulsar/blueprint-core/pkg/compiler"
)

// Stage marks a coarse phase of a compile run.
type Stage string

const (
	StageGenerating Stage = "generating"
	StageWriting    Stage = "writing"
	StageDone       Stage = "done"
)

// Progress reports a stage transition. Files is populated once generation
// has produced the output set, so it is zero during StageGenerating.
type Progress struct {
	Class string
	Stage Stage
	Files int
}

// ProgressFunc observes stage transitions on the goroutine executing the
// compile. A blocking implementation stalls the compile for every caller
// waiting on it.
type ProgressFunc func(Progress)

// Request describes one compile.
type Request struct {
	// Key deduplicates concurrent requests: requests with equal keys share
	// a single run. Empty keys fall back to the class name.
	Key string

	// Input is handed to the compiler untouched.
	Input compiler.Input

	// OutDir, when set, receives the generated files after a successful
	// compile via an atomic directory swap.
	OutDir string

	// OnProgress, when set, observes stage transitions. Only the request
	// that starts a run reports progress; requests that join an in-flight
	// run receive the shared result and nothing else.
	OnProgress ProgressFunc
}

// Runner deduplicates and executes compile requests. Construct with
// NewRunner.
type Runner struct {
	group  singleflight.Group
	logger *slog.Logger
}

func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Compile runs the request, joining an identical in-flight compile when one
// exists. Cancelling ctx abandons this caller's wait only. The run itself
// keeps going so the remaining callers still get their result.
func (r *Runner) Compile(ctx context.Context, req Request) (compiler.Result, error) {
	key := req.Key
	if key == "" {
		key = req.Input.ClassName
	}

	ch := r.group.DoChan(key, func() (any, error) {
		return r.run(req)
	})

	select {
	case <-ctx.Done():
		r.logger.Debug("compile wait abandoned", "key", key, "cause", ctx.Err())
		return compiler.Result{}, ctx.Err()
	case out := <-ch:
		if out.Err != nil {
			return compiler.Result{}, out.Err
		}
		if out.Shared {
			r.logger.Debug("compile result shared across callers", "key", key)
		}
		return out.Val.(compiler.Result), nil
	}
}

// Invalidate drops the in-flight run for key, if any. The next request with
// that key starts fresh instead of joining a run whose input went stale,
// which is what the editor does when a graph is edited mid-compile.
func (r *Runner) Invalidate(key string) {
	r.group.Forget(key)
}

func (r *Runner) run(req Request) (compiler.Result, error) {
	report := req.OnProgress
	if report == nil {
		report = func(Progress) {}
	}
	class := req.Input.ClassName

	report(Progress{Class: class, Stage: StageGenerating})
	result, err := compiler.Compile(req.Input, r.logger)
	if err != nil {
		return compiler.Result{}, err
	}

	if req.OutDir != "" {
		report(Progress{Class: class, Stage: StageWriting, Files: len(result.Files)})
		if err := compiler.WriteFiles(req.OutDir, result.Files); err != nil {
			return compiler.Result{}, err
		}
	}

	report(Progress{Class: class, Stage: StageDone, Files: len(result.Files)})
	return result, nil
}
