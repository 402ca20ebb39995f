// Package batch converts many JSON files concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/pytyper/internal/converter"
	"github.com/mcncl/pytyper/internal/errors"
	"github.com/mcncl/pytyper/internal/formatter"
	"github.com/mcncl/pytyper/internal/generator"
	"github.com/mcncl/pytyper/internal/parser"
)

// Job names one input file and where its code goes.
type Job struct {
	Input  string
	Output string
}

// Result reports the outcome of one Job.
type Result struct {
	Input  string
	Output string
	Err    error
}

// Runner converts jobs with a bounded number of workers.
type Runner struct {
	conv      *converter.Converter
	formatter *formatter.Formatter
	workers   int
}

// NewRunner creates a Runner. workers below one means one.
func NewRunner(conv *converter.Converter, f *formatter.Formatter, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	if f == nil {
		f = formatter.NewFormatter()
	}
	return &Runner{conv: conv, formatter: f, workers: workers}
}

// Jobs pairs every input with an output path: the input's base name with a
// .py extension, inside outDir or next to the input when outDir is empty.
func Jobs(inputs []string, outDir string) []Job {
	jobs := make([]Job, 0, len(inputs))
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".py"
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}
		jobs = append(jobs, Job{Input: in, Output: filepath.Join(dir, base)})
	}
	return jobs
}

// Run converts every job. A failing file does not stop the others; its error
// is reported in its Result. The returned error is non-nil only when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, jobs []Job, style generator.Style) ([]Result, error) {
	results := make([]Result, len(jobs))
	logger := slog.With(slog.String("run_id", uuid.New().String()))
	logger.Debug("batch run started", slog.Int("jobs", len(jobs)), slog.Int("workers", r.workers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Input: job.Input, Output: job.Output, Err: r.convertOne(job, style)}
			if results[i].Err != nil {
				logger.Debug("batch conversion failed",
					slog.String("input", job.Input),
					slog.String("error", results[i].Err.Error()),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	logger.Debug("batch run finished", slog.Int("failed", Failed(results)))
	return results, nil
}

func (r *Runner) convertOne(job Job, style generator.Style) error {
	data, err := parser.ReadFile(job.Input)
	if err != nil {
		return err
	}
	code, err := r.conv.ConvertBytes(data, style)
	if err != nil {
		return err
	}
	code = r.formatter.Format(code)

	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to create directory for '%s'", job.Output), err)
	}
	if err := os.WriteFile(job.Output, []byte(code), 0644); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", job.Output), err)
	}
	return nil
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}
