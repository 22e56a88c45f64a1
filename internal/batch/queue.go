package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/report"
)

// Validator is the part of core.Processor the queue needs.
type Validator interface {
	Validate(ctx context.Context, bt constants.BeverageType, form entity.FormData, images []entity.LabelImage) (entity.Report, error)
}

// Outcome is the result of one submission. Report is zero when Err is set.
type Outcome struct {
	Submission string
	Report     entity.Report
	Err        error
	Elapsed    time.Duration
}

// Queue validates submissions on a fixed pool of workers.
type Queue struct {
	validator Validator
	logger    *slog.Logger
	workers   int
	queueSize int
	timeout   time.Duration
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.queueSize = n
		}
	}
}

// WithProcessTimeout bounds the time spent on one submission.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(v Validator, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		validator: v,
		logger:    logger,
		workers:   2,
		queueSize: 64,
		timeout:   3 * time.Minute,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

type job struct {
	index int
	sub   Submission
}

// Run validates subs and returns one Outcome per submission, in input order.
// Submissions that failed to load are not validated; their load error is the
// outcome. Cancelling ctx stops queued work; submissions never started report
// the context error.
func (q *Queue) Run(ctx context.Context, subs []Submission) []Outcome {
	batchID := uuid.NewString()
	logger := q.logger.With("batch_id", batchID)
	start := time.Now()

	outcomes := make([]Outcome, len(subs))
	ch := make(chan job, q.queueSize)

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range ch {
				outcomes[j.index] = q.process(ctx, logger.With("worker_id", workerID), j.sub)
			}
		}(i + 1)
	}

enqueue:
	for i, sub := range subs {
		select {
		case ch <- job{index: i, sub: sub}:
		case <-ctx.Done():
			for k := i; k < len(subs); k++ {
				outcomes[k] = Outcome{Submission: subs[k].Name, Err: ctx.Err()}
			}
			break enqueue
		}
	}
	close(ch)
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	logger.Info("batch complete",
		"submissions", len(subs),
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcomes
}

func (q *Queue) process(ctx context.Context, logger *slog.Logger, sub Submission) Outcome {
	out := Outcome{Submission: sub.Name}
	if sub.Err != nil {
		out.Err = sub.Err
		logger.Warn("submission skipped", "submission", sub.Name, "error", sub.Err)
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	ctx = common.WithRequestID(ctx, sub.Name)

	out.Report, out.Err = q.validator.Validate(ctx, sub.BeverageType, sub.Form, sub.Images)
	out.Elapsed = time.Since(start)
	if out.Err != nil {
		logger.Error("submission failed", "submission", sub.Name, "error", out.Err)
	} else {
		logger.Info("submission validated",
			"submission", sub.Name,
			"status", out.Report.Status,
			"elapsed_ms", out.Elapsed.Milliseconds(),
		)
	}
	return out
}

// SummaryRows converts outcomes into rows for report.WriteSummaryXLSX.
func SummaryRows(outcomes []Outcome) []report.SummaryRow {
	rows := make([]report.SummaryRow, 0, len(outcomes))
	for _, o := range outcomes {
		row := report.SummaryRow{Submission: o.Submission, Elapsed: o.Elapsed}
		if o.Err != nil {
			row.Err = o.Err.Error()
			rows = append(rows, row)
			continue
		}
		row.BeverageType = string(o.Report.BeverageType)
		row.Status = string(o.Report.Status)
		row.Errors = o.Report.ErrorCount()
		row.Infos = o.Report.InfoCount()
		row.Images = len(o.Report.Images)
		row.Warnings = len(o.Report.Warnings())
		rows = append(rows, row)
	}
	return rows
}
