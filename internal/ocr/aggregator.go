package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/textnorm"
)

// Aggregator runs a Recognizer over every image at each configured rotation and
// merges the recognized lines. A failing or timed-out image contributes an
// empty corpus and a warning; it never fails the submission.
type Aggregator struct {
	recognizer Recognizer
	logger     *slog.Logger
	rotations  []int
	timeout    time.Duration
	workers    int
	retries    uint64
	backoff    time.Duration
	excerptLen int
}

// Result is the aggregated OCR output of one submission.
type Result struct {
	Images []entity.ImageResult
	// Lines are the distinct lines of all images, in upload order.
	Lines []string
	// Corpus is Lines joined by newlines.
	Corpus string
}

type Option func(*Aggregator)

func WithRotations(r ...int) Option {
	return func(a *Aggregator) {
		if len(r) > 0 {
			a.rotations = append([]int(nil), r...)
		}
	}
}

// WithImageTimeout bounds the OCR time spent on a single image, all rotations included.
func WithImageTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithRetries retries transient recognizer failures n times, waiting backoff between attempts.
func WithRetries(n int, backoff time.Duration) Option {
	return func(a *Aggregator) {
		if n >= 0 {
			a.retries = uint64(n)
		}
		if backoff > 0 {
			a.backoff = backoff
		}
	}
}

func WithExcerptLength(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.excerptLen = n
		}
	}
}

func NewAggregator(r Recognizer, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		recognizer: r,
		logger:     logger,
		rotations:  []int{0, 90},
		timeout:    30 * time.Second,
		workers:    4,
		retries:    1,
		backoff:    250 * time.Millisecond,
		excerptLen: 500,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

type imageOutcome struct {
	result entity.ImageResult
	lines  []string
}

// Aggregate recognizes every image, in parallel across images, and returns
// once all of them have finished.
func (a *Aggregator) Aggregate(ctx context.Context, images []entity.LabelImage) Result {
	start := time.Now()
	outcomes := make([]imageOutcome, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, img := range images {
		g.Go(func() error {
			outcomes[i] = a.recognizeImage(gctx, img)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Images: make([]entity.ImageResult, len(images))}
	perImage := make([][]string, len(images))
	for i, o := range outcomes {
		res.Images[i] = o.result
		perImage[i] = o.lines
	}
	res.Lines = DedupeLines(perImage...)
	res.Corpus = strings.Join(res.Lines, "\n")

	a.logger.Info("ocr.aggregate.done",
		"run_id", common.RunIDFromContext(ctx),
		"images", len(images),
		"lines", len(res.Lines),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (a *Aggregator) recognizeImage(ctx context.Context, img entity.LabelImage) imageOutcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out := imageOutcome{result: entity.ImageResult{ID: img.ID}}
	byRotation := make([][]string, 0, len(a.rotations))
	for _, rot := range a.rotations {
		lines, err := a.recognizeWithRetry(ctx, img.Data, rot)
		if err != nil {
			warning := fmt.Sprintf("ocr failed at %d°: %v", rot, err)
			if errors.Is(err, context.DeadlineExceeded) {
				warning = fmt.Sprintf("ocr timed out after %s", a.timeout)
			}
			a.logger.Warn("ocr.image.failed",
				"image", img.ID,
				"rotation", rot,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			out.result.Warnings = []string{warning}
			out.result.Duration = time.Since(start)
			return out
		}
		byRotation = append(byRotation, lines)
	}

	out.lines = DedupeLines(byRotation...)
	corpus := strings.Join(out.lines, "\n")
	out.result.Text = corpus
	out.result.Normalized = textnorm.Loose(corpus)
	out.result.Excerpt = textnorm.Truncate(corpus, a.excerptLen)
	out.result.Lines = len(out.lines)
	out.result.Duration = time.Since(start)

	a.logger.Debug("ocr.image.done",
		"image", img.ID,
		"lines", len(out.lines),
		"elapsed_ms", out.result.Duration.Milliseconds(),
	)
	return out
}

func (a *Aggregator) recognizeWithRetry(ctx context.Context, data []byte, rotation int) ([]string, error) {
	var lines []string
	b := retry.WithMaxRetries(a.retries, retry.NewConstant(a.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		out, err := a.recognizer.Recognize(ctx, data, rotation)
		if err != nil {
			if shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		lines = out
		return nil
	})
	return lines, err
}

// shouldRetry reports whether a recognizer error may succeed on another attempt.
func shouldRetry(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrUnreadableImage):
		return false
	}
	return true
}

// DedupeLines concatenates the groups in order, keeping the first occurrence of
// lines that are identical after loose normalization. Lines with no letters or
// digits are dropped.
func DedupeLines(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, ln := range g {
			key := textnorm.Loose(ln)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, strings.TrimSpace(ln))
		}
	}
	return out
}
