package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/label-verifier/constants"
	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/entity"
	"github.com/joseph-ayodele/label-verifier/internal/ocr"
	"github.com/joseph-ayodele/label-verifier/internal/rules"
	"github.com/joseph-ayodele/label-verifier/internal/validators"
)

// Processor coordinates OCR aggregation, then rule evaluation for one submission.
type Processor struct {
	logger     *slog.Logger
	aggregator *ocr.Aggregator
	registry   *rules.Registry
}

// NewProcessor checks every beverage validator against registry, so a missing
// rule fails at startup instead of on the first request.
func NewProcessor(logger *slog.Logger, aggregator *ocr.Aggregator, registry *rules.Registry) (*Processor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if aggregator == nil {
		return nil, common.ConfigError("processor needs an OCR aggregator")
	}
	if registry == nil {
		return nil, common.ConfigError("processor needs a rule registry")
	}
	if err := validators.Check(registry); err != nil {
		return nil, err
	}
	return &Processor{logger: logger, aggregator: aggregator, registry: registry}, nil
}

// Validate runs the full pipeline for one submission. Label quality problems
// never produce an error; only invalid requests do (unknown beverage type,
// no images, invalid form data).
func (p *Processor) Validate(ctx context.Context, bt constants.BeverageType, form entity.FormData, images []entity.LabelImage) (entity.Report, error) {
	v, err := validators.Lookup(bt)
	if err != nil {
		return entity.Report{}, err
	}
	if len(images) == 0 {
		return entity.Report{}, common.NewAppError(common.CodeNoImages, "at least one label image is required", common.ErrNoImages)
	}
	if err := form.Validate(); err != nil {
		return entity.Report{}, err
	}

	start := time.Now()
	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	logger := p.logger.With("run_id", runID, "beverage_type", string(bt))
	if reqID := common.RequestIDFromContext(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	// 1) OCR every image; failures come back as per-image warnings
	agg := p.aggregator.Aggregate(ctx, images)

	// 2) rules over the submission corpus, all of them, in declared order
	rctx := rules.NewContext(bt, form, agg.Corpus, agg.Images)
	discrepancies, evidence, err := Evaluate(p.registry, v, rctx)
	if err != nil {
		logger.Error("validation.rules.failed", "err", err)
		return entity.Report{}, err
	}

	rep := entity.Report{
		RunID:          runID,
		BeverageType:   bt,
		Status:         entity.StatusFor(discrepancies),
		Discrepancies:  discrepancies,
		Images:         agg.Images,
		Evidence:       evidence,
		RulesEvaluated: len(v.RuleIDs),
		Elapsed:        time.Since(start),
	}
	logger.Info("validation complete",
		"status", rep.Status,
		"images", len(images),
		"errors", rep.ErrorCount(),
		"infos", rep.InfoCount(),
		"warnings", len(rep.Warnings()),
		"elapsed_ms", rep.Elapsed.Milliseconds(),
	)
	return rep, nil
}

// Evaluate runs every rule of v against rctx and turns failures into
// discrepancies with v's severity. Evidence is keyed by field; the first rule
// touching a field supplies it.
func Evaluate(reg *rules.Registry, v validators.Validator, rctx *rules.Context) ([]entity.Discrepancy, map[string]string, error) {
	discrepancies := make([]entity.Discrepancy, 0)
	evidence := make(map[string]string)
	for _, id := range v.RuleIDs {
		res, err := reg.Evaluate(id, rctx)
		if err != nil {
			return nil, nil, err
		}
		if _, seen := evidence[res.Field]; !seen && res.Evidence != "" {
			evidence[res.Field] = res.Evidence
		}
		if res.Passed {
			continue
		}
		discrepancies = append(discrepancies, entity.Discrepancy{
			RuleID:   id,
			Field:    res.Field,
			Severity: v.Severity(id),
			Message:  res.Message,
			Evidence: res.Evidence,
		})
	}
	return discrepancies, evidence, nil
}
