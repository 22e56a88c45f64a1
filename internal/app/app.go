// Package app wires configuration into the OCR engine, rule registry and
// processor shared by the daemon and the CLI.
package app

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/label-verifier/internal/common"
	"github.com/joseph-ayodele/label-verifier/internal/core"
	"github.com/joseph-ayodele/label-verifier/internal/ocr"
	"github.com/joseph-ayodele/label-verifier/internal/rules"
)

type App struct {
	Config     *common.Config
	Engine     ocr.Engine
	Aggregator *ocr.Aggregator
	Processor  *core.Processor
}

// New builds the pipeline described by cfg.
func New(cfg *common.Config, logger *slog.Logger) (*App, error) {
	engine, err := ocr.NewEngine(cfg.OCR.Engine, OCRConfig(cfg.OCR), logger)
	if err != nil {
		return nil, common.ConfigError("%v", err)
	}
	return NewWithEngine(cfg, engine, logger)
}

// NewWithEngine is New with a caller-supplied engine.
func NewWithEngine(cfg *common.Config, engine ocr.Engine, logger *slog.Logger) (*App, error) {
	agg := ocr.NewAggregator(engine, logger,
		ocr.WithRotations(cfg.OCR.Rotations...),
		ocr.WithImageTimeout(cfg.OCR.Timeout),
		ocr.WithWorkers(cfg.OCR.Workers),
		ocr.WithRetries(cfg.OCR.Retries, cfg.OCR.RetryBackoff),
		ocr.WithExcerptLength(cfg.Report.ExcerptLength),
	)
	reg, err := rules.Default()
	if err != nil {
		return nil, fmt.Errorf("build rule registry: %w", err)
	}
	proc, err := core.NewProcessor(logger, agg, reg)
	if err != nil {
		return nil, err
	}
	return &App{Config: cfg, Engine: engine, Aggregator: agg, Processor: proc}, nil
}

func OCRConfig(c common.OCRConfig) ocr.Config {
	return ocr.Config{
		Tesseract:     c.Tesseract,
		TesseractLang: c.TesseractLang,
		TessdataDir:   c.TessdataDir,
		PSM:           c.PSM,
		OEM:           c.OEM,
		MaxDimension:  c.MaxDimension,
	}
}
