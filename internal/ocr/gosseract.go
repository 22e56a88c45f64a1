//go:build gosseract

package ocr

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

func init() {
	engineFactories["gosseract"] = func(cfg Config, logger *slog.Logger) Engine {
		return NewGosseractEngine(cfg, logger)
	}
}

// GosseractEngine calls libtesseract in-process through cgo.
type GosseractEngine struct {
	cfg           Config
	logger        *slog.Logger
	clientFactory func() *gosseract.Client
}

func NewGosseractEngine(cfg Config, logger *slog.Logger) *GosseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &GosseractEngine{cfg: cfg.withDefaults(), logger: logger, clientFactory: gosseract.NewClient}
}

func (e *GosseractEngine) Name() string { return "gosseract" }

func (e *GosseractEngine) Available(_ context.Context) error {
	c := e.clientFactory()
	defer c.Close()
	if err := c.SetLanguage(e.cfg.TesseractLang); err != nil {
		return fmt.Errorf("gosseract unavailable: %w", err)
	}
	return nil
}

func (e *GosseractEngine) Recognize(ctx context.Context, image []byte, rotation int) ([]string, error) {
	png, err := Preprocess(image, rotation, e.cfg.MaxDimension)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()
	if err := c.SetLanguage(e.cfg.TesseractLang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if e.cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}
	if err := c.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	lines := SplitLines(text)
	e.logger.Debug("gosseract recognized", "rotation", rotation, "lines", len(lines))
	return lines, nil
}
