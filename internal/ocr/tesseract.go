package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// TesseractEngine shells out to the tesseract CLI, feeding a preprocessed PNG on stdin.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// EngineOption configures a TesseractEngine.
type EngineOption func(*TesseractEngine)

// WithRunner replaces the exec runner, mainly for tests.
func WithRunner(r Runner) EngineOption {
	return func(e *TesseractEngine) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewTesseractEngine(cfg Config, logger *slog.Logger, opts ...EngineOption) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &TesseractEngine{cfg: cfg.withDefaults(), runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Available checks that the configured binary runs.
func (e *TesseractEngine) Available(ctx context.Context) error {
	if _, errb, err := e.runner.Run(ctx, nil, e.cfg.Tesseract, "--version"); err != nil {
		return fmt.Errorf("tesseract unavailable: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 256))
	}
	return nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, rotation int) ([]string, error) {
	png, err := Preprocess(image, rotation, e.cfg.MaxDimension)
	if err != nil {
		return nil, err
	}

	// tesseract stdin stdout -l <lang> [--psm N] [--oem N] [--tessdata-dir D]
	out, errb, err := e.runner.Run(ctx, png, e.cfg.Tesseract, e.args()...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	lines := SplitLines(string(out))
	e.logger.Debug("tesseract recognized", "rotation", rotation, "lines", len(lines), "png_bytes", len(png))
	return lines, nil
}

func (e *TesseractEngine) args() []string {
	args := []string{"stdin", "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
