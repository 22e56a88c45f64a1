// Package ocr wraps text recognition for label images and aggregates the
// recognized lines into per-image and per-submission corpora.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Recognizer is the OCR capability: image bytes in, recognized text lines out.
// rotation is in degrees counter-clockwise and is one of 0, 90, 180 or 270.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, rotation int) ([]string, error)
}

// Engine is a named Recognizer that can report whether it is usable.
type Engine interface {
	Recognizer
	Name() string
	Available(ctx context.Context) error
}

// ErrUnreadableImage marks input that cannot be decoded; retrying will not help.
var ErrUnreadableImage = errors.New("unreadable image")

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default

	MaxDimension int // longest side after downscaling, default 1024
}

func (c Config) withDefaults() Config {
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.MaxDimension <= 0 {
		c.MaxDimension = 1024
	}
	return c
}

type engineFactory func(Config, *slog.Logger) Engine

var engineFactories = map[string]engineFactory{
	"tesseract": func(cfg Config, logger *slog.Logger) Engine { return NewTesseractEngine(cfg, logger) },
}

// NewEngine builds the engine registered under name.
func NewEngine(name string, cfg Config, logger *slog.Logger) (Engine, error) {
	f, ok := engineFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown ocr engine %q (available: %v)", name, EngineNames())
	}
	return f(cfg, logger), nil
}

// EngineNames lists the engines compiled into this binary.
func EngineNames() []string {
	names := make([]string, 0, len(engineFactories))
	for n := range engineFactories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
