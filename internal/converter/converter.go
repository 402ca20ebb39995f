// Package converter runs the parse, select, analyze and generate stages
// for one document.
package converter

import (
	"log/slog"
	"time"

	"github.com/mcncl/pytyper/internal/analyzer"
	"github.com/mcncl/pytyper/internal/cache"
	"github.com/mcncl/pytyper/internal/config"
	"github.com/mcncl/pytyper/internal/generator"
	"github.com/mcncl/pytyper/internal/parser"
	"github.com/mcncl/pytyper/internal/query"
)

// Converter turns JSON text into Pydantic source. It is safe for concurrent
// use; every call works on its own registry.
type Converter struct {
	config    *config.Config
	analyzer  *analyzer.Analyzer
	generator *generator.Generator
	selector  *query.Selector
	cache     *cache.ResultCache
}

// Option configures a Converter.
type Option func(*Converter)

// WithCache memoizes results keyed by style and input text.
func WithCache(c *cache.ResultCache) Option {
	return func(conv *Converter) {
		conv.cache = c
	}
}

// New creates a Converter from cfg. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) (*Converter, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conv := &Converter{
		config:    cfg,
		analyzer:  analyzer.NewAnalyzerWithConfig(cfg),
		generator: generator.NewGenerator(),
	}
	if cfg.Input.Select != "" {
		sel, err := query.Compile(cfg.Input.Select)
		if err != nil {
			return nil, err
		}
		conv.selector = sel
	}
	for _, opt := range opts {
		opt(conv)
	}
	return conv, nil
}

// Config returns the configuration the converter was built with.
func (c *Converter) Config() *config.Config {
	return c.config
}

// Convert converts one JSON document into Pydantic source in the given style.
func (c *Converter) Convert(text string, style generator.Style) (string, error) {
	return c.ConvertBytes([]byte(text), style)
}

// ConvertBytes is Convert for raw bytes.
func (c *Converter) ConvertBytes(data []byte, style generator.Style) (string, error) {
	var key string
	if c.cache != nil {
		key = cache.Key(style.String(), data)
		if code, ok := c.cache.Get(key); ok {
			slog.Debug("conversion cache hit", "style", style.String())
			return code, nil
		}
	}

	start := time.Now()
	ir, err := parser.ParseBytes(data, parser.Options{
		Repair:   c.config.Input.Repair,
		MaxDepth: c.config.Limits.MaxDepth,
	})
	if err != nil {
		return "", err
	}

	if c.selector != nil {
		selected, err := c.selector.Select(ir.Root)
		if err != nil {
			return "", err
		}
		ir.Root = selected
	}

	registry, err := c.analyzer.Analyze(ir)
	if err != nil {
		return "", err
	}
	code := c.generator.Generate(registry, style)

	slog.Debug("converted document",
		"style", style.String(),
		"classes", registry.Len(),
		"input_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if c.cache != nil {
		c.cache.Put(key, code)
	}
	return code, nil
}

// Convert converts text with the default configuration.
func Convert(text string, style generator.Style) (string, error) {
	conv, err := New(nil)
	if err != nil {
		return "", err
	}
	return conv.Convert(text, style)
}
