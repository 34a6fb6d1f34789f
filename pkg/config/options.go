package config

import (
	"io"
	"log/slog"
)

type Option func(p *parser)

// WithLogger sets the logger used for debug output while parsing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPriorLoader replaces the loader used for spline prior resources.
func WithPriorLoader(loader PriorDataLoader) Option {
	return func(p *parser) {
		if loader != nil {
			p.priors = loader
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
