package pipeline

import (
	"log/slog"

	"github.com/askiada/go-pisa/pkg/config"
	"github.com/askiada/go-pisa/pkg/pipeline/model"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOptions attaches lifecycle options such as measures and drawers.
func WithOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}

// WithPostStageHook runs hook on the output of every stage whose role is
// role, replacing any default hook for that role.
func WithPostStageHook(role string, hook Hook) Option {
	return func(p *Pipeline) {
		p.customHooks[role] = hook
	}
}

// WithoutDefaultHooks disables the built-in post-stage hooks.
func WithoutDefaultHooks() Option {
	return func(p *Pipeline) {
		p.noDefaultHooks = true
	}
}

// WithConfigOptions passes options to the configuration parser used by
// FromConfig.
func WithConfigOptions(opts ...config.Option) Option {
	return func(p *Pipeline) {
		p.configOpts = append(p.configOpts, opts...)
	}
}
