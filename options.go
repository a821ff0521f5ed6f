package loom

import (
	"log/slog"

	"github.com/loom-di/loom/internal/engine"
)

type config struct {
	strict        bool
	tracking      bool
	logger        *slog.Logger
	resolveHooks  []engine.ResolveHook
	registerHooks []engine.RegisterHook
}

type Option func(*config)

// WithStrict disables automatic alias derivation; only explicit AddAlias
// entries participate in name fallback.
func WithStrict() Option {
	return func(cfg *config) {
		cfg.strict = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithTrackingScopes makes providers consult an ambient scope stack, so a
// nested Provider.Get transparently shares the scoped cache of an
// enclosing open scope. Experimental; the ambient stack is process-wide
// and not goroutine-safe.
func WithTrackingScopes() Option {
	return func(cfg *config) {
		cfg.tracking = true
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *config) {
		cfg.resolveHooks = append(cfg.resolveHooks, hook)
	}
}

func WithRegisterObserver(hook RegisterHook) Option {
	return func(cfg *config) {
		cfg.registerHooks = append(cfg.registerHooks, hook)
	}
}
