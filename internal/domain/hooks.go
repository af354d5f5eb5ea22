// Package domain holds cross-cutting pieces shared by the domain services.
package domain

import (
	"context"

	"rebanho/pkg/logger"
)

// PostCommit collects side effects that must only run after the enclosing
// transaction commits: report generation, audit writes, anything whose
// failure must never roll the document back.
type PostCommit struct {
	hooks []hook
}

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Add registers a named hook. Names show up in logs when a hook fails.
func (p *PostCommit) Add(name string, fn func(ctx context.Context) error) {
	p.hooks = append(p.hooks, hook{name: name, fn: fn})
}

// Run executes the hooks in registration order. Failures are logged and
// swallowed; a broken printer must not break a committed document.
func (p *PostCommit) Run(ctx context.Context) {
	for _, h := range p.hooks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(ctx, "post-commit hook panicked", "hook", h.name, "panic", r)
				}
			}()
			if err := h.fn(ctx); err != nil {
				logger.Error(ctx, "post-commit hook failed", "hook", h.name, "error", err)
			}
		}()
	}
	p.hooks = nil
}
