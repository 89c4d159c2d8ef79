package web

import (
	"github.com/pixil98/go-atlas/internal/chart"
	"github.com/pixil98/go-atlas/internal/style"
	"github.com/pixil98/go-atlas/internal/yeardata"
)

type WebOpt func(*WebTarget)

// WithWebDir serves static assets from dir at the root path.
func WithWebDir(dir string) WebOpt {
	return func(t *WebTarget) {
		t.webDir = dir
	}
}

// WithExecutor enables POST /api/command.
func WithExecutor(e Executor) WebOpt {
	return func(t *WebTarget) {
		t.exec = e
	}
}

func WithRenderer(r *chart.Renderer) WebOpt {
	return func(t *WebTarget) {
		t.renderer = r
	}
}

// WithSchema names the feature properties used for paint expressions.
func WithSchema(s yeardata.Schema) WebOpt {
	return func(t *WebTarget) {
		t.schema = s
	}
}

func WithScale(s style.Scale) WebOpt {
	return func(t *WebTarget) {
		t.scale = s
	}
}
