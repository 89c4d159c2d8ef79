package view

import (
	"log/slog"
	"sync"
)

// Banner is the single user-visible message area. Every error shown through it
// also hides the loading indicator.
type Banner struct {
	mu      sync.RWMutex
	loading bool
	message string
}

// BannerStatus is what renderers display.
type BannerStatus struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func NewBanner() *Banner {
	return &Banner{loading: true}
}

// ShowError replaces the displayed message and hides the loading indicator.
func (b *Banner) ShowError(msg string) {
	b.mu.Lock()
	b.message = msg
	b.loading = false
	b.mu.Unlock()

	slog.Error("banner", "message", msg)
}

// Ready hides the loading indicator.
func (b *Banner) Ready() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
}

func (b *Banner) Status() BannerStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BannerStatus{Loading: b.loading, Error: b.message}
}
