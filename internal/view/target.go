package view

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"partyplanner/internal/store"

	"golang.org/x/net/html"
)

// Target is the render target: it holds the serialized #app container from
// the latest render and tells listeners whenever it is replaced.
type Target struct {
	mu        sync.RWMutex
	html      string
	listeners []func(string)
}

func NewTarget() *Target {
	return &Target{}
}

// Replace serializes node as the new content and notifies listeners with it.
// Listeners run on the caller's goroutine and must not block.
func (t *Target) Replace(node *html.Node) error {
	var buf bytes.Buffer
	if err := html.Render(&buf, node); err != nil {
		return fmt.Errorf("render view: %w", err)
	}
	out := buf.String()

	t.mu.Lock()
	t.html = out
	listeners := t.listeners
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(out)
	}
	return nil
}

// HTML returns the latest rendered container.
func (t *Target) HTML() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.html
}

// OnReplace registers fn to receive every new render.
func (t *Target) OnReplace(fn func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Mount re-renders st into t after every mutation, starting with the current state.
func Mount(st *store.Store, r *Renderer, t *Target, logger *slog.Logger) {
	st.Subscribe(func(s store.Snapshot) {
		if err := t.Replace(r.Render(s)); err != nil && logger != nil {
			logger.Error("render failed", "err", err)
		}
	})
}
