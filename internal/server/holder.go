package server

import (
	"sync/atomic"
	"time"

	"content-hub/internal/content"
)

// DefaultRetireGrace is how long a replaced provider stays open for requests
// that loaded it before the swap.
const DefaultRetireGrace = 30 * time.Second

// Holder hands out the current provider. Swap replaces it while requests
// already in flight finish on the old one.
type Holder struct {
	p atomic.Pointer[content.Provider]
}

func NewHolder(p *content.Provider) *Holder {
	h := &Holder{}
	h.p.Store(p)
	return h
}

func (h *Holder) Load() *content.Provider { return h.p.Load() }

// Swap installs p and returns the previous provider. The caller decides
// when the old one can be closed.
func (h *Holder) Swap(p *content.Provider) *content.Provider { return h.p.Swap(p) }

// Replace installs p and closes the previous provider after grace.
func (h *Holder) Replace(p *content.Provider, grace time.Duration) {
	if old := h.Swap(p); old != nil && old != p {
		retire(old, grace)
	}
}

type closer interface {
	Close()
}

func retire(c closer, grace time.Duration) *time.Timer {
	if grace <= 0 {
		grace = DefaultRetireGrace
	}
	return time.AfterFunc(grace, c.Close)
}
