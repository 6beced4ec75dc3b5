package registry

import (
	"fmt"
	"sync"

	"github.com/agentx-labs/storyshots/internal/requirecontext"
)

// Story is one story module found by a registered context.
type Story struct {
	// Context is the directory the key is relative to.
	Context string `json:"context"`
	Key     string `json:"key"`
	Path    string `json:"path"`
}

// Registration is one Configure call.
type Registration struct {
	Stories      []requirecontext.Context
	AutoActivate bool
}

// Recorder records Configure calls. The zero value is ready to use.
type Recorder struct {
	mu    sync.Mutex
	calls []Registration
}

// Configure records stories. It never fails.
func (r *Recorder) Configure(stories []requirecontext.Context, autoActivate bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Registration{Stories: stories, AutoActivate: autoActivate})
	return nil
}

// Registrations returns the recorded calls in order.
func (r *Recorder) Registrations() []Registration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Registration, len(r.calls))
	copy(out, r.calls)
	return out
}

// Contexts returns every recorded context in registration order.
func (r *Recorder) Contexts() []requirecontext.Context {
	var out []requirecontext.Context
	for _, reg := range r.Registrations() {
		out = append(out, reg.Stories...)
	}
	return out
}

// Stories enumerates every recorded context and returns its story modules
// in registration order. The first enumeration error is returned.
func (r *Recorder) Stories() ([]Story, error) {
	var out []Story
	for _, ctx := range r.Contexts() {
		dir := ctx.Describe().Dir
		for key, err := range ctx.All() {
			if err != nil {
				return nil, fmt.Errorf("enumerating %s: %w", dir, err)
			}
			out = append(out, Story{Context: dir, Key: key, Path: ctx.Resolve(key)})
		}
	}
	return out, nil
}
