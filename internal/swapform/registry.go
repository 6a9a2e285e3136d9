package swapform

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks live forms by id for the HTTP layer.
type Registry struct {
	cfg Config

	mu    sync.RWMutex
	forms map[string]*Controller
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, forms: make(map[string]*Controller)}
}

// Create opens a new form and returns its id.
func (r *Registry) Create(from, to string) (string, *Controller, error) {
	c, err := New(r.cfg, from, to)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.forms[id] = c
	r.mu.Unlock()
	return id, c, nil
}

func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return c, nil
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}
