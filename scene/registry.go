package scene

import (
	"fmt"

	"github.com/lixenwraith/orrery/vmath"
)

// Registry holds the scene's bodies in registration order
// Parents are always registered before their moons, so iteration order is update order
type Registry struct {
	bodies []*Body
	index  map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Add validates and registers a body, returning the stored instance
// A zero Handle is replaced with a registry-assigned one
func (r *Registry) Add(b Body) (*Body, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if _, exists := r.index[b.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBody, b.ID)
	}

	if b.Parent != "" {
		parent, ok := r.Lookup(b.Parent)
		if !ok {
			return nil, fmt.Errorf("%w: %s references unregistered parent %s", ErrInvalidBody, b.ID, b.Parent)
		}
		b.parent = parent
	}

	if b.Handle == 0 {
		b.Handle = Handle(len(r.bodies) + 1)
	}
	for _, other := range r.bodies {
		if other.Handle == b.Handle {
			return nil, fmt.Errorf("%w: %s reuses handle %d of %s", ErrInvalidBody, b.ID, b.Handle, other.ID)
		}
	}

	b.orbitAngle = vmath.WrapAngle(b.orbitAngle)
	body := &b
	r.index[b.ID] = len(r.bodies)
	r.bodies = append(r.bodies, body)
	return body, nil
}

// Get returns the body registered under id or ErrBodyNotFound
func (r *Registry) Get(id string) (*Body, error) {
	if b, ok := r.Lookup(id); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBodyNotFound, id)
}

// Lookup returns the body registered under id
func (r *Registry) Lookup(id string) (*Body, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.bodies[i], true
}

// Bodies returns bodies in update order, the slice must not be modified
func (r *Registry) Bodies() []*Body {
	return r.bodies
}

// Len returns the number of registered bodies
func (r *Registry) Len() int {
	return len(r.bodies)
}

// Central returns the first star, nil if the scene has none
func (r *Registry) Central() *Body {
	for _, b := range r.bodies {
		if b.IsCentral() {
			return b
		}
	}
	return nil
}

// ApplyScale refreshes every body's angular speeds from the magnitude of a new time scale
func (r *Registry) ApplyScale(scale float64) {
	for _, b := range r.bodies {
		b.setScale(scale)
	}
}
