// Package di provides a small typed-token dependency injection container
// used to wire bounded-context modules together.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get returns the service registered under name, building it lazily
	// if a factory was registered. Panics if the name is unknown.
	Get(name string) any
}

// Container registers services and factories by name.
type Container interface {
	ServiceRegistry
	Register(name string, value any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type container struct {
	mu        sync.RWMutex
	values    map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{
		values:    make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
}

func (c *container) Get(name string) any {
	c.mu.RLock()
	v, ok := c.values[name]
	factory := c.factories[name]
	c.mu.RUnlock()

	if ok {
		return v
	}
	if factory == nil {
		panic(fmt.Sprintf("di: no service registered for %q", name))
	}

	// Build outside the lock, then memoize. A concurrent first Get may
	// build twice; the first stored instance wins.
	built := factory(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.values[name]; ok {
		return existing
	}
	c.values[name] = built
	return built
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	name string
}

// NewToken creates a token with a globally unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registration name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory under the token's name.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service from the registry.
func GetToken[T any](r ServiceRegistry, token Token[T]) T {
	v := r.Get(token.name)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has type %T, not the requested type", token.name, v))
	}
	return typed
}
