package webvalve

import (
	"os"
	"sync"
)

// Env gives access to environment variables.
// Implementations must not cache: every Lookup reflects the current state,
// because tests change the environment between calls and expect immediate effect.
type Env interface {
	Lookup(name string) (value string, ok bool)
}

// EnvFunc is a convenience type that implements Env interface.
type EnvFunc func(name string) (string, bool)

func (f EnvFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// OSEnv reads the process environment.
type OSEnv struct{}

func (OSEnv) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapEnv is an in-memory Env that can be mutated between lookups.
// Use NewMapEnv to initialize it. It is safe for concurrent use.
type MapEnv struct {
	mx   sync.RWMutex
	vars map[string]string
}

// NewMapEnv returns a MapEnv seeded with a copy of vars.
func NewMapEnv(vars map[string]string) *MapEnv {
	e := &MapEnv{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		e.vars[k] = v
	}
	return e
}

func (e *MapEnv) Lookup(name string) (string, bool) {
	e.mx.RLock()
	defer e.mx.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

func (e *MapEnv) Set(name, value string) {
	e.mx.Lock()
	defer e.mx.Unlock()
	if e.vars == nil {
		e.vars = map[string]string{}
	}
	e.vars[name] = value
}

func (e *MapEnv) Unset(name string) {
	e.mx.Lock()
	defer e.mx.Unlock()
	delete(e.vars, name)
}

// With sets vars for the duration of fn and restores the previous values afterwards.
func (e *MapEnv) With(vars map[string]string, fn func()) {
	type previous struct {
		value string
		ok    bool
	}
	saved := make(map[string]previous, len(vars))
	for k, v := range vars {
		old, ok := e.Lookup(k)
		saved[k] = previous{value: old, ok: ok}
		e.Set(k, v)
	}
	defer func() {
		for k, p := range saved {
			if p.ok {
				e.Set(k, p.value)
			} else {
				e.Unset(k)
			}
		}
	}()
	fn()
}

func lookupNonEmpty(env Env, name string) (string, bool) {
	v, ok := env.Lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
