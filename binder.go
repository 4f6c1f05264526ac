package webvalve

import "net/http"

// Route is what an interception layer needs to redirect calls of an enabled service to its fake.
type Route struct {
	ClassName  string
	FullURL    string
	PathPrefix string
	// RequestMatcher is the opaque value given with WithRequestMatcher, or nil.
	RequestMatcher any
	Handler        http.Handler
}

// Binder installs interception rules. Registry calls Sync with the complete set of routes
// of enabled services every time registrations or the mode change.
//
// Sync must be idempotent: calling it repeatedly with the same routes has the same effect as calling it once.
// Services without a route must not be intercepted.
type Binder interface {
	Sync(routes []Route) error
}

// BinderFunc is a convenience type that implements Binder interface.
type BinderFunc func(routes []Route) error

func (f BinderFunc) Sync(routes []Route) error {
	return f(routes)
}

// ComposedBinder syncs every binder in order and stops at the first error.
func ComposedBinder(binders ...Binder) Binder {
	return BinderFunc(func(routes []Route) error {
		for _, b := range binders {
			if err := b.Sync(routes); err != nil {
				return err
			}
		}
		return nil
	})
}
