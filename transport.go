package webvalve

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Transport is an http.RoundTripper that serves requests of enabled services with their fakes
// and sends every other request to the parent transport.
// It implements Binder, so it can be kept in sync by a Registry. Use Client to wire both.
type Transport struct {
	parent      http.RoundTripper
	eventLogger EventLogger
	sanitizer   URLSanitizer
	now         func() time.Time

	routesMx sync.RWMutex
	routes   []compiledRoute
}

type compiledRoute struct {
	Route
	scheme  string
	host    string
	matcher RequestMatcher
}

// NewTransport returns a Transport with no routes. parent defaults to http.DefaultTransport,
// eventLogger to a LogrusEventLogger and sanitizer to DefaultURLSanitizer.
func NewTransport(parent http.RoundTripper, eventLogger EventLogger, sanitizer URLSanitizer) *Transport {
	if parent == nil {
		parent = http.DefaultTransport
	}
	if eventLogger == nil {
		eventLogger = NewLogrusEventLogger(nil)
	}
	if sanitizer == nil {
		sanitizer = DefaultURLSanitizer()
	}
	return &Transport{
		parent:      parent,
		eventLogger: eventLogger,
		sanitizer:   sanitizer,
		now:         time.Now,
	}
}

// Sync replaces the route table. Routes are compiled before anything is replaced,
// so on error the previous table stays in place.
func (t *Transport) Sync(routes []Route) error {
	compiled := make([]compiledRoute, 0, len(routes))
	for _, r := range routes {
		cr, err := compileRoute(r)
		if err != nil {
			return err
		}
		compiled = append(compiled, cr)
	}
	t.routesMx.Lock()
	t.routes = compiled
	t.routesMx.Unlock()
	return nil
}

// Routes returns the currently installed routes.
func (t *Transport) Routes() []Route {
	t.routesMx.RLock()
	defer t.routesMx.RUnlock()
	routes := make([]Route, 0, len(t.routes))
	for _, r := range t.routes {
		routes = append(routes, r.Route)
	}
	return routes
}

func compileRoute(r Route) (compiledRoute, error) {
	u, err := url.Parse(r.FullURL)
	if err != nil {
		return compiledRoute{}, fmt.Errorf("webvalve: route of %s: %w", r.ClassName, err)
	}
	matcher, err := requestMatcherOf(r.RequestMatcher)
	if err != nil {
		return compiledRoute{}, fmt.Errorf("webvalve: route of %s: %w", r.ClassName, err)
	}
	if r.PathPrefix == "" {
		r.PathPrefix = pathPrefix(u.Path)
	}
	return compiledRoute{
		Route:   r,
		scheme:  strings.ToLower(u.Scheme),
		host:    canonicalHost(u.Scheme, u.Host),
		matcher: matcher,
	}, nil
}

func requestMatcherOf(m any) (RequestMatcher, error) {
	switch m := m.(type) {
	case nil:
		return nil, nil
	case RequestMatcher:
		return m, nil
	case func(RequestData) bool:
		return RequestMatcherFunc(m), nil
	case MatcherSpec:
		return MatcherFromSpec(m), nil
	case *MatcherSpec:
		if m == nil {
			return nil, nil
		}
		return MatcherFromSpec(*m), nil
	default:
		return nil, fmt.Errorf("unsupported request matcher type %T", m)
	}
}

func canonicalHost(scheme, host string) string {
	host = strings.ToLower(host)
	h, port, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		return h
	}
	return host
}

func (r compiledRoute) matchesLocation(u *url.URL) bool {
	if u == nil || strings.ToLower(u.Scheme) != r.scheme || canonicalHost(u.Scheme, u.Host) != r.host {
		return false
	}
	if r.PathPrefix == "/" {
		return true
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return p == r.PathPrefix || strings.HasPrefix(p, r.PathPrefix+"/")
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	route, ok, err := t.match(req)
	if err != nil {
		closeRequestBody(req)
		return nil, err
	}
	if !ok {
		return t.parent.RoundTrip(req)
	}
	start := t.now()
	resp := t.serve(route, req)
	closeRequestBody(req)
	t.eventLogger.LogRequest(RequestEvent{
		Status:   resp.StatusCode,
		Method:   requestMethod(req),
		URL:      sanitizedURLString(t.sanitizer, req.URL),
		Host:     req.URL.Host,
		Duration: t.now().Sub(start),
	})
	return resp, nil
}

func (t *Transport) match(req *http.Request) (compiledRoute, bool, error) {
	t.routesMx.RLock()
	routes := t.routes
	t.routesMx.RUnlock()

	var (
		data     RequestData
		haveData bool
	)
	for _, r := range routes {
		if !r.matchesLocation(req.URL) {
			continue
		}
		if r.matcher == nil {
			return r, true, nil
		}
		if !haveData {
			var err error
			data, err = requestDataFromRequest(req)
			if err != nil {
				return compiledRoute{}, false, fmt.Errorf("webvalve: %w", err)
			}
			haveData = true
		}
		if r.matcher.MatchRequest(data) {
			return r, true, nil
		}
	}
	return compiledRoute{}, false, nil
}

func (t *Transport) serve(route compiledRoute, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	if route.Handler == nil {
		http.Error(rec, fmt.Sprintf("webvalve: no fake handler registered for %s", route.ClassName), http.StatusNotImplemented)
	} else {
		route.Handler.ServeHTTP(rec, fakeServiceRequest(route.PathPrefix, req))
	}
	resp := rec.Result()
	resp.Request = req
	return resp
}

// fakeServiceRequest returns a server-side copy of req with the path prefix of the service removed,
// so fakes define their routes relative to the service URL.
func fakeServiceRequest(prefix string, req *http.Request) *http.Request {
	in := req.Clone(req.Context())
	in.URL = cloneURL(req.URL)
	if prefix != "/" {
		p := strings.TrimPrefix(in.URL.Path, prefix)
		if p == "" {
			p = "/"
		}
		in.URL.Path = p
		in.URL.RawPath = ""
	}
	in.RequestURI = in.URL.RequestURI()
	if in.Host == "" {
		in.Host = req.URL.Host
	}
	if in.Body == nil {
		in.Body = http.NoBody
	}
	in.RemoteAddr = "127.0.0.1:0"
	return in
}

// closeRequestBody closes the body of a request that doesn't reach the parent transport,
// as http.RoundTripper requires.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

func requestMethod(req *http.Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(req.Method)
}

var _ Binder = (*Transport)(nil)
