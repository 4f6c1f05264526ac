package webvalve

import (
	"bytes"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// RequestMatcher selects which requests sent to a service's URL are served by its fake.
// Pass it to WithRequestMatcher. Requests that don't match are sent to the real service.
type RequestMatcher interface {
	MatchRequest(RequestData) bool
}

// RequestMatcherFunc is a convenience type that implements RequestMatcher interface.
type RequestMatcherFunc func(RequestData) bool

func (f RequestMatcherFunc) MatchRequest(r RequestData) bool {
	return f(r)
}

// ComposedRequestMatcher matches when every matcher matches. It matches everything when empty.
func ComposedRequestMatcher(matchers ...RequestMatcher) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		for _, m := range matchers {
			if !m.MatchRequest(r) {
				return false
			}
		}
		return true
	})
}

// AnyRequestMatcher matches when at least one matcher matches.
func AnyRequestMatcher(matchers ...RequestMatcher) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		for _, m := range matchers {
			if m.MatchRequest(r) {
				return true
			}
		}
		return false
	})
}

// MethodMatcher matches requests with one of given methods. Comparison is case-insensitive.
func MethodMatcher(methods ...string) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		for _, m := range methods {
			if strings.EqualFold(m, r.Method) {
				return true
			}
		}
		return false
	})
}

// PathMatcher matches request paths against a path.Match pattern, e.g. "/users/*".
func PathMatcher(pattern string) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		if r.URL == nil {
			return false
		}
		ok, err := path.Match(pattern, r.URL.Path)
		return err == nil && ok
	})
}

// QueryParamsMatcher matches requests whose query contains all given params with the same values.
// Extra params in the request are allowed.
func QueryParamsMatcher(params url.Values) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		if r.URL == nil {
			return len(params) == 0
		}
		return valuesSubset(params, r.URL.Query())
	})
}

// HeadersMatcher matches requests that carry all given headers with the same values.
func HeadersMatcher(headers http.Header) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		got := r.Header
		if got == nil {
			got = http.Header{}
		}
		for name, want := range headers {
			if !stringsSubset(want, got.Values(name)) {
				return false
			}
		}
		return true
	})
}

// BodyContainsMatcher matches requests whose body contains given fragment.
func BodyContainsMatcher(fragment string) RequestMatcher {
	return RequestMatcherFunc(func(r RequestData) bool {
		return bytes.Contains(r.BodyBytes, []byte(fragment))
	})
}

// MatcherSpec is a declarative form of a RequestMatcher, used in registration files.
// Empty fields match everything.
type MatcherSpec struct {
	Method       []string          `yaml:"method"`
	Path         string            `yaml:"path"`
	Query        map[string]string `yaml:"query"`
	Headers      map[string]string `yaml:"headers"`
	BodyContains string            `yaml:"body_contains"`
}

// IsZero reports whether the spec matches every request.
func (s MatcherSpec) IsZero() bool {
	return len(s.Method) == 0 && s.Path == "" && len(s.Query) == 0 && len(s.Headers) == 0 && s.BodyContains == ""
}

// MatcherFromSpec builds a RequestMatcher from its declarative form.
func MatcherFromSpec(s MatcherSpec) RequestMatcher {
	var matchers []RequestMatcher
	if len(s.Method) > 0 {
		matchers = append(matchers, MethodMatcher(s.Method...))
	}
	if s.Path != "" {
		matchers = append(matchers, PathMatcher(s.Path))
	}
	if len(s.Query) > 0 {
		q := url.Values{}
		for k, v := range s.Query {
			q.Set(k, v)
		}
		matchers = append(matchers, QueryParamsMatcher(q))
	}
	if len(s.Headers) > 0 {
		h := http.Header{}
		for k, v := range s.Headers {
			h.Set(k, v)
		}
		matchers = append(matchers, HeadersMatcher(h))
	}
	if s.BodyContains != "" {
		matchers = append(matchers, BodyContainsMatcher(s.BodyContains))
	}
	return ComposedRequestMatcher(matchers...)
}

func valuesSubset(want, got url.Values) bool {
	for k, vals := range want {
		if !stringsSubset(vals, got[k]) {
			return false
		}
	}
	return true
}

func stringsSubset(want, got []string) bool {
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
