package webvalve

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestMatchers(t *testing.T) {
	testCases := []struct {
		name    string
		matcher RequestMatcher
		req     RequestData
		want    bool
	}{
		{
			name:    "MethodMatcher_Match",
			matcher: MethodMatcher(http.MethodGet, http.MethodHead),
			req:     RequestData{Method: "get"},
			want:    true,
		},
		{
			name:    "MethodMatcher_Mismatch",
			matcher: MethodMatcher(http.MethodGet),
			req:     RequestData{Method: http.MethodPost},
			want:    false,
		},
		{
			name:    "PathMatcher_Match",
			matcher: PathMatcher("/users/*"),
			req:     RequestData{URL: &url.URL{Path: "/users/42"}},
			want:    true,
		},
		{
			name:    "PathMatcher_Mismatch",
			matcher: PathMatcher("/users/*"),
			req:     RequestData{URL: &url.URL{Path: "/users/42/posts"}},
			want:    false,
		},
		{
			name:    "PathMatcher_NoURL",
			matcher: PathMatcher("/*"),
			req:     RequestData{},
			want:    false,
		},
		{
			name:    "QueryParamsMatcher_Match",
			matcher: QueryParamsMatcher(url.Values{"key1": {"value1"}}),
			req:     RequestData{URL: &url.URL{RawQuery: "key2=value2&key1=value1"}},
			want:    true,
		},
		{
			name:    "QueryParamsMatcher_Mismatch",
			matcher: QueryParamsMatcher(url.Values{"key1": {"value1"}}),
			req:     RequestData{URL: &url.URL{RawQuery: "key1=value2"}},
			want:    false,
		},
		{
			name:    "QueryParamsMatcher_Missing",
			matcher: QueryParamsMatcher(url.Values{"key1": {"value1"}}),
			req:     RequestData{URL: &url.URL{}},
			want:    false,
		},
		{
			name:    "HeadersMatcher_Match",
			matcher: HeadersMatcher(http.Header{"X-Tenant": {"acme"}}),
			req:     RequestData{Header: http.Header{"X-Tenant": {"acme"}, "Accept": {"*/*"}}},
			want:    true,
		},
		{
			name:    "HeadersMatcher_Mismatch",
			matcher: HeadersMatcher(http.Header{"X-Tenant": {"acme"}}),
			req:     RequestData{Header: http.Header{"X-Tenant": {"other"}}},
			want:    false,
		},
		{
			name:    "HeadersMatcher_NoHeaders",
			matcher: HeadersMatcher(http.Header{"X-Tenant": {"acme"}}),
			req:     RequestData{},
			want:    false,
		},
		{
			name:    "BodyContainsMatcher_Match",
			matcher: BodyContainsMatcher(`"amount":10`),
			req:     RequestData{BodyBytes: []byte(`{"amount":10,"currency":"EUR"}`)},
			want:    true,
		},
		{
			name:    "BodyContainsMatcher_Mismatch",
			matcher: BodyContainsMatcher(`"amount":10`),
			req:     RequestData{BodyBytes: []byte(`{"amount":11}`)},
			want:    false,
		},
		{
			name:    "ComposedRequestMatcher_All",
			matcher: ComposedRequestMatcher(MethodMatcher(http.MethodPost), BodyContainsMatcher("x")),
			req:     RequestData{Method: http.MethodPost, BodyBytes: []byte("x")},
			want:    true,
		},
		{
			name:    "ComposedRequestMatcher_OneFails",
			matcher: ComposedRequestMatcher(MethodMatcher(http.MethodPost), BodyContainsMatcher("x")),
			req:     RequestData{Method: http.MethodGet, BodyBytes: []byte("x")},
			want:    false,
		},
		{
			name:    "ComposedRequestMatcher_Empty",
			matcher: ComposedRequestMatcher(),
			req:     RequestData{},
			want:    true,
		},
		{
			name:    "AnyRequestMatcher_OneMatches",
			matcher: AnyRequestMatcher(MethodMatcher(http.MethodPost), MethodMatcher(http.MethodGet)),
			req:     RequestData{Method: http.MethodGet},
			want:    true,
		},
		{
			name:    "AnyRequestMatcher_Empty",
			matcher: AnyRequestMatcher(),
			req:     RequestData{},
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.matcher.MatchRequest(tc.req))
		})
	}
}

func TestMatcherFromSpec(t *testing.T) {
	spec := MatcherSpec{
		Method:       []string{"POST"},
		Path:         "/charges",
		Query:        map[string]string{"v": "2"},
		Headers:      map[string]string{"x-tenant": "acme"},
		BodyContains: "amount",
	}
	assert.False(t, spec.IsZero())
	m := MatcherFromSpec(spec)

	matching := RequestData{
		Method:    http.MethodPost,
		URL:       &url.URL{Path: "/charges", RawQuery: "v=2"},
		Header:    http.Header{"X-Tenant": {"acme"}},
		BodyBytes: []byte(`{"amount":1}`),
	}
	assert.True(t, m.MatchRequest(matching))

	wrongQuery := matching
	wrongQuery.URL = &url.URL{Path: "/charges", RawQuery: "v=1"}
	assert.False(t, m.MatchRequest(wrongQuery))

	assert.True(t, MatcherSpec{}.IsZero())
	assert.True(t, MatcherFromSpec(MatcherSpec{}).MatchRequest(RequestData{}))
}
