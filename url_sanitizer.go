package webvalve

import "net/url"

// URLSanitizer ensures, that no sensitive data is written to the logs of captured requests.
// It receives a copy of the request URL, so it is allowed to mutate it in place.
type URLSanitizer interface {
	SanitizeURL(u *url.URL) *url.URL
}

// DefaultURLSanitizer returns a URLSanitizer that removes credentials and sanitizes well-known secret query parameters.
func DefaultURLSanitizer() URLSanitizer {
	return ComposedURLSanitizer(
		CredentialsSanitizer(),
		DefaultQueryParamsSanitizer(),
	)
}

type URLSanitizerFunc func(u *url.URL) *url.URL

func (f URLSanitizerFunc) SanitizeURL(u *url.URL) *url.URL {
	return f(u)
}

func ComposedURLSanitizer(s ...URLSanitizer) URLSanitizer {
	return URLSanitizerFunc(func(u *url.URL) *url.URL {
		for _, s := range s {
			u = s.SanitizeURL(u)
		}
		return u
	})
}

type noopURLSanitizer struct{}

func (noopURLSanitizer) SanitizeURL(u *url.URL) *url.URL { return u }

// NoopURLSanitizer leaves URLs untouched.
func NoopURLSanitizer() URLSanitizer {
	return noopURLSanitizer{}
}

// CredentialsSanitizer removes the user:password part of the authority.
func CredentialsSanitizer() URLSanitizer {
	return URLSanitizerFunc(func(u *url.URL) *url.URL {
		u.User = nil
		return u
	})
}

func QueryParamsSanitizer(params ...string) URLSanitizer {
	return URLSanitizerFunc(func(u *url.URL) *url.URL {
		q := u.Query()
		changed := false
		for _, param := range params {
			if q.Has(param) {
				q.Set(param, "SANITIZED")
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
		return u
	})
}

func DefaultQueryParamsSanitizer() URLSanitizer {
	return QueryParamsSanitizer(
		"access_token",
		"api_key",
		"auth",
		"key",
		"auth_token",
		"password",
		"secret",
		"token",
		"client_secret",
		"client_id",
		"signature",
		"sig",
		"session",
	)
}

func sanitizedURLString(s URLSanitizer, u *url.URL) string {
	if u == nil {
		return ""
	}
	return s.SanitizeURL(cloneURL(u)).String()
}
