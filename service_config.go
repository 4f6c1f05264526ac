package webvalve

import (
	"net/http"
	"net/url"
	"strings"
)

// ServiceConfig is the configuration of a single registered service.
// It is read-only after construction, but every query re-reads the environment,
// so results change as soon as the environment does.
type ServiceConfig struct {
	className      string
	serviceName    string
	explicitURL    string
	hasExplicitURL bool
	requestMatcher any
	handler        http.Handler
	env            Env
	namingScheme   NamingScheme
	registerHint   string
}

// ConfigOption can be used to customize ServiceConfig. See With* functions to find customization options.
type ConfigOption func(*ServiceConfig)

// WithURL sets the explicit URL of the service. It always wins over <NAME>_API_URL and is used verbatim.
func WithURL(u string) ConfigOption {
	return func(c *ServiceConfig) {
		c.explicitURL = u
		c.hasExplicitURL = true
	}
}

// WithRequestMatcher attaches a matcher that selects which requests are served by the fake.
// The value is opaque to the configuration; Transport understands values implementing RequestMatcher.
func WithRequestMatcher(m any) ConfigOption {
	return func(c *ServiceConfig) {
		c.requestMatcher = m
	}
}

// WithHandler sets the fake handler that serves intercepted requests.
func WithHandler(h http.Handler) ConfigOption {
	return func(c *ServiceConfig) {
		c.handler = h
	}
}

// WithServiceName overrides the service name derived from the class name.
func WithServiceName(name string) ConfigOption {
	return func(c *ServiceConfig) {
		c.serviceName = name
	}
}

// WithServiceNamingScheme sets the scheme used to derive the service name. Ignored when WithServiceName is used.
func WithServiceNamingScheme(n NamingScheme) ConfigOption {
	return func(c *ServiceConfig) {
		c.namingScheme = n
	}
}

// WithConfigEnv sets the environment the configuration reads from. Defaults to OSEnv.
func WithConfigEnv(env Env) ConfigOption {
	return func(c *ServiceConfig) {
		c.env = env
	}
}

// WithRegisterHint sets the registration call quoted in ConfigurationError messages.
func WithRegisterHint(hint string) ConfigOption {
	return func(c *ServiceConfig) {
		c.registerHint = hint
	}
}

// NewServiceConfig returns the configuration of the service identified by className.
// It returns *ValidationError when className, or the service name derived from it, is empty.
func NewServiceConfig(className string, opts ...ConfigOption) (*ServiceConfig, error) {
	c := &ServiceConfig{
		className: strings.TrimSpace(className),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.className == "" {
		return nil, &ValidationError{ClassName: className, Reason: "service class name is empty"}
	}
	if c.env == nil {
		c.env = OSEnv{}
	}
	if c.namingScheme == nil {
		c.namingScheme = DefaultNamingScheme()
	}
	if c.registerHint == "" {
		c.registerHint = DefaultRegisterHint
	}
	if c.serviceName == "" {
		c.serviceName = c.namingScheme.ServiceName(c.className)
	}
	c.serviceName = stripNonIdentifier(c.serviceName)
	if c.serviceName == "" {
		return nil, &ValidationError{ClassName: className, Reason: "service name derived from class name is empty"}
	}
	return c, nil
}

func (c *ServiceConfig) ServiceClassName() string {
	return c.className
}

func (c *ServiceConfig) ServiceName() string {
	return c.serviceName
}

// EnabledVar is the name of the variable holding the explicit toggle, e.g. DUMMY_ENABLED.
func (c *ServiceConfig) EnabledVar() string {
	return EnvVarName(c.serviceName, "ENABLED")
}

// URLVar is the name of the variable holding the service URL, e.g. DUMMY_API_URL.
func (c *ServiceConfig) URLVar() string {
	return EnvVarName(c.serviceName, "API_URL")
}

// Toggle reads the explicit per-service override.
func (c *ServiceConfig) Toggle() Toggle {
	raw, ok := c.env.Lookup(c.EnabledVar())
	if !ok {
		return ToggleUnset
	}
	return ParseToggle(raw)
}

func (c *ServiceConfig) ExplicitlyEnabled() bool {
	return c.Toggle() == ToggleEnabled
}

func (c *ServiceConfig) ExplicitlyDisabled() bool {
	return c.Toggle() == ToggleDisabled
}

// ServiceURL returns the URL read from <NAME>_API_URL with embedded credentials removed.
func (c *ServiceConfig) ServiceURL() (string, error) {
	raw, ok := lookupNonEmpty(c.env, c.URLVar())
	if !ok {
		return "", missingURLError(c.className, c.URLVar(), c.registerHint)
	}
	u, err := c.parseURL(raw)
	if err != nil {
		return "", err
	}
	return withoutCredentials(u).String(), nil
}

// FullURL returns the explicit URL when present, and ServiceURL otherwise.
func (c *ServiceConfig) FullURL() (string, error) {
	if c.hasExplicitURL && c.explicitURL != "" {
		return c.explicitURL, nil
	}
	return c.ServiceURL()
}

// PathPrefix returns the path of FullURL without its trailing slash, or "/" when the URL has no path.
func (c *ServiceConfig) PathPrefix() (string, error) {
	full, err := c.FullURL()
	if err != nil {
		return "", err
	}
	u, err := c.parseURL(full)
	if err != nil {
		return "", err
	}
	return pathPrefix(u.Path), nil
}

// RequestMatcher returns the matcher given with WithRequestMatcher, or nil.
func (c *ServiceConfig) RequestMatcher() any {
	return c.requestMatcher
}

// Handler returns the fake handler given with WithHandler, or nil.
func (c *ServiceConfig) Handler() http.Handler {
	return c.handler
}

func (c *ServiceConfig) parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, invalidURLError(c.className, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, invalidURLError(c.className, raw, errNotAbsoluteURL)
	}
	return u, nil
}

func pathPrefix(p string) string {
	if strings.Trim(p, "/") == "" {
		return "/"
	}
	p = "/" + strings.TrimLeft(p, "/")
	return strings.TrimSuffix(p, "/")
}
