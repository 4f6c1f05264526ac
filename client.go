package webvalve

import (
	"net/http"
)

type clientConfig struct {
	parentHTTPClient *http.Client
	eventLogger      EventLogger
	urlSanitizer     URLSanitizer
}

// ClientOption can be used to customize Client behaviour. See With* functions to find customization options.
type ClientOption func(*clientConfig)

// WithParentHTTPClient allows user to set the custom parent http client.
// Client will use passed client's transport to make actual HTTP calls to services that aren't faked.
func WithParentHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) {
		cfg.parentHTTPClient = c
	}
}

// WithEventLogger sets the receiver of events about captured requests.
// By default, events are logged with logrus on debug level.
func WithEventLogger(l EventLogger) ClientOption {
	return func(cfg *clientConfig) {
		cfg.eventLogger = l
	}
}

// WithURLSanitizer configures how URLs of captured requests are sanitized before they are logged.
// You may consider using URLSanitizerFunc, ComposedURLSanitizer, NoopURLSanitizer,
// QueryParamsSanitizer, CredentialsSanitizer helper functions to compose sanitization rules.
func WithURLSanitizer(s URLSanitizer) ClientOption {
	return func(cfg *clientConfig) {
		cfg.urlSanitizer = s
	}
}

// Client returns a new http.Client that routes requests of enabled services in reg to their fakes.
// It is the main entrypoint for using the webvalve's interception capabilities.
//
// The returned client's Transport becomes reg's binder: it follows every registration, Reset and SetMode.
// Call reg.Sync after changing the environment to make interception follow new toggles.
// The parent client is copied, so it is not modified.
func Client(reg *Registry, opts ...ClientOption) (*http.Client, error) {
	cfg := clientConfigWithDefaults(opts)
	transport := NewTransport(cfg.parentHTTPClient.Transport, cfg.eventLogger, cfg.urlSanitizer)
	if err := reg.SetBinder(transport); err != nil {
		return nil, err
	}
	c := *cfg.parentHTTPClient
	c.Transport = transport
	return &c, nil
}

func clientConfigWithDefaults(opts []ClientOption) *clientConfig {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.parentHTTPClient == nil {
		cfg.parentHTTPClient = &http.Client{}
	}
	if cfg.urlSanitizer == nil {
		cfg.urlSanitizer = DefaultURLSanitizer()
	}
	return cfg
}

// TestClient is Client for tests: it fails the test when the client can't be set up
// and logs the services that are faked.
func TestClient(t T, reg *Registry, opts ...ClientOption) *http.Client {
	t.Helper()
	c, err := Client(reg, opts...)
	if err != nil {
		t.Fatalf("webvalve: failed to set up client: %s", err.Error())
		return nil
	}
	for _, r := range c.Transport.(*Transport).Routes() {
		t.Logf("webvalve: faking %s at %s", r.ClassName, r.FullURL)
	}
	return c
}

// T is a subset of testing.T interface that is used by webvalve's functions.
// custom T's implementation can be used to e.g. make logs silent, stop failing on errors and others.
type T interface {
	Helper()
	Logf(format string, args ...any)
	Fatalf(format string, args ...any)
}
