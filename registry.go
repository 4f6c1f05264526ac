package webvalve

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Mode is the registry-wide default applied to services without an explicit toggle.
type Mode int

const (
	// ModeAuto decides with the auto default, see WithAutoDefault. Default value.
	ModeAuto Mode = iota
	// ModeEnabled fakes every service that isn't explicitly disabled.
	ModeEnabled
	// ModeDisabled fakes only explicitly enabled services.
	ModeDisabled
)

func (m Mode) String() string {
	switch m {
	case ModeEnabled:
		return "enabled"
	case ModeDisabled:
		return "disabled"
	default:
		return "auto"
	}
}

// ParseMode parses "auto", "enabled" or "disabled". Empty string is "auto".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "enabled":
		return ModeEnabled, nil
	case "disabled":
		return ModeDisabled, nil
	default:
		return ModeAuto, fmt.Errorf("invalid mode %q, expected one of: auto, enabled, disabled", s)
	}
}

const (
	// ServiceEnabledDefaultVar holds a toggle token deciding ModeAuto for all services.
	ServiceEnabledDefaultVar = "WEBVALVE_SERVICE_ENABLED_DEFAULT"
	testEnvironment          = "test"
)

// EnvironmentVars are consulted in order by DefaultAutoDefault to recognize the environment.
var EnvironmentVars = []string{"WEBVALVE_ENV", "APP_ENV", "GO_ENV"}

// DefaultAutoDefault resolves ModeAuto. A recognized token in WEBVALVE_SERVICE_ENABLED_DEFAULT decides.
// Otherwise services are disabled in the "test" environment, named by the first set variable of EnvironmentVars,
// and enabled everywhere else.
func DefaultAutoDefault(env Env) bool {
	if raw, ok := env.Lookup(ServiceEnabledDefaultVar); ok {
		switch ParseToggle(raw) {
		case ToggleEnabled:
			return true
		case ToggleDisabled:
			return false
		}
	}
	for _, name := range EnvironmentVars {
		if v, ok := lookupNonEmpty(env, name); ok {
			return strings.TrimSpace(v) != testEnvironment
		}
	}
	return true
}

type registryConfig struct {
	env          Env
	mode         Mode
	binder       Binder
	logger       logrus.FieldLogger
	autoDefault  func(Env) bool
	namingScheme NamingScheme
	registerHint string
}

// RegistryOption can be used to customize Registry behaviour. See With* functions to find customization options.
type RegistryOption func(*registryConfig)

// WithEnv sets the environment read by the registry and every service registered in it. Defaults to OSEnv.
func WithEnv(env Env) RegistryOption {
	return func(c *registryConfig) {
		c.env = env
	}
}

// WithMode sets the initial mode. Defaults to ModeAuto.
func WithMode(m Mode) RegistryOption {
	return func(c *registryConfig) {
		c.mode = m
	}
}

// WithBinder sets the Binder synced after every registration and mode change.
// Without a binder, Registry only resolves configuration and URLs are not required at registration time.
func WithBinder(b Binder) RegistryOption {
	return func(c *registryConfig) {
		c.binder = b
	}
}

// WithLogger sets the logger. By default, logrus.StandardLogger is used.
func WithLogger(l logrus.FieldLogger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = l
	}
}

// WithAutoDefault replaces DefaultAutoDefault.
func WithAutoDefault(f func(Env) bool) RegistryOption {
	return func(c *registryConfig) {
		c.autoDefault = f
	}
}

// WithNamingScheme sets the NamingScheme of services registered in the registry.
func WithNamingScheme(n NamingScheme) RegistryOption {
	return func(c *registryConfig) {
		c.namingScheme = n
	}
}

// WithRegistryHint sets the registration call quoted in ConfigurationError messages of registered services.
func WithRegistryHint(hint string) RegistryOption {
	return func(c *registryConfig) {
		c.registerHint = hint
	}
}

// Registry maps service class names to their configuration.
//
// Registry is meant to be populated at startup and reset between test cases.
// Changes are serialized. The binder is synced without holding the registry lock,
// so a Binder may read the registry from its Sync method.
type Registry struct {
	cfg registryConfig

	// syncMx serializes changes together with the binder sync that follows them.
	syncMx sync.Mutex

	mx    sync.Mutex
	state registryState
}

// registryState is replaced as a whole on every change and never modified in place.
type registryState struct {
	mode    Mode
	binder  Binder
	order   []string
	entries map[string]*ServiceConfig
}

func (s registryState) all() []*ServiceConfig {
	all := make([]*ServiceConfig, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, s.entries[name])
	}
	return all
}

// with returns a copy of s with configs appended. A class name already present in s or repeated in configs
// fails with *DuplicateRegistrationError.
func (s registryState) with(configs ...*ServiceConfig) (registryState, error) {
	next := s
	next.order = append([]string(nil), s.order...)
	next.entries = make(map[string]*ServiceConfig, len(s.entries)+len(configs))
	for name, sc := range s.entries {
		next.entries[name] = sc
	}
	for _, sc := range configs {
		name := sc.ServiceClassName()
		if _, exists := next.entries[name]; exists {
			return registryState{}, &DuplicateRegistrationError{ClassName: name}
		}
		next.entries[name] = sc
		next.order = append(next.order, name)
	}
	return next, nil
}

// NewRegistry returns an empty registry. It provides sane defaults, that can be overwritten using RegistryOption arguments.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.env == nil {
		cfg.env = OSEnv{}
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}
	if cfg.autoDefault == nil {
		cfg.autoDefault = DefaultAutoDefault
	}
	if cfg.namingScheme == nil {
		cfg.namingScheme = DefaultNamingScheme()
	}
	if cfg.registerHint == "" {
		cfg.registerHint = DefaultRegisterHint
	}
	return &Registry{
		cfg: cfg,
		state: registryState{
			mode:    cfg.mode,
			binder:  cfg.binder,
			entries: map[string]*ServiceConfig{},
		},
	}
}

// Env returns the environment the registry reads from.
func (r *Registry) Env() Env {
	return r.cfg.env
}

func (r *Registry) snapshot() registryState {
	r.mx.Lock()
	defer r.mx.Unlock()
	return r.state
}

func (r *Registry) commit(s registryState) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.state = s
}

// update applies change to the current state. Routes of the new state are resolved before it is committed,
// and the previous state is restored when the binder rejects them.
func (r *Registry) update(change func(registryState) (registryState, error)) error {
	r.syncMx.Lock()
	defer r.syncMx.Unlock()

	previous := r.snapshot()
	next, err := change(previous)
	if err != nil {
		return err
	}
	if next.binder == nil {
		r.commit(next)
		return nil
	}
	routes, err := r.routesOf(next)
	if err != nil {
		return err
	}
	r.commit(next)
	if err := r.bind(next.binder, routes); err != nil {
		r.commit(previous)
		return err
	}
	return nil
}

func (r *Registry) bind(b Binder, routes []Route) error {
	if err := b.Sync(routes); err != nil {
		return fmt.Errorf("webvalve: syncing routes: %w", err)
	}
	r.cfg.logger.WithField("routes", len(routes)).Debug("webvalve: routes synced")
	return nil
}

func (r *Registry) newServiceConfig(className string, opts []ConfigOption) (*ServiceConfig, error) {
	base := []ConfigOption{
		WithConfigEnv(r.cfg.env),
		WithServiceNamingScheme(r.cfg.namingScheme),
		WithRegisterHint(r.cfg.registerHint),
	}
	return NewServiceConfig(className, append(base, opts...)...)
}

func (r *Registry) logRegistered(sc *ServiceConfig) {
	r.cfg.logger.WithFields(logrus.Fields{
		"service":      sc.ServiceClassName(),
		"service_name": sc.ServiceName(),
	}).Debug("webvalve: service registered")
}

// Register creates and stores the configuration of a service.
// It returns *ValidationError for invalid input and *DuplicateRegistrationError when className is already registered.
// When a binder is set, the binder is synced and a failure to resolve routes rolls the registration back.
func (r *Registry) Register(className string, opts ...ConfigOption) error {
	sc, err := r.newServiceConfig(className, opts)
	if err != nil {
		return err
	}
	err = r.update(func(s registryState) (registryState, error) {
		return s.with(sc)
	})
	if err != nil {
		return err
	}
	r.logRegistered(sc)
	return nil
}

// Lookup returns the configuration registered for className.
func (r *Registry) Lookup(className string) (*ServiceConfig, bool) {
	sc, ok := r.snapshot().entries[strings.TrimSpace(className)]
	return sc, ok
}

// All returns registered configurations in registration order.
func (r *Registry) All() []*ServiceConfig {
	return r.snapshot().all()
}

// Reset removes every registration and syncs the binder with no routes. Calling it on an empty registry is a no-op.
func (r *Registry) Reset() error {
	err := r.update(func(s registryState) (registryState, error) {
		s.order = nil
		s.entries = map[string]*ServiceConfig{}
		return s, nil
	})
	if err != nil {
		return err
	}
	r.cfg.logger.Debug("webvalve: registry reset")
	return nil
}

func (r *Registry) Mode() Mode {
	return r.snapshot().mode
}

// SetMode changes the registry-wide mode and syncs the binder. The previous mode is kept if the sync fails.
func (r *Registry) SetMode(m Mode) error {
	err := r.update(func(s registryState) (registryState, error) {
		s.mode = m
		return s, nil
	})
	if err != nil {
		return err
	}
	r.cfg.logger.WithField("mode", m.String()).Debug("webvalve: mode changed")
	return nil
}

// EnabledFor reports whether calls to the service are routed to its fake.
// Explicit disable wins over explicit enable, which wins over the mode. Unknown services are never enabled.
func (r *Registry) EnabledFor(className string) bool {
	s := r.snapshot()
	sc, ok := s.entries[strings.TrimSpace(className)]
	if !ok {
		return false
	}
	return r.enabledIn(s, sc)
}

func (r *Registry) enabledIn(s registryState, sc *ServiceConfig) bool {
	switch sc.Toggle() {
	case ToggleDisabled:
		return false
	case ToggleEnabled:
		return true
	}
	switch s.mode {
	case ModeEnabled:
		return true
	case ModeDisabled:
		return false
	default:
		return r.cfg.autoDefault(r.cfg.env)
	}
}

// Routes returns a Route for every enabled service, in registration order.
// It fails with *ConfigurationError when the URL of any enabled service can't be resolved.
func (r *Registry) Routes() ([]Route, error) {
	return r.routesOf(r.snapshot())
}

func (r *Registry) routesOf(s registryState) ([]Route, error) {
	routes := make([]Route, 0, len(s.order))
	for _, sc := range s.all() {
		if !r.enabledIn(s, sc) {
			continue
		}
		fullURL, err := sc.FullURL()
		if err != nil {
			return nil, err
		}
		prefix, err := sc.PathPrefix()
		if err != nil {
			return nil, err
		}
		routes = append(routes, Route{
			ClassName:      sc.ServiceClassName(),
			FullURL:        fullURL,
			PathPrefix:     prefix,
			RequestMatcher: sc.RequestMatcher(),
			Handler:        sc.Handler(),
		})
	}
	return routes, nil
}

// Sync resolves routes and passes them to the binder. Call it after changing the environment,
// e.g. in test setup, so that interception follows the new toggles.
func (r *Registry) Sync() error {
	r.syncMx.Lock()
	defer r.syncMx.Unlock()
	s := r.snapshot()
	if s.binder == nil {
		return nil
	}
	routes, err := r.routesOf(s)
	if err != nil {
		return err
	}
	return r.bind(s.binder, routes)
}

// SetBinder replaces the binder and syncs it. The previous binder is kept if the sync fails.
func (r *Registry) SetBinder(b Binder) error {
	return r.update(func(s registryState) (registryState, error) {
		s.binder = b
		return s, nil
	})
}

// ServiceStatus describes the resolved state of a registered service.
type ServiceStatus struct {
	ClassName   string
	ServiceName string
	Toggle      Toggle
	Enabled     bool
	FullURL     string
	PathPrefix  string
	// Err is set when the URL can't be resolved.
	Err error
}

// Statuses resolves every registered service, in registration order. URL errors are reported per service.
func (r *Registry) Statuses() []ServiceStatus {
	s := r.snapshot()
	statuses := make([]ServiceStatus, 0, len(s.order))
	for _, sc := range s.all() {
		st := ServiceStatus{
			ClassName:   sc.ServiceClassName(),
			ServiceName: sc.ServiceName(),
			Toggle:      sc.Toggle(),
			Enabled:     r.enabledIn(s, sc),
		}
		st.FullURL, st.Err = sc.FullURL()
		if st.Err == nil {
			st.PathPrefix, st.Err = sc.PathPrefix()
		}
		statuses = append(statuses, st)
	}
	return statuses
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that reads the process environment.
func Default() *Registry {
	return defaultRegistry
}

// Register registers a service in the Default registry.
func Register(className string, opts ...ConfigOption) error {
	return defaultRegistry.Register(className, opts...)
}

// Reset resets the Default registry.
func Reset() error {
	return defaultRegistry.Reset()
}
