package webvalve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the content of a registration file:
//
//	mode: auto
//	services:
//	  - class: FakeDummy
//	    url: http://dummy.dev
//	    match:
//	      method: [GET]
//	      query:
//	        version: "2"
type FileConfig struct {
	Mode     string              `yaml:"mode"`
	Services []FileServiceConfig `yaml:"services"`
}

type FileServiceConfig struct {
	Class       string      `yaml:"class"`
	ServiceName string      `yaml:"service_name"`
	URL         string      `yaml:"url"`
	Match       MatcherSpec `yaml:"match"`
}

// LoadFile reads a registration file.
func LoadFile(path string) (*FileConfig, error) {
	// #nosec G304 -- path is provided by trusted config/flag.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := ParseFileConfig(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ParseFileConfig decodes and validates a registration file.
func ParseFileConfig(b []byte) (*FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := ParseMode(cfg.Mode); err != nil {
		return nil, err
	}
	for i, s := range cfg.Services {
		if s.Class == "" {
			return nil, fmt.Errorf("services[%d]: class is required", i)
		}
	}
	return &cfg, nil
}

// Apply registers every service of cfg and sets the mode as a single change: when any service is invalid,
// duplicated or can't be resolved, the registry and its binder are left untouched.
// handlers maps class names to fake handlers; services without a handler answer 501 when intercepted.
func (r *Registry) Apply(cfg *FileConfig, handlers map[string]http.Handler) error {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	configs := make([]*ServiceConfig, 0, len(cfg.Services))
	for _, s := range cfg.Services {
		var opts []ConfigOption
		if s.URL != "" {
			opts = append(opts, WithURL(s.URL))
		}
		if s.ServiceName != "" {
			opts = append(opts, WithServiceName(s.ServiceName))
		}
		if !s.Match.IsZero() {
			opts = append(opts, WithRequestMatcher(s.Match))
		}
		if h, ok := handlers[s.Class]; ok {
			opts = append(opts, WithHandler(h))
		}
		sc, err := r.newServiceConfig(s.Class, opts)
		if err != nil {
			return err
		}
		configs = append(configs, sc)
	}

	err = r.update(func(s registryState) (registryState, error) {
		next, err := s.with(configs...)
		if err != nil {
			return registryState{}, err
		}
		next.mode = mode
		return next, nil
	})
	if err != nil {
		return err
	}
	r.cfg.logger.WithField("mode", mode.String()).Debug("webvalve: mode changed")
	for _, sc := range configs {
		r.logRegistered(sc)
	}
	return nil
}
