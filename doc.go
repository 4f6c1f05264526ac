// Package webvalve switches outbound HTTP calls between real services and local fakes.
// It is designed to be used in integration tests and development environments of components,
// that rely on go standard library http.Client to integrate with external services.
//
// Each external service is registered once, usually at startup, with Register.
// Whether a service is faked is decided per call from the environment:
// <NAME>_ENABLED overrides the registry-wide Mode, and <NAME>_API_URL provides the base URL
// when it was not given explicitly.
//
// Quickstart: register the services, inject the client returned by Client to a component that
// makes HTTP requests, and toggle the fakes with environment variables.
//
// See examples directory for real-world samples of its use.
package webvalve
