package webvalve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceNameFromClass(t *testing.T) {
	testCases := []struct {
		className string
		want      string
	}{
		{className: "FakeDummy", want: "dummy"},
		{className: "FakeTwitterAPI", want: "twitter_api"},
		{className: "FakeAPIClient", want: "api_client"},
		{className: "Payments::FakeStripe", want: "stripe"},
		{className: "payments.FakeStripe", want: "stripe"},
		{className: "github.com/acme/fakes/FakeGitHub", want: "git_hub"},
		{className: "FakeS3", want: "s3"},
		{className: "Geocoder", want: "geocoder"},
		{className: "fake-maps service", want: "maps_service"},
		{className: "  FakeDummy  ", want: "dummy"},
		{className: "FakeCafé", want: "caf"},
		{className: "Fake", want: ""},
		{className: "", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.className, func(t *testing.T) {
			assert.Equal(t, tc.want, ServiceNameFromClass(tc.className))
		})
	}
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "DUMMY_API_URL", EnvVarName("dummy", "API_URL"))
	assert.Equal(t, "TWITTER_API_ENABLED", EnvVarName("twitter_api", "ENABLED"))
	assert.Equal(t, "MAPS_ENABLED", EnvVarName("ma-ps", "ENABLED"))
}

func TestNamingSchemeFunc(t *testing.T) {
	scheme := NamingSchemeFunc(func(className string) string {
		return "static"
	})
	sc, err := NewServiceConfig("FakeDummy", WithServiceNamingScheme(scheme), WithConfigEnv(NewMapEnv(nil)))
	assert.NoError(t, err)
	assert.Equal(t, "static", sc.ServiceName())
	assert.Equal(t, "STATIC_ENABLED", sc.EnabledVar())
}
