package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/areknoster/webvalve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registrationFile = `
mode: auto
services:
  - class: FakeDummy
    url: http://dummy.dev/api
    match:
      method: [GET]
  - class: FakeStripe
`

func writeRegistrationFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webvalve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registrationFile), 0o600))
	return path
}

func run(t *testing.T, env webvalve.Env, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd(webvalve.NewMapEnv(nil))
	for _, name := range []string{"status", "routes", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, webvalve.NewMapEnv(nil), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestStatusCmd(t *testing.T) {
	path := writeRegistrationFile(t)
	env := webvalve.NewMapEnv(map[string]string{
		"WEBVALVE_ENV":   "development",
		"STRIPE_ENABLED": "0",
	})

	out, errOut, err := run(t, env, "status", "-f", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "mode: auto", strings.TrimSpace(lines[0]))
	assert.Equal(t, []string{"CLASS", "SERVICE", "TOGGLE", "FAKED", "URL", "PREFIX"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"FakeDummy", "dummy", "unset", "true", "http://dummy.dev/api", "/api"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"FakeStripe", "stripe", "disabled", "false", "-", "-"}, strings.Fields(lines[3]))
	assert.Empty(t, errOut, "URL errors of services that are not faked are not reported")
}

func TestStatusCmd_ReportsMissingURL(t *testing.T) {
	path := writeRegistrationFile(t)
	env := webvalve.NewMapEnv(nil)

	_, errOut, err := run(t, env, "status", "-f", path, "--mode", "enabled")
	require.NoError(t, err)
	assert.Contains(t, errOut, `There is no URL defined for FakeStripe.`)
	assert.Contains(t, errOut, `"STRIPE_API_URL"`)
	assert.NotContains(t, errOut, "\n\n")
}

func TestStatusCmd_ResolvesOnce(t *testing.T) {
	path := writeRegistrationFile(t)
	urlLookups := 0
	// STRIPE_API_URL disappears after the first resolution of FakeStripe.
	env := webvalve.EnvFunc(func(name string) (string, bool) {
		if name != "STRIPE_API_URL" {
			return "", false
		}
		urlLookups++
		if urlLookups > 2 {
			return "", false
		}
		return "https://stripe.dev", true
	})

	out, errOut, err := run(t, env, "status", "-f", path, "--mode", "enabled")
	require.NoError(t, err)
	assert.Contains(t, out, "https://stripe.dev")
	assert.Empty(t, errOut, "errors are reported from the same resolution as the table")
}

func TestRoutesCmd(t *testing.T) {
	path := writeRegistrationFile(t)
	env := webvalve.NewMapEnv(map[string]string{"STRIPE_API_URL": "https://sk:x@stripe.dev"})

	out, _, err := run(t, env, "routes", "-f", path, "--mode", "enabled")
	require.NoError(t, err)
	assert.Equal(t,
		"FakeDummy http://dummy.dev/api prefix=/api match={Method:[GET] Path: Query:map[] Headers:map[] BodyContains:}\n"+
			"FakeStripe https://stripe.dev prefix=/ match=any\n",
		out)
}

func TestRoutesCmd_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"routes", "-f", filepath.Join(t.TempDir(), "nope.yaml")}},
		{name: "invalid mode", args: []string{"routes", "-f", writeRegistrationFile(t), "--mode", "sometimes"}},
		{name: "unresolvable url", args: []string{"routes", "-f", writeRegistrationFile(t), "--mode", "enabled"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := run(t, webvalve.NewMapEnv(nil), tc.args...)
			assert.Error(t, err)
		})
	}
}
