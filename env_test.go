package webvalve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSEnv(t *testing.T) {
	sc, err := NewServiceConfig("FakeWebvalveProbe")
	require.NoError(t, err)

	t.Setenv("WEBVALVE_PROBE_ENABLED", "1")
	assert.True(t, sc.ExplicitlyEnabled())

	t.Setenv("WEBVALVE_PROBE_ENABLED", "0")
	assert.True(t, sc.ExplicitlyDisabled(), "environment is read on every call")
}

func TestMapEnv(t *testing.T) {
	seed := map[string]string{"A": "1"}
	env := NewMapEnv(seed)
	seed["A"] = "changed"

	v, ok := env.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v, "seed is copied")

	env.Set("B", "")
	v, ok = env.Lookup("B")
	assert.True(t, ok)
	assert.Empty(t, v)

	env.Unset("A")
	_, ok = env.Lookup("A")
	assert.False(t, ok)
}

func TestMapEnv_With(t *testing.T) {
	env := NewMapEnv(map[string]string{"KEPT": "old"})

	env.With(map[string]string{"KEPT": "new", "ADDED": "x"}, func() {
		v, _ := env.Lookup("KEPT")
		assert.Equal(t, "new", v)
		v, _ = env.Lookup("ADDED")
		assert.Equal(t, "x", v)
	})

	v, _ := env.Lookup("KEPT")
	assert.Equal(t, "old", v)
	_, ok := env.Lookup("ADDED")
	assert.False(t, ok)
}

func TestZeroMapEnv(t *testing.T) {
	var env MapEnv
	env.Set("A", "1")
	v, ok := env.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestEnvFunc(t *testing.T) {
	env := EnvFunc(func(name string) (string, bool) {
		return name + "-value", name != "MISSING"
	})
	v, ok := env.Lookup("X")
	assert.True(t, ok)
	assert.Equal(t, "X-value", v)
	_, ok = env.Lookup("MISSING")
	assert.False(t, ok)
}
