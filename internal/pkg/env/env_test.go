package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"HAP_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("HAP_TEST_KEY", "from-os")

	assert.Equal(t, "from-file", GetEnv("HAP_TEST_KEY", "default"))
}

func TestGetEnvFallsBackToOSAndDefault(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("HAP_TEST_OS", "os-value")

	assert.Equal(t, "os-value", GetEnv("HAP_TEST_OS", "default"))
	assert.Equal(t, "default", GetEnv("HAP_TEST_MISSING", "default"))
}

func TestTypedHelpers(t *testing.T) {
	Env = map[string]string{
		"HAP_INT":      "42",
		"HAP_BAD_INT":  "forty",
		"HAP_BOOL":     "true",
		"HAP_DURATION": "90s",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("HAP_INT", 1))
	assert.Equal(t, 1, GetEnvInt("HAP_BAD_INT", 1))
	assert.True(t, GetEnvBool("HAP_BOOL", false))
	assert.False(t, GetEnvBool("HAP_UNSET_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnvDuration("HAP_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("HAP_UNSET_DURATION", time.Second))
}

func TestAppURLTrimsTrailingSlash(t *testing.T) {
	Env = map[string]string{"APP_URL": "http://localhost:4000/"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, "http://localhost:4000", AppURL())
}
