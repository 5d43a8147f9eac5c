package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	var v struct {
		Timeout Duration `yaml:"timeout"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("timeout: 1m30s"), &v))
	assert.Equal(t, 90*time.Second, v.Timeout.Duration())

	require.NoError(t, yaml.Unmarshal([]byte(`timeout: ""`), &v))
	assert.Equal(t, time.Duration(0), v.Timeout.Duration())

	assert.Error(t, yaml.Unmarshal([]byte("timeout: later"), &v))

	out, err := yaml.Marshal(struct {
		Timeout Duration `yaml:"timeout"`
	}{Duration(5 * time.Second)})
	require.NoError(t, err)
	assert.Equal(t, "timeout: 5s\n", string(out))
}

func TestDuration_JSON(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"250ms"`), &d))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, time.Duration(0), d.Duration())

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}
