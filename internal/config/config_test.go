package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ods/mywellness2tcx/internal/distance"
	"github.com/ods/mywellness2tcx/internal/tcx"
)

func TestDefaults(t *testing.T) {
	cfg, err := load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "mywellness2tcx.db", cfg.DBPath)
	assert.Equal(t, ":8222", cfg.APIAddr)
	assert.False(t, cfg.Record)
	assert.Equal(t, "integrate", cfg.Strategy)
	assert.Equal(t, distance.DefaultTolerance, cfg.Tolerance)
	assert.Equal(t, tcx.DefaultNamespaces(), cfg.Namespaces())
	assert.Equal(t, "Biking", cfg.Sport)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MW2TCX_STRATEGY", "steps")
	t.Setenv("MW2TCX_RECORD", "true")
	t.Setenv("MW2TCX_TOLERANCE", "0.1")

	cfg, err := load(viper.New())

	require.NoError(t, err)
	assert.Equal(t, "steps", cfg.Strategy)
	assert.True(t, cfg.Record)
	assert.Equal(t, 0.1, cfg.Tolerance)
}

func TestConfigFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader("sport: Other\napi_addr: \":9000\"\n")))

	cfg, err := load(v)

	require.NoError(t, err)
	assert.Equal(t, "Other", cfg.Sport)
	assert.Equal(t, ":9000", cfg.APIAddr)
}

func TestValidate(t *testing.T) {
	t.Setenv("MW2TCX_STRATEGY", "spline")
	_, err := load(viper.New())
	assert.ErrorIs(t, err, distance.ErrUnknownStrategy)

	cfg := Config{Strategy: "integrate", Tolerance: 1.5, Namespace: "a", ExtensionNamespace: "b"}
	assert.Error(t, cfg.Validate())

	cfg.Tolerance = 0.05
	assert.NoError(t, cfg.Validate())

	cfg.ExtensionNamespace = ""
	assert.Error(t, cfg.Validate())
}
