package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SEED_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, ActionStoreMemory, cfg.ActionStore)
	assert.Equal(t, DeletePolicyOrphan, cfg.DeletePolicy)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.ResetOnStartup())
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	t.Setenv("DELETE_POLICY", "cascade")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("SOME_FLAG", "true")
	b, err := GetEnvBool("SOME_FLAG", false)
	require.NoError(t, err)
	assert.True(t, b)

	t.Setenv("SOME_FLAG", "nope")
	_, err = GetEnvBool("SOME_FLAG", false)
	assert.ErrorIs(t, err, ErrInvalid)

	b, err = GetEnvBool("UNSET_FLAG_FOR_TEST", true)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestSeedFileForcesReset(t *testing.T) {
	cfg := &Config{SeedFile: "fixtures/seed.json"}
	assert.True(t, cfg.ResetOnStartup())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b"))
	assert.Nil(t, splitList(""))
}
