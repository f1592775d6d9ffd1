package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
env: test
log_level: debug
intake:
  admin_key: s3cret
  sinks: [csv]
scoring:
  policy: B
harvester:
  targets:
    - url: https://www.psgacademyturkey.com/
      region: Turkey
hunter:
  queries:
    - '"football boarding school" "turkey" "scholarship"'
  pacing:
    min_delay: 1s
    max_delay: 2s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_FileValuesAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "s3cret", cfg.IntakeSettings.AdminKey)
	assert.Equal(t, []string{"csv"}, cfg.IntakeSettings.Sinks)
	assert.Equal(t, 10, cfg.IntakeSettings.MinAge)
	assert.Equal(t, 35, cfg.IntakeSettings.MaxAge)
	assert.Equal(t, "B", cfg.ScoringSettings.Policy)

	require.Len(t, cfg.HarvesterSettings.Targets, 1)
	assert.Equal(t, "Turkey", cfg.HarvesterSettings.Targets[0].Region)
	assert.Equal(t, 3, cfg.HarvesterSettings.EmailLimit)
	assert.Equal(t, 15*time.Second, cfg.HarvesterSettings.RequestTimeout)

	assert.Equal(t, time.Second, cfg.HunterSettings.Pacing.MinDelay)
	assert.Equal(t, 2*time.Second, cfg.HunterSettings.Pacing.MaxDelay)
	assert.Equal(t, 10*time.Second, cfg.HunterSettings.Pacing.Backoff)
	assert.Equal(t, 2, cfg.HunterSettings.ContactLimit)
	assert.Len(t, cfg.HunterSettings.Keywords, 7)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("INTAKE_ADMIN_KEY", "from-env")

	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.IntakeSettings.AdminKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoad_OptionalSectionsHaveDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfig))
	require.NoError(t, err)

	require.NotNil(t, cfg.KafkaSettings)
	assert.False(t, cfg.KafkaSettings.Enabled)
	assert.Equal(t, "leads", cfg.KafkaSettings.Producer.WriteTopicName)
	require.NotNil(t, cfg.TelemetrySettings)
	assert.False(t, cfg.TelemetrySettings.Enabled)
	assert.Equal(t, "duckduckgo", cfg.SearchSettings.Provider)
	assert.Equal(t, "5432", cfg.DbSettings.Port)
	assert.Equal(t, "xlsx", cfg.ExportSettings.Format)
	assert.Equal(t, "Chasse_Offres_{date}", cfg.ExportSettings.HuntPattern)
}
