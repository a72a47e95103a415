package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: admission-portal
  environment: test
workers:
  notify-applicant:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 30000, cfg.Wizard.AutosaveInterval)
	assert.Equal(t, 300, cfg.Wizard.EssayMinWords)
	assert.Equal(t, 500, cfg.Wizard.EssayMaxWords)
	assert.Equal(t, 16, cfg.Wizard.MinimumAge)
	assert.Equal(t, int64(5*1024*1024), cfg.Wizard.MaxUploadBytes)
	assert.Equal(t, "MUST-APP", cfg.Wizard.ApplicationIDPrefix)
	assert.Equal(t, "admission-review", cfg.Wizard.ReviewProcessID)
	assert.Contains(t, cfg.Wizard.ImageContentTypes, "image/png")
	assert.Contains(t, cfg.Wizard.DocumentTypes, "application/pdf")

	assert.Equal(t, BackendMemory, cfg.Storage.Drafts)
	assert.Equal(t, BackendMemory, cfg.Storage.Submissions)
	assert.Equal(t, ":8080", cfg.Server.HealthAddress)

	w := GetWorkerConfig(cfg, "notify-applicant")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_RedisDraftsRequireAddress(t *testing.T) {
	path := writeConfig(t, `
storage:
  drafts: redis
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.redis.address is required")
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("DATABASE_REDIS_ADDRESS", "localhost:6380")
	path := writeConfig(t, `
storage:
  drafts: redis
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", cfg.Database.Redis.Address)
	assert.True(t, cfg.UsesRedis())
	assert.False(t, cfg.UsesPostgres())
}

func TestLoadFromFile_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("PORTAL_TEST_SENDER", "admissions@must.ac.mw")
	path := writeConfig(t, `
integrations:
  aws:
    region: af-south-1
    ses:
      enabled: true
      from_email: ${PORTAL_TEST_SENDER}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "admissions@must.ac.mw", cfg.Integrations.AWS.SES.FromEmail)
}

func TestLoadFromFile_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "essay bounds inverted",
			body: `
wizard:
  essay_min_words: 800
  essay_max_words: 400
`,
			wantErr: "essay_min_words",
		},
		{
			name: "unknown drafts backend",
			body: `
storage:
  drafts: firestore
`,
			wantErr: "storage.drafts",
		},
		{
			name: "postgres without host",
			body: `
storage:
  submissions: postgres
database:
  postgres:
    database: admissions
    user: portal
`,
			wantErr: "database.postgres.host is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
