package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Defaults applied", func(t *testing.T) {
		cfg, err := Parse([]byte(`
api:
  base_url: https://erp.example.com/spare-parts/
session:
  username: alice
`))
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.Timeout())
		assert.Equal(t, "sessionid", cfg.Session.CookieName)
		assert.Equal(t, "ar", cfg.UI.Locale)
		assert.Equal(t, "0 */1 * * * *", cfg.Watch.RefreshSchedule)
		assert.Empty(t, cfg.Watch.ExportSchedule)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
	})

	t.Run("Watch schedules", func(t *testing.T) {
		cfg, err := Parse([]byte(`
api:
  base_url: https://erp.example.com/spare-parts/
session:
  username: alice
watch:
  refresh_schedule: "*/30 * * * * *"
  export_schedule: "0 0 18 * * 1-5"
export:
  dir: /srv/exports
`))
		require.NoError(t, err)
		assert.Equal(t, "*/30 * * * * *", cfg.Watch.RefreshSchedule)
		assert.Equal(t, "0 0 18 * * 1-5", cfg.Watch.ExportSchedule)
		assert.Equal(t, "/srv/exports", cfg.Export.Dir)
	})

	t.Run("Missing base url", func(t *testing.T) {
		_, err := Parse([]byte("session:\n  username: alice\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base_url is required")
	})

	t.Run("Relative base url", func(t *testing.T) {
		_, err := Parse([]byte("api:\n  base_url: /spare-parts\nsession:\n  username: alice\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api base_url")
	})

	t.Run("No identity", func(t *testing.T) {
		_, err := Parse([]byte("api:\n  base_url: http://localhost:8000/\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "identity_token or username")
	})

	t.Run("Unsupported locale", func(t *testing.T) {
		_, err := Parse([]byte("api:\n  base_url: http://localhost:8000/\nsession:\n  username: a\nui:\n  locale: fr\n"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported locale")
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PARTSDESK_BASE_URL", "http://parts.internal:9000/")
	t.Setenv("PARTSDESK_CSRF_TOKEN", "csrf-from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Parse([]byte(`
api:
  base_url: https://erp.example.com/
session:
  username: alice
  csrf_token: csrf-from-file
`))
	require.NoError(t, err)
	assert.Equal(t, "http://parts.internal:9000/", cfg.API.BaseURL)
	assert.Equal(t, "csrf-from-env", cfg.Session.CSRFToken)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvRoleOverrides(t *testing.T) {
	const file = `
api:
  base_url: https://erp.example.com/
session:
  username: alice
  supervisor: true
  category_manager: false
`
	t.Run("Flags set from env", func(t *testing.T) {
		t.Setenv("PARTSDESK_SUPERVISOR", "false")
		t.Setenv("PARTSDESK_CATEGORY_MANAGER", "1")

		cfg, err := Parse([]byte(file))
		require.NoError(t, err)
		assert.False(t, cfg.Session.Supervisor)
		assert.True(t, cfg.Session.CategoryManager)
	})

	t.Run("Unparsable values keep the file", func(t *testing.T) {
		t.Setenv("PARTSDESK_SUPERVISOR", "maybe")
		t.Setenv("PARTSDESK_CATEGORY_MANAGER", "")

		cfg, err := Parse([]byte(file))
		require.NoError(t, err)
		assert.True(t, cfg.Session.Supervisor)
		assert.False(t, cfg.Session.CategoryManager)
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("Missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	})

	t.Run("Values exported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("PARTSDESK_TEST_ONLY_KEY=from-dotenv\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("PARTSDESK_TEST_ONLY_KEY") })

		require.NoError(t, LoadEnvFile(path))
		assert.Equal(t, "from-dotenv", os.Getenv("PARTSDESK_TEST_ONLY_KEY"))
	})
}
