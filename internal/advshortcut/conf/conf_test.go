package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	c, cm, err := Load(dir, nil, true)
	require.NoError(t, err)

	assert.Equal(t, dir, c.ConfigDir)
	assert.Equal(t, "json", c.Storage.Type)
	assert.Equal(t, 10, c.Storage.Backups)
	assert.Equal(t, "zstd", c.Storage.Compression)
	assert.Equal(t, DefaultHTTPAddr, c.GetHTTPAddr())
	assert.True(t, c.Update.AutoCheck)
	assert.Equal(t, 3*time.Second, c.GetAutoCheckDelay())
	assert.True(t, c.Watch)
	assert.Nil(t, c.GetWebhook())

	_, err = os.Stat(filepath.Join(cm.Path, AppName+".json"))
	assert.NoError(t, err)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "data_dir": "/tmp/shortcuts",
  "storage": {"type": "sqlite", "backups": 3},
  "http": {"enabled": true, "addr": "127.0.0.1:7000"},
  "update": {"cron": "0 */6 * * *"},
  "webhook": {"delay_ms": 100, "items": [{"type": "execution", "url": "http://hook", "status": "error"}]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, AppName+".json"), []byte(content), 0o644))
	t.Setenv("ADVSHORTCUT_STORAGE_BACKUPS", "7")

	c, _, err := Load(dir, map[string]any{"http.addr": "127.0.0.1:8000"}, false)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shortcuts", c.GetDataDir())
	assert.Equal(t, "sqlite", c.Storage.Type)
	assert.Equal(t, 7, c.Storage.Backups)
	assert.True(t, c.HTTP.Enabled)
	assert.Equal(t, "127.0.0.1:8000", c.GetHTTPAddr())
	assert.Equal(t, "0 */6 * * *", c.Update.Cron)
	require.NotNil(t, c.GetWebhook())
	require.Len(t, c.Webhook.Items, 1)
	assert.Equal(t, "error", c.Webhook.Items[0].Status)

	opts := c.StorageOptions()
	assert.Equal(t, "/tmp/shortcuts", opts.DataDir)
	assert.Equal(t, 7, opts.Backups)
}

func TestLoadFromEnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	c, _, err := Load("", nil, false)
	require.NoError(t, err)
	assert.Equal(t, dir, c.ConfigDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		conf Config
		ok   bool
	}{
		{"empty", Config{}, true},
		{"sqlite", Config{Storage: StorageConfig{Type: "SQLite"}}, true},
		{"bad type", Config{Storage: StorageConfig{Type: "mongo"}}, false},
		{"bad codec", Config{Storage: StorageConfig{Compression: "gzip"}}, false},
		{"negative backups", Config{Storage: StorageConfig{Backups: -1}}, false},
		{"bad cron", Config{Update: UpdateConfig{Cron: "every day"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
