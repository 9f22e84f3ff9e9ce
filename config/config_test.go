package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
account:
  username: managed
  password: secret
selection:
  top_media_count: 5
  top_tag_count: 20
  cooldown: 60d
  inter_account_delay: 2h
  accept_video: true
templates:
  hashtags: ["#model", "fashion"]
resources:
  image_folder: ./tmp/images
database:
  url: mongodb://localhost:27017
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestManager_Load(t *testing.T) {
	cfg, err := NewManager(writeConfig(t, sampleYAML)).Load()
	require.NoError(t, err)

	assert.Equal(t, "managed", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 5, cfg.TopMediaCount)
	assert.Equal(t, 20, cfg.TopTagCount)
	assert.Equal(t, 60*24*time.Hour, cfg.Cooldown)
	assert.Equal(t, 2*time.Hour, cfg.InterAccountDelay)
	assert.True(t, cfg.AcceptVideo)
	assert.Equal(t, []string{"#model", "fashion"}, cfg.HashtagTemplates)
	assert.Equal(t, "./tmp/images", cfg.DownloadDir)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DatabaseURL)

	// defaults
	assert.Equal(t, 10, cfg.MaxAlbumItems)
	assert.Equal(t, 4, cfg.SeparatorLines)
	assert.Equal(t, "account_list.txt", cfg.AccountListPath)
	assert.Equal(t, 72*time.Hour, cfg.CleanupMaxAge)
	assert.Equal(t, 60*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, 30*time.Minute, cfg.TransferTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestManager_LoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvUsername, "from-env")
	t.Setenv(EnvPassword, "env-secret")
	t.Setenv(EnvDatabaseURL, "sqlite3:./env.db")

	cfg, err := NewManager(writeConfig(t, sampleYAML)).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Username)
	assert.Equal(t, "env-secret", cfg.Password)
	assert.Equal(t, "sqlite3:./env.db", cfg.DatabaseURL)
}

func TestManager_LoadCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	manager := NewManager(path)

	cfg, err := manager.Load()
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, 3, cfg.TopMediaCount)
	assert.Equal(t, 30, cfg.TopTagCount)
	assert.Equal(t, 7*24*time.Hour, cfg.Cooldown)
	assert.Equal(t, 4*time.Hour, cfg.InterAccountDelay)
	assert.Same(t, cfg, manager.Get())

	reloaded, err := NewManager(path).Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Cooldown, reloaded.Cooldown)
	assert.Equal(t, cfg.HashtagTemplates, reloaded.HashtagTemplates)
}

func TestManager_LoadInvalidYAML(t *testing.T) {
	_, err := NewManager(writeConfig(t, "account: [")).Load()
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value   string
		want    time.Duration
		wantErr bool
	}{
		{value: "1h30m", want: 90 * time.Minute},
		{value: "7d", want: 7 * 24 * time.Hour},
		{value: " 2d ", want: 48 * time.Hour},
		{value: "", want: time.Second},
		{value: "soon", wantErr: true},
		{value: "60days", wantErr: true},
		{value: "-3d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseDuration(tt.value, time.Second)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_LoadRejectsMalformedDuration(t *testing.T) {
	body := strings.Replace(sampleYAML, "cooldown: 60d", "cooldown: 60days", 1)

	_, err := NewManager(writeConfig(t, body)).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection.cooldown")
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Username: "u", Password: "p"}
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Username: "u", Password: "p", TopMediaCount: -1}).Validate())
	assert.Error(t, (&Config{Username: "u", Password: "p", Cooldown: -time.Second}).Validate())
}
