package modelstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
history_suffix: _audit
redact_keys: [password, api_token]
excludes: [remember_token]
without_timestamps: true
skip_if_not_exists: true
log_level: debug
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, Config{
		HistorySuffix:     "_audit",
		RedactKeys:        []string{"password", "api_token"},
		SkipIfNotExists:   true,
		Excludes:          []string{"remember_token"},
		WithoutTimestamps: true,
		LogLevel:          "debug",
	}, cfg)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("excludes: {"))
	assert.ErrorContains(t, err, "modelstate: failed to parse config")
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modelstate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	h := New(cfg)
	assert.Equal(t, "accounts_audit", h.cfg.HistoryTableName("accounts"))
	assert.Contains(t, h.cfg.Redact, "password")
	assert.Equal(t, logrus.DebugLevel, h.log.(*logrus.Logger).GetLevel())

	u := &User{}
	u.Load(map[string]any{"id": 1, "remember_token": "a", "updated_at": t1})
	u.Set("remember_token", "b")
	u.Set("updated_at", t2)

	e, ok := h.Capture(context.Background(), u)
	require.True(t, ok)
	assert.Equal(t, Summary{"remember_token": NewSensitiveValue("b")}, e.After)
	assert.Equal(t, Summary{"remember_token": NewSensitiveValue("a")}, e.Before)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
