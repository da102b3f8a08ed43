package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.DiagnosisTimeout)
	assert.Len(t, cfg.PDFFontPaths, 3)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DIAGNOSIS_API_URL", "http://diagnosis:5000")
	t.Setenv("DIAGNOSIS_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("CARE_TEAM_CHAT_ID", "-100200")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://diagnosis:5000", cfg.DiagnosisAPIURL)
	assert.Equal(t, 5*time.Second, cfg.DiagnosisTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(-100200), cfg.CareTeamChatID)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
