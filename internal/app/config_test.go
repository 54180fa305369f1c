package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, 200, cfg.Classroom.DefaultMaxParticipants)
	require.Equal(t, 500, cfg.Classroom.ChatHistoryLimit)
	require.Equal(t, 6, cfg.Classroom.JoinCodeLength)
	require.Equal(t, 24*time.Hour, cfg.Classroom.Retention)
	require.Equal(t, "@hourly", cfg.Classroom.CleanupSchedule)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)

	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	raw := `
server:
  port: 9100
  log_level: debug
classroom:
  default_max_participants: 30
  chat_history_limit: 50
  join_code_length: 8
  retention: 48h
  cleanup_schedule: "@every 30m"
monitoring:
  prometheus:
    enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(raw), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 30, cfg.Classroom.DefaultMaxParticipants)
	require.Equal(t, 50, cfg.Classroom.ChatHistoryLimit)
	require.Equal(t, 8, cfg.Classroom.JoinCodeLength)
	require.Equal(t, 48*time.Hour, cfg.Classroom.Retention)
	require.Equal(t, "@every 30m", cfg.Classroom.CleanupSchedule)
	require.False(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("VIDHYA_SERVER_PORT", "9200")
	t.Setenv("VIDHYA_CLASSROOM_RETENTION", "12h")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, 12*time.Hour, cfg.Classroom.Retention)
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{
		Server:    ServerConfig{Port: 8000},
		Classroom: ClassroomConfig{DefaultMaxParticipants: 10, Retention: time.Hour},
	}
	require.NoError(t, valid.Validate())

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())

	badPort := &Config{
		Server:    ServerConfig{Port: 0},
		Classroom: ClassroomConfig{DefaultMaxParticipants: 10, Retention: time.Hour},
	}
	require.Error(t, badPort.Validate())

	badCap := &Config{
		Server:    ServerConfig{Port: 8000},
		Classroom: ClassroomConfig{DefaultMaxParticipants: 0, Retention: time.Hour},
	}
	require.Error(t, badCap.Validate())

	badRetention := &Config{
		Server:    ServerConfig{Port: 8000},
		Classroom: ClassroomConfig{DefaultMaxParticipants: 10},
	}
	require.Error(t, badRetention.Validate())
}
