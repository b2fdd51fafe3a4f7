package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	req := require.New(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)

	req.Equal(8080, cfg.Port)
	req.Equal(int64(10*1024*1024), cfg.ReadLimit)
	req.Equal(30*time.Minute, cfg.SessionTimeout)
	req.Equal(time.Minute, cfg.SweepInterval)
	req.Equal(10, cfg.CodeAttempts)
	req.Equal(10, cfg.RateLimit.CreatePerMinute)
	req.Equal(20, cfg.RateLimit.JoinPerMinute)
	req.Equal(5000, cfg.Media.MaxMessageLen)
	req.Equal(int64(5_000_000), cfg.Media.MaxFileSize)
	req.Contains(cfg.Media.AllowedTypes, "image/webp")
	req.Len(cfg.ICEServers, 3)
	req.Equal([]string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)
	req.Equal("kick", cfg.Backpressure)
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	req.NoError(os.WriteFile(path, []byte(`
port: 9090
session_timeout: 5m
media:
  max_file_size: 1000
ice_servers:
  - urls: ["turn:turn.example.org:3478"]
    username: duet
    credential: hunter2
`), 0o600))
	t.Setenv("RATE_LIMIT_JOIN_PER_MINUTE", "3")
	t.Setenv("MODE", "debug")

	cfg, err := LoadFile(path)
	req.NoError(err)

	req.Equal(9090, cfg.Port)
	req.Equal("debug", cfg.Mode)
	req.Equal(5*time.Minute, cfg.SessionTimeout)
	req.Equal(int64(1000), cfg.Media.MaxFileSize)
	req.Equal(5000, cfg.Media.MaxMessageLen)
	req.Equal(3, cfg.RateLimit.JoinPerMinute)
	req.Equal([]ICEServer{{URLs: []string{"turn:turn.example.org:3478"}, Username: "duet", Credential: "hunter2"}}, cfg.ICEServers)
}

func TestLoadFile_RejectsInvalid(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.bad.yaml")
	req.NoError(os.WriteFile(path, []byte("port: 0\nbackpressure: explode\n"), 0o600))

	_, err := LoadFile(path)
	req.Error(err)
	req.Contains(err.Error(), "port 0 out of range")
	req.Contains(err.Error(), `unknown backpressure action "explode"`)
}

func TestValidate_PingShorterThanPongWait(t *testing.T) {
	req := require.New(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	req.NoError(err)

	cfg.PingPeriod = cfg.PongWait
	req.Error(cfg.Validate())
}
