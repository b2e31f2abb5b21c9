package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  name: catering-test
  env: test
  log_level: debug

server:
  port: "8081"

mysql:
  dsn: "user:pass@tcp(127.0.0.1:3306)/catering"

redis:
  addr: "127.0.0.1:6379"

lmstfy:
  host: "127.0.0.1"
  port: 7777
  namespace: "catering"
  token: "tok"

tracking:
  record_ttl: 12h

providers:
  - id: silpo
    mode: poll
    base_url: "http://127.0.0.1:9001"
    queue: "suborder_silpo"
  - id: kfc
    mode: push
    base_url: "http://127.0.0.1:9002"
    queue: "suborder_kfc"

workers:
  - name: silpo-cook-worker
    provider_id: silpo
    queue_name: "suborder_silpo"
    subscriber:
      threads: 2
      rate: 100ms
      timeout: 3s
      ttr: 40m
      error_backoff: 1s
    processor:
      threads: 4
      buffer_size: 16
      timeout: 35m
    cook:
      poll_interval: 5s
      max_attempts: 360
      deadline: 30m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "catering-test", cfg.App.Name)
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 12*time.Hour, cfg.Tracking.RecordTTL)
	// 未配置的 index_ttl 走默认值
	assert.Equal(t, 24*time.Hour, cfg.Tracking.IndexTTL)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "poll", cfg.Providers[0].Mode)

	require.Len(t, cfg.Workers, 1)
	w := cfg.Workers[0]
	assert.Equal(t, 40*time.Minute, w.Subscriber.TTR)
	assert.Equal(t, 360, w.Cook.MaxAttempts)
	assert.Equal(t, 30*time.Minute, w.Cook.Deadline)

	queues := cfg.ProviderQueues()
	assert.Equal(t, "suborder_silpo", queues["silpo"])
	assert.Equal(t, "suborder_kfc", queues["kfc"])
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	t.Run("missing dsn", func(t *testing.T) {
		c := *cfg
		c.MySQL.DSN = ""
		assert.Error(t, c.Validate())
	})

	t.Run("bad provider mode", func(t *testing.T) {
		c := *cfg
		c.Providers = []ProviderConfig{{ID: "silpo", Mode: "carrier-pigeon", Queue: "q"}}
		assert.Error(t, c.Validate())
	})

	t.Run("no providers", func(t *testing.T) {
		c := *cfg
		c.Providers = nil
		assert.Error(t, c.Validate())
	})
}
