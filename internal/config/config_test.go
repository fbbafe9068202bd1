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

const validConfig = `
api:
  environment: test
  port: "8080"
  session_signing_key: 0123456789abcdef0123456789abcdef
  session_ttl: 2h
gin:
  mode: test
db:
  driver: sqlite
  sqlite_path: ":memory:"
postgres:
  host: localhost
  port: "5432"
  user: eventhub
  password: secret
  db: eventhub
redis:
  addr: localhost:6379
rate_limit:
  enabled: true
  max_attempts: 5
  window: 30s
broker:
  kind: kafka
  brokers:
    - kafka:9092
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "test", conf.API.Environment)
	assert.Equal(t, 2*time.Hour, conf.API.SessionTTL)
	assert.Equal(t, 12, conf.API.BcryptCost, "default applies")
	assert.Equal(t, 10*time.Second, conf.API.ShutdownTimeout, "default applies")
	assert.Equal(t, "sqlite", conf.DB.Driver)
	assert.Equal(t, 5, conf.RateLimit.MaxAttempts)
	assert.Equal(t, 30*time.Second, conf.RateLimit.Window)
	assert.Equal(t, []string{"kafka:9092"}, conf.Broker.Brokers)
	assert.Equal(t, "booking.confirmed", conf.Broker.Topic)
	assert.Equal(t, "host=localhost port=5432 user=eventhub password=secret dbname=eventhub sslmode=disable", conf.Postgres.DSN())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EVENTHUB_API_PORT", "9090")
	t.Setenv("EVENTHUB_POSTGRES_HOST", "db.internal")

	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, "db.internal", conf.Postgres.Host)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{name: "short signing key", from: "0123456789abcdef0123456789abcdef", to: "short", wantErr: "session_signing_key"},
		{name: "unknown driver", from: "driver: sqlite", to: "driver: mysql", wantErr: "db.driver"},
		{name: "unknown broker", from: "kind: kafka", to: "kind: nats", wantErr: "broker.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validConfig, tt.from, tt.to, 1)

			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
