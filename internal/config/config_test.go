package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "store:\n  engine: memory\n")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
	assert.Equal(t, EngineMemory, cfg.Store.Engine)
	assert.Equal(t, ":50051", cfg.GRPC.Addr)
	assert.Equal(t, 90, cfg.Seed.WindowDays)
	assert.Equal(t, 0.4, cfg.Seed.IncomeProbability)
	assert.Equal(t, 100, cfg.MySQL.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, 0, len(cfg.Kafka.Brokers))
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
store:
  engine: mysql
mysql:
  host: db
  dbName: ledger
  connMaxLifetime: 5m
kafka:
  brokers: [k1:9092]
seed:
  windowDays: 30
`)

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	assert.NoError(t, err)
	assert.Equal(t, EngineMySQL, cfg.Store.Engine)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, []string{"k1:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30, cfg.GeneratorConfig().WindowDays)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "store:\n  engine: memory\n")
	env := writeFile(t, dir, ".env", "POSTGRES_DSN=postgres://from-dotenv\n")

	t.Setenv("LEDGER_STORE_ENGINE", "postgres")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("GRPC_ADDR", "127.0.0.1:6000")
	// godotenv 載入的變數在測試結束後清掉
	t.Setenv("POSTGRES_DSN", "")
	os.Unsetenv("POSTGRES_DSN")

	cfg, err := Load(path, env)
	assert.NoError(t, err)
	assert.Equal(t, EnginePostgres, cfg.Store.Engine)
	assert.Equal(t, "postgres://from-dotenv", cfg.Postgres.DSN)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "127.0.0.1:6000", cfg.GRPC.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown engine", "store:\n  engine: redis\n"},
		{"mysql without host", "store:\n  engine: mysql\n"},
		{"postgres without dsn", "store:\n  engine: postgres\n"},
		{"bad probability", "seed:\n  incomeProbability: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEDGER_STORE_ENGINE", "")
			t.Setenv("POSTGRES_DSN", "")
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", tt.yaml)
			_, err := Load(path, filepath.Join(dir, "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
