package mysql

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestConfigDefaultsAndDSN(t *testing.T) {
	cfg := Config{Host: "db", User: "ledger", Password: "secret", DBName: "finance"}
	cfg.ApplyDefaults()

	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 100, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "ledger:secret@tcp(db:3306)/finance?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true", cfg.DSN())

	cfg = Config{Port: 3307, MaxOpenConns: 5}
	cfg.ApplyDefaults()
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, 5, cfg.MaxOpenConns)
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"info", "warn", "error", "silent", ""} {
		assert.NotZero(t, newLogger(level))
	}
}
