// Package config 載入服務設定：config.yaml + .env + 環境變數覆寫
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/pkg/mysql"
)

// 儲存引擎
const (
	EngineMemory     = "memory"      // RWMutex + WAL
	EngineMemoryLMAX = "memory-lmax" // 單一 writer goroutine + WAL
	EngineMySQL      = "mysql"
	EnginePostgres   = "postgres"
)

type Config struct {
	Store    StoreConfig    `yaml:"store"`
	MySQL    mysql.Config   `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Seed     SeedConfig     `yaml:"seed"`
}

type StoreConfig struct {
	Engine     string `yaml:"engine"`
	WALPath    string `yaml:"walPath"`
	LMAXBuffer int    `yaml:"lmaxBuffer"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

// KafkaConfig Brokers 為空時不發布事件
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SeedConfig 合成交易產生器參數；0 使用預設值
type SeedConfig struct {
	WindowDays        int     `yaml:"windowDays"`
	IncomeProbability float64 `yaml:"incomeProbability"`
}

// Load 讀取 YAML 設定檔，再以 .env / 環境變數覆寫並補上預設值
//
// 參數:
//
//	path: string - config.yaml 路徑
//	envFiles: ...string - .env 檔案 (預設 ".env"，不存在時忽略)
func Load(path string, envFiles ...string) (Config, error) {
	var cfg Config

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv 不覆寫已存在的環境變數
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", f, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LEDGER_STORE_ENGINE"); v != "" {
		c.Store.Engine = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		c.MySQL.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("GRPC_ADDR"); v != "" {
		c.GRPC.Addr = v
	}
}

// ApplyDefaults 補全未設定的欄位
func (c *Config) ApplyDefaults() {
	if c.Store.Engine == "" {
		c.Store.Engine = EngineMemory
	}
	if c.Store.WALPath == "" {
		c.Store.WALPath = "data/wal.log"
	}
	if c.Store.LMAXBuffer == 0 {
		c.Store.LMAXBuffer = 1024
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	c.MySQL.ApplyDefaults()

	def := usecase.DefaultGeneratorConfig()
	if c.Seed.WindowDays == 0 {
		c.Seed.WindowDays = def.WindowDays
	}
	if c.Seed.IncomeProbability == 0 {
		c.Seed.IncomeProbability = def.IncomeProbability
	}
}

// Validate 檢查引擎名稱與引擎所需的連線資訊
func (c *Config) Validate() error {
	switch c.Store.Engine {
	case EngineMemory, EngineMemoryLMAX:
	case EngineMySQL:
		if c.MySQL.Host == "" || c.MySQL.DBName == "" {
			return errors.New("config: mysql.host and mysql.dbName are required for the mysql engine")
		}
	case EnginePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for the postgres engine")
		}
	default:
		return fmt.Errorf("config: unknown store engine %q", c.Store.Engine)
	}
	return c.GeneratorConfig().Validate()
}

// GeneratorConfig 轉成 usecase 的產生器參數
func (c *Config) GeneratorConfig() usecase.GeneratorConfig {
	gen := usecase.DefaultGeneratorConfig()
	gen.WindowDays = c.Seed.WindowDays
	gen.IncomeProbability = c.Seed.IncomeProbability
	return gen
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
