package mysql

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 持有帳本使用的 GORM 連線
type Client struct {
	db *gorm.DB
}

// NewClient 依設定連線 MySQL，失敗時依 MaxRetries 重試
//
// 參數:
//
//	cfg: Config - 連線與連線池設定，未填的欄位會套用預設值
//
// 回傳:
//
//	*Client: 已通過 Ping 的連線
//	error: 重試用盡仍無法連線時回傳最後一次的錯誤
func NewClient(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()

	db, err := dialWithRetry(cfg, &gorm.Config{
		// 帳務寫入一律走明確的 Transaction，單筆操作不需要 GORM 再包一層
		SkipDefaultTransaction: true,
		Logger:                 newLogger(cfg.LogLevel),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql: get sql.DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	return &Client{db: db}, nil
}

// dialWithRetry 開啟連線並 Ping，資料庫剛啟動時常需要等幾秒
func dialWithRetry(cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		db, err := dial(cfg.DSN(), gormConfig)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			log.Printf("[mysql] 連線失敗 (%d/%d): %v，%v 後重試", attempt, cfg.MaxRetries, err, cfg.RetryInterval)
			time.Sleep(cfg.RetryInterval)
		}
	}
	return nil, fmt.Errorf("mysql: connect failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}

func dial(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func configurePool(sqlDB *sql.DB, cfg Config) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}

// NewClientFromDB 包裝既有的 GORM 連線 (測試或共用連線時使用)
func NewClientFromDB(db *gorm.DB) *Client {
	return &Client{db: db}
}

// DB 回傳底層 *gorm.DB
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉底層連線池
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("mysql: get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// newLogger 把設定檔的字串等級轉成 GORM logger，未知值視為 error
func newLogger(level string) logger.Interface {
	levels := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"warn":   logger.Warn,
		"info":   logger.Info,
	}
	lv, ok := levels[level]
	if !ok {
		lv = logger.Error
	}
	return logger.Default.LogMode(lv)
}
