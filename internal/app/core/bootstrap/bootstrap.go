// Package bootstrap 依設定組裝儲存層與事件發布器，供 cmd/core 與 cmd/ledgeradmin 共用
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/out/kafka"
	memory_adapter "github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/out/memory"
	mysql_adapter "github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/out/mysql"
	postgres_adapter "github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/out/postgres"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/internal/config"
	"github.com/JoeShih716/go-expense-ledger/pkg/mysql"
	"github.com/JoeShih716/go-expense-ledger/pkg/wal"
)

// ErrNoSchema 記憶體引擎沒有 schema 可以 migrate
var ErrNoSchema = errors.New("store engine has no schema to migrate")

type migrator interface {
	Migrate(ctx context.Context) error
}

// Store 組裝完成的儲存層，以及關閉時要一併釋放的資源 (WAL 等)
type Store struct {
	usecase.LedgerStore
	closers []func() error
}

// Migrate 建立 SQL 引擎的 schema
func (s *Store) Migrate(ctx context.Context) error {
	m, ok := s.LedgerStore.(migrator)
	if !ok {
		return ErrNoSchema
	}
	return m.Migrate(ctx)
}

// Close 先關儲存層，再依反向順序釋放其他資源
func (s *Store) Close() error {
	errs := []error{s.LedgerStore.Close()}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// OpenStore 依 cfg.Store.Engine 建立儲存層
//
// memory-lmax 會以 ctx 啟動 writer goroutine；ctx 取消後處理完剩餘單元才停止。
func OpenStore(ctx context.Context, cfg config.Config) (*Store, error) {
	switch cfg.Store.Engine {
	case config.EngineMemory, config.EngineMemoryLMAX:
		walFile, err := wal.NewWAL(cfg.Store.WALPath)
		if err != nil {
			return nil, fmt.Errorf("init WAL: %w", err)
		}
		var store usecase.LedgerStore
		if cfg.Store.Engine == config.EngineMemory {
			store, err = memory_adapter.NewMutexStore(walFile)
		} else {
			var lmax *memory_adapter.LMAXStore
			lmax, err = memory_adapter.NewLMAXStore(walFile, cfg.Store.LMAXBuffer)
			if err == nil {
				lmax.Start(ctx)
				store = lmax
			}
		}
		if err != nil {
			walFile.Close()
			return nil, fmt.Errorf("recover %s store from WAL: %w", cfg.Store.Engine, err)
		}
		log.Printf("Using %s store (WAL: %s)", cfg.Store.Engine, cfg.Store.WALPath)
		return &Store{LedgerStore: store, closers: []func() error{walFile.Close}}, nil

	case config.EngineMySQL:
		client, err := mysql.NewClient(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("connect MySQL: %w", err)
		}
		log.Println("Connected to MySQL successfully")
		return &Store{LedgerStore: mysql_adapter.NewMySQLStore(client)}, nil

	case config.EnginePostgres:
		store, err := postgres_adapter.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect Postgres: %w", err)
		}
		log.Println("Connected to Postgres successfully")
		return &Store{LedgerStore: store}, nil
	}
	return nil, fmt.Errorf("unknown store engine %q", cfg.Store.Engine)
}

// Publisher 事件發布器與其關閉函式
type Publisher struct {
	usecase.EventPublisher
	close func() error
}

func (p *Publisher) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// OpenPublisher 有設定 Kafka brokers 時發布到 Kafka，否則不發布
func OpenPublisher(cfg config.Config) *Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return &Publisher{EventPublisher: usecase.NopPublisher{}}
	}
	p := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	log.Printf("Publishing ledger events to Kafka %v", cfg.Kafka.Brokers)
	return &Publisher{EventPublisher: p, close: p.Close}
}
