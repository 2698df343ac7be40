package mysql

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	driver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase/storetest"
	"github.com/JoeShih716/go-expense-ledger/pkg/mysql"
)

// 需要真實 MySQL：LEDGER_TEST_MYSQL_DSN="user:pass@tcp(127.0.0.1:3306)/ledger_test?parseTime=True&loc=UTC"
func TestMySQLStoreContract(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_MYSQL_DSN not set")
	}
	if !strings.Contains(dsn, "clientFoundRows") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "clientFoundRows=true"
	}
	db, err := gorm.Open(driver.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	assert.NoError(t, err)

	store := NewMySQLStore(mysql.NewClientFromDB(db))
	defer store.Close()
	assert.NoError(t, store.Migrate(context.Background()))

	storetest.Run(t, store)
}

func TestDefaultOwnerColumnIsGenerated(t *testing.T) {
	sch, err := schema.Parse(&sqlAccount{}, &sync.Map{}, schema.NamingStrategy{})
	assert.NoError(t, err)

	field := sch.LookUpField("DefaultOwner")
	assert.NotZero(t, field)
	assert.Equal(t, "default_owner", field.DBName)
	// 由資料庫計算，GORM 不可寫入
	assert.False(t, field.Creatable)
	assert.False(t, field.Updatable)
	assert.True(t, field.Readable)
	assert.Equal(t, "uq_accounts_owner_default", field.TagSettings["UNIQUEINDEX"])
}

func TestExpectOne(t *testing.T) {
	assert.NoError(t, expectOne(&gorm.DB{RowsAffected: 1}))
	assert.IsError(t, expectOne(&gorm.DB{}), domain.ErrAccountNotFound)

	boom := errors.New("boom")
	assert.IsError(t, expectOne(&gorm.DB{Error: boom}), boom)
}
