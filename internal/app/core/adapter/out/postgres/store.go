package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

// PostgresStore 以 database/sql 交易作為原子單元
type PostgresStore struct {
	db *sql.DB
}

// Open 以 lib/pq 開啟連線並確認可用
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// Migrate 建立資料表 (可重複執行)
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	return domain.AsStoreError(p.withTx(ctx, nil, fn))
}

func (p *PostgresStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	opts := &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}
	return domain.AsStoreError(p.withTx(ctx, opts, fn))
}

func (p *PostgresStore) withTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx usecase.LedgerTx) error) (err error) {
	dbTx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if err = fn(ctx, &pqTx{tx: dbTx}); err != nil {
		return err
	}
	return dbTx.Commit()
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

type pqTx struct {
	tx *sql.Tx
}

const accountColumns = `id, owner_id, name, kind, balance, is_default, created_at, updated_at`

const transactionColumns = `id, account_id, owner_id, kind, amount, description, category, status, occurred_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner, extra ...any) (*domain.Account, error) {
	var a domain.Account
	var owner, kind string
	dest := append([]any{&a.ID, &owner, &a.Name, &kind, &a.Balance, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.OwnerID = domain.OwnerID(owner)
	a.Kind = domain.AccountKind(kind)
	return &a, nil
}

func scanTransaction(row scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var owner, kind, status string
	if err := row.Scan(&t.ID, &t.AccountID, &owner, &kind, &t.Amount, &t.Description, &t.Category, &status, &t.OccurredAt, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.OwnerID = domain.OwnerID(owner)
	t.Kind = domain.TransactionKind(kind)
	t.Status = domain.TransactionStatus(status)
	return &t, nil
}

func (q *pqTx) queryAccounts(ctx context.Context, query string, args ...any) ([]*domain.Account, error) {
	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (q *pqTx) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := q.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trans []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		trans = append(trans, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trans, nil
}

// LockOwnerAccounts 先取得擁有者層級的 advisory lock 再鎖住帳戶列。
// READ COMMITTED 下空集合的 FOR UPDATE 鎖不到任何東西，第一個帳戶的建立需要靠 advisory lock 序列化。
func (q *pqTx) LockOwnerAccounts(ctx context.Context, owner domain.OwnerID) ([]*domain.Account, error) {
	if _, err := q.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(owner)); err != nil {
		return nil, err
	}
	const query = `SELECT ` + accountColumns + ` FROM accounts
	WHERE owner_id = $1 ORDER BY created_at ASC FOR UPDATE`
	return q.queryAccounts(ctx, query, string(owner))
}

func (q *pqTx) FindAccount(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND owner_id = $2`
	a, err := scanAccount(q.tx.QueryRowContext(ctx, query, accountID, string(owner)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	return a, err
}

func (q *pqTx) ListAccountSummaries(ctx context.Context, owner domain.OwnerID) ([]domain.AccountSummary, error) {
	const query = `SELECT a.id, a.owner_id, a.name, a.kind, a.balance, a.is_default, a.created_at, a.updated_at,
		COUNT(t.id)
	FROM accounts a
	LEFT JOIN transactions t ON t.account_id = a.id
	WHERE a.owner_id = $1
	GROUP BY a.id
	ORDER BY a.created_at DESC`

	rows, err := q.tx.QueryContext(ctx, query, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.AccountSummary
	for rows.Next() {
		var count int64
		a, err := scanAccount(rows, &count)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.AccountSummary{Account: a, TransactionCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (q *pqTx) InsertAccount(ctx context.Context, a *domain.Account) error {
	const query = `INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := q.tx.ExecContext(ctx, query, a.ID, string(a.OwnerID), a.Name, string(a.Kind), a.Balance, a.IsDefault, a.CreatedAt, a.UpdatedAt)
	return err
}

func (q *pqTx) ClearDefault(ctx context.Context, owner domain.OwnerID) error {
	const query = `UPDATE accounts SET is_default = FALSE, updated_at = $2
	WHERE owner_id = $1 AND is_default`
	_, err := q.tx.ExecContext(ctx, query, string(owner), time.Now().UTC())
	return err
}

func (q *pqTx) MarkDefault(ctx context.Context, owner domain.OwnerID, accountID uuid.UUID) error {
	const query = `UPDATE accounts SET is_default = TRUE, updated_at = $3
	WHERE id = $1 AND owner_id = $2`
	res, err := q.tx.ExecContext(ctx, query, accountID, string(owner), time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (q *pqTx) IncrementBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = balance + $2, updated_at = $3 WHERE id = $1`
	res, err := q.tx.ExecContext(ctx, query, accountID, delta, time.Now().UTC())
	return expectOne(res, err)
}

func (q *pqTx) SetBalance(ctx context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1`
	res, err := q.tx.ExecContext(ctx, query, accountID, balance, time.Now().UTC())
	return expectOne(res, err)
}

func (q *pqTx) FindOwnedTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) ([]*domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions
	WHERE id = ANY($1::uuid[]) AND owner_id = $2 FOR UPDATE`
	return q.queryTransactions(ctx, query, pq.Array(idStrings(ids)), string(owner))
}

func (q *pqTx) ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions
	WHERE account_id = $1 ORDER BY occurred_at DESC, created_at DESC`
	return q.queryTransactions(ctx, query, accountID)
}

func (q *pqTx) InsertTransactions(ctx context.Context, trans []*domain.Transaction) error {
	if len(trans) == 0 {
		return nil
	}
	const query = `INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	stmt, err := q.tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trans {
		if _, err := stmt.ExecContext(ctx, t.ID, t.AccountID, string(t.OwnerID), string(t.Kind), t.Amount,
			t.Description, t.Category, string(t.Status), t.OccurredAt, t.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (q *pqTx) DeleteTransactions(ctx context.Context, owner domain.OwnerID, ids []uuid.UUID) (int64, error) {
	const query = `DELETE FROM transactions WHERE id = ANY($1::uuid[]) AND owner_id = $2`
	res, err := q.tx.ExecContext(ctx, query, pq.Array(idStrings(ids)), string(owner))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *pqTx) DeleteAccountTransactions(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const query = `DELETE FROM transactions WHERE account_id = $1`
	res, err := q.tx.ExecContext(ctx, query, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

var (
	_ usecase.LedgerStore = (*PostgresStore)(nil)
	_ usecase.LedgerTx    = (*pqTx)(nil)
)
