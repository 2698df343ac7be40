package postgres

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id          UUID PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	balance     NUMERIC(20,2) NOT NULL DEFAULT 0,
	is_default  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts (owner_id, created_at);
-- 每個擁有者最多一個預設帳戶
CREATE UNIQUE INDEX IF NOT EXISTS uq_accounts_owner_default ON accounts (owner_id) WHERE is_default;

CREATE TABLE IF NOT EXISTS transactions (
	id           UUID PRIMARY KEY,
	account_id   UUID NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
	owner_id     TEXT NOT NULL,
	kind         TEXT NOT NULL,
	amount       NUMERIC(20,2) NOT NULL CHECK (amount >= 0),
	description  TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'COMPLETED',
	occurred_at  TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions (account_id, occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions (owner_id);
`
