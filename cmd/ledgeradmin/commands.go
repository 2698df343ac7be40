package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/bootstrap"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-expense-ledger/internal/config"
)

var commands = []subcommands.Command{
	&migrateCmd{out: os.Stdout},
	&reseedCmd{out: os.Stdout},
}

// openStore 從 Execute 的參數取得設定檔路徑並開啟儲存層
func openStore(ctx context.Context, args []any) (*bootstrap.Store, config.Config, error) {
	path, _ := args[0].(string)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, cfg, err
	}
	store, err := bootstrap.OpenStore(ctx, cfg)
	return store, cfg, err
}

type migrateCmd struct {
	out io.Writer
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "create or update the schema of the configured SQL store" }
func (*migrateCmd) Usage() string {
	return `ledgeradmin [-config <path>] migrate

  Creates the accounts and transactions tables for the mysql or postgres engine.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (p *migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	store, cfg, err := openStore(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		if errors.Is(err, bootstrap.ErrNoSchema) {
			fmt.Fprintf(p.out, "%s engine has no schema, nothing to do\n", cfg.Store.Engine)
			return subcommands.ExitSuccess
		}
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(p.out, "migrated %s schema\n", cfg.Store.Engine)
	return subcommands.ExitSuccess
}

type reseedCmd struct {
	out     io.Writer
	owner   string
	account string
	create  bool
	days    int
	income  float64
}

func (*reseedCmd) Name() string     { return "reseed" }
func (*reseedCmd) Synopsis() string { return "replace an account's transactions with a synthetic history" }
func (*reseedCmd) Usage() string {
	return `ledgeradmin [-config <path>] reseed -owner <id> [-account <id>] [-create] [-days <n>] [-income <p>]

  Deletes every transaction of the account, inserts a generated history and sets the
  balance to the net effect of that history. Without -account the owner's default
  account is used; -create opens a "Demo" account when the owner has none.
`
}

func (p *reseedCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.owner, "owner", "", "Owner id (required).")
	f.StringVar(&p.account, "account", "", "Account id. Defaults to the owner's default account.")
	f.BoolVar(&p.create, "create", false, "Create a demo account if the owner has none.")
	f.IntVar(&p.days, "days", 0, "Days of history. Defaults to seed.windowDays.")
	f.Float64Var(&p.income, "income", -1, "Income probability. Defaults to seed.incomeProbability.")
}

func (p *reseedCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if p.owner == "" {
		fmt.Fprintln(os.Stderr, "Error: -owner is required.")
		return subcommands.ExitUsageError
	}

	store, cfg, err := openStore(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	gen := cfg.GeneratorConfig()
	if p.days > 0 {
		gen.WindowDays = p.days
	}
	if p.income >= 0 {
		gen.IncomeProbability = p.income
	}

	result, accountID, err := p.reseed(ctx, usecase.NewCoreUseCase(store), gen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(p.out, "account %s: inserted %d transactions, balance %s\n",
		accountID, result.Inserted, domain.FormatAmount(result.Balance, domain.DefaultCurrency))
	return subcommands.ExitSuccess
}

func (p *reseedCmd) reseed(ctx context.Context, core *usecase.CoreUseCase, gen usecase.GeneratorConfig) (*usecase.ReseedResult, uuid.UUID, error) {
	owner := domain.OwnerID(p.owner)
	accountID, err := p.resolveAccount(ctx, core, owner)
	if err != nil {
		return nil, uuid.Nil, err
	}
	result, err := core.ReseedAccount(ctx, owner, accountID, gen)
	return result, accountID, err
}

func (p *reseedCmd) resolveAccount(ctx context.Context, core *usecase.CoreUseCase, owner domain.OwnerID) (uuid.UUID, error) {
	if p.account != "" {
		id, err := uuid.Parse(p.account)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid -account: %w", err)
		}
		return id, nil
	}

	summaries, err := core.ListAccounts(ctx, owner)
	if err != nil {
		return uuid.Nil, err
	}
	for _, s := range summaries {
		if s.Account.IsDefault {
			return s.Account.ID, nil
		}
	}
	if !p.create {
		return uuid.Nil, fmt.Errorf("owner %s has no default account (use -account or -create)", owner)
	}
	account, err := core.CreateAccount(ctx, owner, usecase.CreateAccountParams{
		Name:           "Demo",
		Kind:           domain.AccountKindCurrent,
		InitialBalance: "0",
		RequestDefault: true,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return account.ID, nil
}
