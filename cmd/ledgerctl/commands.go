package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

type AccountsCmd struct {
	Create  AccountsCreateCmd  `cmd:"" help:"Create an account."`
	Default AccountsDefaultCmd `cmd:"" help:"Make an account the owner's default."`
	Show    AccountsShowCmd    `cmd:"" help:"Show an account and its transactions."`
	List    AccountsListCmd    `cmd:"" help:"List the owner's accounts."`
}

type AccountsCreateCmd struct {
	Name    string `arg:"" help:"Account name."`
	Kind    string `help:"Account kind (CURRENT or SAVINGS)." default:"CURRENT" enum:"CURRENT,SAVINGS,current,savings"`
	Balance string `help:"Opening balance." default:"0"`
	Default bool   `help:"Make the new account the default."`
}

func (cmd *AccountsCreateCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.CreateAccount(rctx, &pb.CreateAccountRequest{
		Name:           cmd.Name,
		Kind:           cmd.Kind,
		InitialBalance: cmd.Balance,
		IsDefault:      cmd.Default,
	})
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("created account %s", resp.Account.Id))
	printAccount(ctx.Stdout, g.Currency, resp.Account)
	return nil
}

type AccountsDefaultCmd struct {
	ID string `arg:"" help:"Account id."`
}

func (cmd *AccountsDefaultCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.SetDefaultAccount(rctx, &pb.SetDefaultAccountRequest{AccountId: cmd.ID})
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("%s is now the default account", resp.Account.Name))
	return nil
}

type AccountsShowCmd struct {
	ID string `arg:"" help:"Account id."`
}

func (cmd *AccountsShowCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.GetAccount(rctx, &pb.GetAccountRequest{AccountId: cmd.ID})
	if err != nil {
		return err
	}
	printAccount(ctx.Stdout, g.Currency, resp.Account)

	rows := make([][]string, 0, len(resp.Transactions))
	for _, t := range resp.Transactions {
		rows = append(rows, []string{t.OccurredAt[:10], t.Kind, t.Category, formatAmount(t.Amount, g.Currency), t.Description, t.Id})
	}
	printTable(ctx.Stdout, []string{"DATE", "KIND", "CATEGORY", "AMOUNT", "DESCRIPTION", "ID"}, rows)
	return nil
}

type AccountsListCmd struct{}

func (cmd *AccountsListCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.ListAccounts(rctx, &pb.ListAccountsRequest{})
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(resp.Accounts))
	for _, s := range resp.Accounts {
		def := ""
		if s.Account.IsDefault {
			def = "*"
		}
		rows = append(rows, []string{def, s.Account.Name, s.Account.Kind, formatAmount(s.Account.Balance, g.Currency),
			strconv.FormatInt(s.TransactionCount, 10), s.Account.Id})
	}
	printTable(ctx.Stdout, []string{"", "NAME", "KIND", "BALANCE", "TXNS", "ID"}, rows)
	return nil
}

type TxCmd struct {
	Add    TxAddCmd    `cmd:"" help:"Record a transaction."`
	Delete TxDeleteCmd `cmd:"" help:"Delete transactions (ids that are not yours are skipped)."`
}

type TxAddCmd struct {
	Account     string `arg:"" help:"Account id."`
	Kind        string `arg:"" help:"INCOME or EXPENSE." enum:"INCOME,EXPENSE,income,expense"`
	Amount      string `arg:"" help:"Non-negative amount."`
	Description string `help:"Free-form description."`
	Category    string `help:"Category label."`
	At          string `help:"Occurrence time (RFC3339), defaults to now."`
}

func (cmd *TxAddCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.CreateTransaction(rctx, &pb.CreateTransactionRequest{
		AccountId:   cmd.Account,
		Kind:        cmd.Kind,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		Category:    cmd.Category,
		OccurredAt:  cmd.At,
	})
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("recorded %s %s (%s)",
		resp.Transaction.Kind, formatAmount(resp.Transaction.Amount, g.Currency), resp.Transaction.Id))
	return nil
}

type TxDeleteCmd struct {
	IDs []string `arg:"" name:"id" help:"Transaction ids."`
}

func (cmd *TxDeleteCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	resp, err := client.DeleteTransactions(rctx, &pb.DeleteTransactionsRequest{TransactionIds: cmd.IDs})
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("deleted %d transaction(s)", resp.Deleted))
	for _, d := range resp.Deltas {
		printInfof(ctx.Stdout, "account %s balance %s", d.AccountId, formatAmount(d.Amount, g.Currency))
	}
	for _, id := range resp.Skipped {
		printWarning(ctx.Stdout, "skipped "+id)
	}
	return nil
}

type ReseedCmd struct {
	Account           string   `arg:"" help:"Account id."`
	Days              int32    `help:"Days of history to generate (0 uses the server default)."`
	IncomeProbability float64 `help:"Probability that a generated transaction is income (negative uses the server default)." default:"-1"`
}

func (cmd *ReseedCmd) Run(ctx *kong.Context, g *Globals, client pb.LedgerServiceClient) error {
	rctx, cancel := g.requestContext()
	defer cancel()

	req := &pb.ReseedAccountRequest{
		AccountId:  cmd.Account,
		WindowDays: cmd.Days,
	}
	if cmd.IncomeProbability >= 0 {
		req.IncomeProbability = &cmd.IncomeProbability
	}
	resp, err := client.ReseedAccount(rctx, req)
	if err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("inserted %d transactions, balance %s",
		resp.Inserted, formatAmount(resp.Balance, g.Currency)))
	return nil
}

func (g *Globals) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), g.Timeout)
}
