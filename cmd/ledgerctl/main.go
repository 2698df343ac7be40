package main

import (
	"time"

	"github.com/alecthomas/kong"

	ledgergrpc "github.com/JoeShih716/go-expense-ledger/pkg/grpc"
	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

// Globals 所有子命令共用的旗標
type Globals struct {
	Addr     string        `help:"Ledger service address." default:"localhost:50051" env:"LEDGER_ADDR"`
	Owner    string        `help:"Owner identity sent as x-owner-id." required:"" env:"LEDGER_OWNER"`
	Currency string        `help:"Currency code used when displaying amounts." default:"USD"`
	Timeout  time.Duration `help:"Per-request timeout." default:"10s"`
}

var cli struct {
	Globals

	Accounts AccountsCmd `cmd:"" help:"Manage accounts."`
	Tx       TxCmd       `cmd:"" help:"Record or delete transactions."`
	Reseed   ReseedCmd   `cmd:"" help:"Replace an account's transactions with a synthetic history."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("ledgerctl"),
		kong.Description("Command-line client for the expense ledger service."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)

	pool := ledgergrpc.NewPool(
		ledgergrpc.WithInterceptor(ledgergrpc.MetadataInterceptor(pb.OwnerMetadataKey, cli.Owner)),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(cli.Addr)
	ctx.FatalIfErrorf(err)
	ctx.BindTo(pb.NewLedgerServiceClient(conn), (*pb.LedgerServiceClient)(nil))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
