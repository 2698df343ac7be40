package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	grpc_adapter "github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	ledgergrpc "github.com/JoeShih716/go-expense-ledger/pkg/grpc"
	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

// harness 以 bufconn 啟動完整服務，並透過 Pool 建立帶身分的連線
type harness struct {
	lis *bufconn.Listener
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := memory.NewMutexStore(nil)
	assert.NoError(t, err)
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	pb.RegisterLedgerServiceServer(s, grpc_adapter.NewGrpcServer(usecase.NewCoreUseCase(store), usecase.DefaultGeneratorConfig()))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(func() {
		s.Stop()
		store.Close()
	})
	return &harness{lis: lis}
}

// run 解析並執行一個 ledgerctl 命令，回傳 stdout
func (h *harness) run(t *testing.T, args ...string) string {
	t.Helper()
	var c struct {
		Globals
		Accounts AccountsCmd `cmd:""`
		Tx       TxCmd       `cmd:""`
		Reseed   ReseedCmd   `cmd:""`
	}
	var out bytes.Buffer
	parser, err := kong.New(&c, kong.Writers(&out, &out), kong.Bind(&c.Globals), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	assert.NoError(t, err)
	kctx, err := parser.Parse(args)
	assert.NoError(t, err)

	pool := ledgergrpc.NewPool(
		ledgergrpc.WithInterceptor(ledgergrpc.MetadataInterceptor(pb.OwnerMetadataKey, c.Owner)),
		ledgergrpc.WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return h.lis.DialContext(ctx)
		})),
	)
	defer pool.Close()
	conn, err := pool.GetConnection("passthrough:///bufnet")
	assert.NoError(t, err)
	kctx.BindTo(pb.NewLedgerServiceClient(conn), (*pb.LedgerServiceClient)(nil))

	assert.NoError(t, kctx.Run())
	return out.String()
}

func firstID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "created account "); i >= 0 {
			return strings.TrimSpace(line[i+len("created account "):])
		}
	}
	t.Fatalf("no account id in %q", out)
	return ""
}

func TestLedgerctlCommands(t *testing.T) {
	h := newHarness(t)

	out := h.run(t, "--owner=alice", "accounts", "create", "Wallet", "--balance=1000")
	assert.Contains(t, out, "(default)")
	assert.Contains(t, out, "$1,000.00")
	id := firstID(t, out)

	out = h.run(t, "--owner=alice", "tx", "add", id, "EXPENSE", "50", "--category=food")
	assert.Contains(t, out, "recorded EXPENSE $50.00")

	out = h.run(t, "--owner=alice", "accounts", "list")
	assert.Contains(t, out, "Wallet")
	assert.Contains(t, out, "$950.00")

	out = h.run(t, "--owner=alice", "--currency=EUR", "accounts", "show", id)
	assert.Contains(t, out, "food")

	out = h.run(t, "--owner=bob", "tx", "delete", "00000000-0000-0000-0000-000000000001")
	assert.Contains(t, out, "deleted 0 transaction(s)")
	assert.Contains(t, out, "skipped 00000000-0000-0000-0000-000000000001")

	out = h.run(t, "--owner=alice", "reseed", id, "--days=2", "--income-probability=0")
	assert.Contains(t, out, "inserted")
}

func TestPrintTableAligns(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"A", "BB"}, [][]string{{"long cell", "x"}, {"s", "yy"}})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 3, len(lines))
	assert.Equal(t, strings.Index(lines[1], "x"), strings.Index(lines[2], "yy"))
}

func TestFormatAmountFallback(t *testing.T) {
	assert.Equal(t, "$12.50", formatAmount("12.5", "USD"))
	assert.Equal(t, "n/a", formatAmount("n/a", "USD"))
}
