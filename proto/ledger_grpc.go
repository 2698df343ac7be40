package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	ledgergrpc "github.com/JoeShih716/go-expense-ledger/pkg/grpc"
)

const ServiceName = "ledger.v1.LedgerService"

// OwnerMetadataKey 攜帶呼叫者身分的 metadata key
const OwnerMetadataKey = "x-owner-id"

const (
	LedgerService_CreateAccount_FullMethodName      = "/ledger.v1.LedgerService/CreateAccount"
	LedgerService_SetDefaultAccount_FullMethodName  = "/ledger.v1.LedgerService/SetDefaultAccount"
	LedgerService_GetAccount_FullMethodName         = "/ledger.v1.LedgerService/GetAccount"
	LedgerService_ListAccounts_FullMethodName       = "/ledger.v1.LedgerService/ListAccounts"
	LedgerService_CreateTransaction_FullMethodName  = "/ledger.v1.LedgerService/CreateTransaction"
	LedgerService_DeleteTransactions_FullMethodName = "/ledger.v1.LedgerService/DeleteTransactions"
	LedgerService_ReseedAccount_FullMethodName      = "/ledger.v1.LedgerService/ReseedAccount"
)

// WithOwner 把擁有者身分放進 outgoing metadata
func WithOwner(ctx context.Context, owner string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, OwnerMetadataKey, owner)
}

// LedgerServiceClient 客戶端介面
type LedgerServiceClient interface {
	CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error)
	SetDefaultAccount(ctx context.Context, in *SetDefaultAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error)
	ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error)
	CreateTransaction(ctx context.Context, in *CreateTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error)
	DeleteTransactions(ctx context.Context, in *DeleteTransactionsRequest, opts ...grpc.CallOption) (*DeleteTransactionsResponse, error)
	ReseedAccount(ctx context.Context, in *ReseedAccountRequest, opts ...grpc.CallOption) (*ReseedAccountResponse, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(ledgergrpc.CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[CreateAccountRequest, AccountResponse](ctx, c.cc, LedgerService_CreateAccount_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) SetDefaultAccount(ctx context.Context, in *SetDefaultAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[SetDefaultAccountRequest, AccountResponse](ctx, c.cc, LedgerService_SetDefaultAccount_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountRequest, GetAccountResponse](ctx, c.cc, LedgerService_GetAccount_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ListAccounts(ctx context.Context, in *ListAccountsRequest, opts ...grpc.CallOption) (*ListAccountsResponse, error) {
	return invoke[ListAccountsRequest, ListAccountsResponse](ctx, c.cc, LedgerService_ListAccounts_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) CreateTransaction(ctx context.Context, in *CreateTransactionRequest, opts ...grpc.CallOption) (*TransactionResponse, error) {
	return invoke[CreateTransactionRequest, TransactionResponse](ctx, c.cc, LedgerService_CreateTransaction_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) DeleteTransactions(ctx context.Context, in *DeleteTransactionsRequest, opts ...grpc.CallOption) (*DeleteTransactionsResponse, error) {
	return invoke[DeleteTransactionsRequest, DeleteTransactionsResponse](ctx, c.cc, LedgerService_DeleteTransactions_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ReseedAccount(ctx context.Context, in *ReseedAccountRequest, opts ...grpc.CallOption) (*ReseedAccountResponse, error) {
	return invoke[ReseedAccountRequest, ReseedAccountResponse](ctx, c.cc, LedgerService_ReseedAccount_FullMethodName, in, opts)
}

// LedgerServiceServer 服務端介面，實作需嵌入 UnimplementedLedgerServiceServer
type LedgerServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error)
	SetDefaultAccount(context.Context, *SetDefaultAccountRequest) (*AccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error)
	CreateTransaction(context.Context, *CreateTransactionRequest) (*TransactionResponse, error)
	DeleteTransactions(context.Context, *DeleteTransactionsRequest) (*DeleteTransactionsResponse, error)
	ReseedAccount(context.Context, *ReseedAccountRequest) (*ReseedAccountResponse, error)
	mustEmbedUnimplementedLedgerServiceServer()
}

type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*AccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateAccount not implemented")
}
func (UnimplementedLedgerServiceServer) SetDefaultAccount(context.Context, *SetDefaultAccountRequest) (*AccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetDefaultAccount not implemented")
}
func (UnimplementedLedgerServiceServer) GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAccount not implemented")
}
func (UnimplementedLedgerServiceServer) ListAccounts(context.Context, *ListAccountsRequest) (*ListAccountsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAccounts not implemented")
}
func (UnimplementedLedgerServiceServer) CreateTransaction(context.Context, *CreateTransactionRequest) (*TransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateTransaction not implemented")
}
func (UnimplementedLedgerServiceServer) DeleteTransactions(context.Context, *DeleteTransactionsRequest) (*DeleteTransactionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteTransactions not implemented")
}
func (UnimplementedLedgerServiceServer) ReseedAccount(context.Context, *ReseedAccountRequest) (*ReseedAccountResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReseedAccount not implemented")
}
func (UnimplementedLedgerServiceServer) mustEmbedUnimplementedLedgerServiceServer() {}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

func unary[Req, Resp any](fullMethod string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateAccount",
			Handler:    unary(LedgerService_CreateAccount_FullMethodName, LedgerServiceServer.CreateAccount),
		},
		{
			MethodName: "SetDefaultAccount",
			Handler:    unary(LedgerService_SetDefaultAccount_FullMethodName, LedgerServiceServer.SetDefaultAccount),
		},
		{
			MethodName: "GetAccount",
			Handler:    unary(LedgerService_GetAccount_FullMethodName, LedgerServiceServer.GetAccount),
		},
		{
			MethodName: "ListAccounts",
			Handler:    unary(LedgerService_ListAccounts_FullMethodName, LedgerServiceServer.ListAccounts),
		},
		{
			MethodName: "CreateTransaction",
			Handler:    unary(LedgerService_CreateTransaction_FullMethodName, LedgerServiceServer.CreateTransaction),
		},
		{
			MethodName: "DeleteTransactions",
			Handler:    unary(LedgerService_DeleteTransactions_FullMethodName, LedgerServiceServer.DeleteTransactions),
		},
		{
			MethodName: "ReseedAccount",
			Handler:    unary(LedgerService_ReseedAccount_FullMethodName, LedgerServiceServer.ReseedAccount),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}
