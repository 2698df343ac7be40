package grpc

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
	pb "github.com/JoeShih716/go-expense-ledger/proto"
)

type GrpcServer struct {
	pb.UnimplementedLedgerServiceServer
	core       *usecase.CoreUseCase
	seedConfig usecase.GeneratorConfig
}

// NewGrpcServer 建立 gRPC adapter；seedConfig 為 ReseedAccount 未指定參數時的預設
func NewGrpcServer(core *usecase.CoreUseCase, seedConfig usecase.GeneratorConfig) *GrpcServer {
	return &GrpcServer{
		core:       core,
		seedConfig: seedConfig,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *pb.CreateAccountRequest) (*pb.AccountResponse, error) {
	account, err := s.core.CreateAccount(ctx, ownerFrom(ctx), usecase.CreateAccountParams{
		Name:           req.Name,
		Kind:           domain.AccountKind(req.Kind),
		InitialBalance: req.InitialBalance,
		RequestDefault: req.IsDefault,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.AccountResponse{Account: toPbAccount(account)}, nil
}

func (s *GrpcServer) SetDefaultAccount(ctx context.Context, req *pb.SetDefaultAccountRequest) (*pb.AccountResponse, error) {
	id, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	account, err := s.core.SetDefaultAccount(ctx, ownerFrom(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.AccountResponse{Account: toPbAccount(account)}, nil
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *pb.GetAccountRequest) (*pb.GetAccountResponse, error) {
	id, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	account, trans, err := s.core.GetAccountWithTransactions(ctx, ownerFrom(ctx), id)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &pb.GetAccountResponse{
		Account:      toPbAccount(account),
		Transactions: make([]*pb.Transaction, 0, len(trans)),
	}
	for _, t := range trans {
		resp.Transactions = append(resp.Transactions, toPbTransaction(t))
	}
	return resp, nil
}

func (s *GrpcServer) ListAccounts(ctx context.Context, _ *pb.ListAccountsRequest) (*pb.ListAccountsResponse, error) {
	summaries, err := s.core.ListAccounts(ctx, ownerFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &pb.ListAccountsResponse{Accounts: make([]*pb.AccountSummary, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Accounts = append(resp.Accounts, &pb.AccountSummary{
			Account:          toPbAccount(sum.Account),
			TransactionCount: sum.TransactionCount,
		})
	}
	return resp, nil
}

func (s *GrpcServer) CreateTransaction(ctx context.Context, req *pb.CreateTransactionRequest) (*pb.TransactionResponse, error) {
	id, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	var occurredAt time.Time
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid occurred_at: %v", err)
		}
	}
	created, err := s.core.CreateTransaction(ctx, ownerFrom(ctx), usecase.CreateTransactionParams{
		AccountID:   id,
		Kind:        domain.TransactionKind(req.Kind),
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.TransactionResponse{Transaction: toPbTransaction(created)}, nil
}

// DeleteTransactions 無法解析的 id 視同不存在，列入 skipped
func (s *GrpcServer) DeleteTransactions(ctx context.Context, req *pb.DeleteTransactionsRequest) (*pb.DeleteTransactionsResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.TransactionIds))
	var malformed []string
	for _, raw := range req.TransactionIds {
		id, err := uuid.Parse(raw)
		if err != nil {
			malformed = append(malformed, raw)
			continue
		}
		ids = append(ids, id)
	}

	result, err := s.core.DeleteTransactions(ctx, ownerFrom(ctx), ids)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &pb.DeleteTransactionsResponse{
		Deleted: int32(result.Deleted),
		Skipped: malformed,
		Deltas:  make([]*pb.BalanceDelta, 0, len(result.Deltas)),
	}
	for _, id := range result.Skipped {
		resp.Skipped = append(resp.Skipped, id.String())
	}
	for _, d := range result.Deltas {
		resp.Deltas = append(resp.Deltas, &pb.BalanceDelta{
			AccountId: d.AccountID.String(),
			Amount:    d.Amount.StringFixed(domain.AmountScale),
		})
	}
	return resp, nil
}

func (s *GrpcServer) ReseedAccount(ctx context.Context, req *pb.ReseedAccountRequest) (*pb.ReseedAccountResponse, error) {
	id, err := parseID("account_id", req.AccountId)
	if err != nil {
		return nil, err
	}
	gen := s.seedConfig
	if req.WindowDays > 0 {
		gen.WindowDays = int(req.WindowDays)
	}
	if req.IncomeProbability != nil {
		gen.IncomeProbability = *req.IncomeProbability
	}

	result, err := s.core.ReseedAccount(ctx, ownerFrom(ctx), id, gen)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.ReseedAccountResponse{
		Inserted: int32(result.Inserted),
		Balance:  result.Balance.StringFixed(domain.AmountScale),
	}, nil
}

// ownerFrom 從 metadata 取得呼叫者身分，沒有時回傳空值 (由 usecase 判定 Unauthorized)
func ownerFrom(ctx context.Context) domain.OwnerID {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(pb.OwnerMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return domain.OwnerID(values[0])
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s: %q", field, raw)
	}
	return id, nil
}

// toStatus 把錯誤分類轉成 gRPC status code
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		code = codes.Unauthenticated
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, domain.ErrStoreCommit):
		code = codes.Aborted
	default:
		log.Printf("unexpected ledger error: %v", err)
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}

func toPbAccount(a *domain.Account) *pb.Account {
	return &pb.Account{
		Id:        a.ID.String(),
		Name:      a.Name,
		Kind:      string(a.Kind),
		Balance:   a.Balance.StringFixed(domain.AmountScale),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toPbTransaction(t *domain.Transaction) *pb.Transaction {
	return &pb.Transaction{
		Id:          t.ID.String(),
		AccountId:   t.AccountID.String(),
		Kind:        string(t.Kind),
		Amount:      t.Amount.StringFixed(domain.AmountScale),
		Description: t.Description,
		Category:    t.Category,
		Status:      string(t.Status),
		OccurredAt:  t.OccurredAt.UTC().Format(time.RFC3339),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
