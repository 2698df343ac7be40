package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

// Pool 以目標地址快取 gRPC 客戶端連線 (thread-safe)，每個地址只保留一條連線。
// 預設走 JSON codec。
type Pool struct {
	conns        sync.Map // map[string]*grpc.ClientConn
	mu           sync.Mutex
	interceptors []grpc.UnaryClientInterceptor
	dialOpts     []grpc.DialOption
}

// PoolOption 設定 Pool
type PoolOption func(*Pool)

// WithInterceptor 加入 UnaryClientInterceptor，依加入順序串接
func WithInterceptor(interceptor grpc.UnaryClientInterceptor) PoolOption {
	return func(p *Pool) {
		p.interceptors = append(p.interceptors, interceptor)
	}
}

// WithDialOptions 附加每條連線都會使用的 DialOption
func WithDialOptions(opts ...grpc.DialOption) PoolOption {
	return func(p *Pool) {
		p.dialOpts = append(p.dialOpts, opts...)
	}
}

func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MetadataInterceptor 在每次呼叫前附加固定的 metadata (例如身分)
//
// 參數:
//
//	kv: ...string - key/value 成對
func MetadataInterceptor(kv ...string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, kv...)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// GetConnection 取得 (或建立) 目標的連線
//
// 參數:
//
//	target: string - 目標地址 (e.g., "localhost:50051")
//	opts: ...grpc.DialOption - 只用於這次建立的額外選項
//
// 回傳值:
//
//	*grpc.ClientConn: 連線
//	error: 建立失敗
func (p *Pool) GetConnection(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	// fast path
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// double-check，加鎖期間可能已被其他 goroutine 建立
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	defaultOpts := []grpc.DialOption{
		// 內部服務走私有網路，不加 TLS
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	if len(p.interceptors) > 0 {
		defaultOpts = append(defaultOpts, grpc.WithChainUnaryInterceptor(p.interceptors...))
	}

	finalOpts := append(append(defaultOpts, p.dialOpts...), opts...)

	// grpc.NewClient 為 lazy connection，第一次呼叫才真正連線
	conn, err := grpc.NewClient(target, finalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for target %s: %w", target, err)
	}

	p.conns.Store(target, conn)
	return conn, nil
}

// load 回傳未關閉的既有連線；已 Shutdown 的連線會被移除
func (p *Pool) load(target string) (*grpc.ClientConn, bool) {
	v, ok := p.conns.Load(target)
	if !ok {
		return nil, false
	}
	conn := v.(*grpc.ClientConn)
	if conn.GetState() == connectivity.Shutdown {
		p.conns.Delete(target)
		return nil, false
	}
	return conn, true
}

// Close 關閉所有連線，回傳第一個錯誤
func (p *Pool) Close() error {
	var firstErr error
	p.conns.Range(func(key, value any) bool {
		conn := value.(*grpc.ClientConn)
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conns.Delete(key)
		return true
	})
	return firstErr
}
