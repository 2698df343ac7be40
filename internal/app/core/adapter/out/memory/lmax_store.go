package memory

import (
	"context"
	"sync"

	"github.com/JoeShih716/go-expense-ledger/internal/app/core/usecase"
)

// unitRequest 單元請求包裝 channel，讓 RunInTx 可以等待結果
type unitRequest struct {
	ctx      context.Context
	fn       func(ctx context.Context, tx usecase.LedgerTx) error
	readOnly bool
	result   chan error
}

// LMAXStore 單一 writer goroutine 依序執行所有單元，不需要鎖
//
// RunInTx(等待) -> Channel -> Run Loop (核心) -> State + WAL -> Result Channel -> RunInTx(收到結果)
type LMAXStore struct {
	state   *state
	journal Journal
	// 輸送帶 負責接收單元
	requests chan *unitRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool

	startOnce sync.Once
	cancel    context.CancelFunc
	stopped   chan struct{}
}

// NewLMAXStore 建立一個新的 LMAXStore 實例，需呼叫 Start 後才會處理單元
//
// 參數:
//
//	journal: Write-Ahead Log 實例 (nil 表示不持久化)
//	buffer: 輸送帶容量
//
// 回傳:
//
//	*LMAXStore: LMAXStore 實例
//	error: 初始化錯誤
func NewLMAXStore(journal Journal, buffer int) (*LMAXStore, error) {
	s := newState()
	// 在啟動前先恢復資料
	if err := s.recoverFromWAL(journal); err != nil {
		return nil, err
	}
	if buffer <= 0 {
		buffer = 1000
	}
	return &LMAXStore{
		state:    s,
		journal:  journal,
		requests: make(chan *unitRequest, buffer),
		requestPool: sync.Pool{
			New: func() any {
				return &unitRequest{result: make(chan error, 1)}
			},
		},
		stopped: make(chan struct{}),
	}, nil
}

// Start 啟動核心引擎 (非同步)，ctx 取消後處理完剩餘單元才停止
func (l *LMAXStore) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		ctx, l.cancel = context.WithCancel(ctx)
		go l.run(ctx)
	})
}

func (l *LMAXStore) run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的單元處理完
			l.drain()
			return
		case req := <-l.requests:
			l.process(req)
		}
	}
}

func (l *LMAXStore) drain() {
	for {
		select {
		case req := <-l.requests:
			l.process(req)
		default:
			return
		}
	}
}

// process 處理單一單元並回傳結果
func (l *LMAXStore) process(req *unitRequest) {
	req.result <- l.state.execute(req.ctx, l.journal, req.readOnly, req.fn)
}

func (l *LMAXStore) submit(ctx context.Context, readOnly bool, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	req := l.requestPool.Get().(*unitRequest)
	req.ctx, req.fn, req.readOnly = ctx, fn, readOnly
	// 清空 Channel (雖然理論上應該是空的，但保險起見)
	select {
	case <-req.result:
	default:
	}

	select {
	case l.requests <- req:
	case <-l.stopped:
		return ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// 已進入輸送帶就必須等結果，否則呼叫端放棄後單元仍可能被提交
	var err error
	select {
	case err = <-req.result:
	case <-l.stopped:
		select {
		case err = <-req.result:
		default:
			err = ErrStoreClosed
		}
	}
	req.ctx, req.fn = nil, nil
	l.requestPool.Put(req)
	return err
}

// RunInTx 將讀寫單元送入輸送帶並等待結果
func (l *LMAXStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	return l.submit(ctx, false, fn)
}

// ReadTx 唯讀單元也經過輸送帶，確保看到的是已提交狀態
func (l *LMAXStore) ReadTx(ctx context.Context, fn func(ctx context.Context, tx usecase.LedgerTx) error) error {
	return l.submit(ctx, true, fn)
}

// Close 停止引擎並等待剩餘單元處理完
func (l *LMAXStore) Close() error {
	// 未啟動過：直接標記停止
	l.startOnce.Do(func() { close(l.stopped) })
	if l.cancel != nil {
		l.cancel()
		<-l.stopped
	}
	return nil
}

var _ usecase.LedgerStore = (*LMAXStore)(nil)
