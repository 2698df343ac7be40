package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀) - 適用於大多數檔案
	FileModeReadOnly fs.FileMode = 0644

	// rwxr-xr-x - 適用於目錄
	FileModeExecutable fs.FileMode = 0755

	// rw------- (只有擁有者可讀寫) - 適用於帳務資料
	FileModePrivate fs.FileMode = 0600
)

var (
	// ErrClosed WAL 已關閉
	ErrClosed = errors.New("wal: closed")

	// ErrBroken 寫入失敗後無法截斷殘留資料，WAL 不再接受寫入
	ErrBroken = errors.New("wal: broken after failed write")
)

// file WAL 需要的檔案操作，*os.File 即實作
type file interface {
	io.ReadWriteSeeker
	Sync() error
	Truncate(size int64) error
	Stat() (fs.FileInfo, error)
	Close() error
}

// WAL 以 JSON Lines 追加寫入的 Write-Ahead Log，每筆寫入都會 fsync
type WAL struct {
	file   file
	mu     sync.Mutex
	closed bool
	broken error
}

// NewWAL 開啟或建立一個 WAL 檔案 (必要時建立上層目錄)
// O_RDWR讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, FileModeExecutable); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModePrivate)
	if err != nil {
		return nil, err
	}
	return &WAL{file: f}, nil
}

// Write 寫入一筆資料並刷入硬碟，回傳 nil 才代表已持久化。
// 失敗時檔案截斷回寫入前的長度，重啟後不會重放這筆資料。
func (w *WAL) Write(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.broken != nil {
		return w.broken
	}

	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	offset := info.Size()

	if _, err := w.file.Write(line); err != nil {
		return w.discard(offset, err)
	}
	if err := w.file.Sync(); err != nil {
		return w.discard(offset, err)
	}
	return nil
}

// discard 把檔案截斷回 offset；截斷失敗則標記為 broken
func (w *WAL) discard(offset int64, cause error) error {
	if err := w.file.Truncate(offset); err != nil {
		w.broken = fmt.Errorf("%w: %v (truncate: %v)", ErrBroken, cause, err)
		return w.broken
	}
	return cause
}

// Close 關閉檔案
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// ReadAll 讀取所有資料
// callback 接收每一筆的原始 JSON，避免一次將所有資料載入記憶體
func (w *WAL) ReadAll(callback func(jsonRaw []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	// 確保從頭讀取
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
	return nil
}
