package domain

import "errors"

// 錯誤分類 (taxonomy)：呼叫端以 errors.Is 判斷屬於哪一類
var (
	// ErrUnauthorized 沒有提供擁有者身分
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound 帳戶或交易不存在，或不屬於呼叫者
	ErrNotFound = errors.New("not found")

	// ErrValidation 金額/餘額等輸入格式錯誤
	ErrValidation = errors.New("validation error")

	// ErrStoreCommit 底層原子單元提交失敗 (已完整 rollback)
	ErrStoreCommit = errors.New("store commit failed")
)

// 細分錯誤，皆包裝上方分類
var (
	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = fmtWrap(ErrNotFound, "account not found")

	// ErrTransactionNotFound 找不到交易
	ErrTransactionNotFound = fmtWrap(ErrNotFound, "transaction not found")

	// ErrInvalidAmount 金額無法解析或不是有限數值
	ErrInvalidAmount = fmtWrap(ErrValidation, "invalid amount")

	// ErrAmountMustBePositive 金額不可為負
	ErrAmountMustBePositive = fmtWrap(ErrValidation, "amount must not be negative")

	// ErrInvalidAccountKind 帳戶類型錯誤
	ErrInvalidAccountKind = fmtWrap(ErrValidation, "invalid account kind")

	// ErrInvalidTransactionKind 交易類型錯誤
	ErrInvalidTransactionKind = fmtWrap(ErrValidation, "invalid transaction kind")

	// ErrNameRequired 帳戶名稱必填
	ErrNameRequired = fmtWrap(ErrValidation, "name is required")

	// ErrInvalidGenerator 產生器參數錯誤
	ErrInvalidGenerator = fmtWrap(ErrValidation, "invalid generator config")
)

type classifiedError struct {
	class error
	msg   string
}

func (e *classifiedError) Error() string { return e.msg }

func (e *classifiedError) Unwrap() error { return e.class }

func fmtWrap(class error, msg string) error {
	return &classifiedError{class: class, msg: msg}
}

// AsStoreError 保留已分類的錯誤，其餘 (driver、context、提交錯誤) 一律視為提交失敗
func AsStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, class := range []error{ErrUnauthorized, ErrNotFound, ErrValidation, ErrStoreCommit} {
		if errors.Is(err, class) {
			return err
		}
	}
	return &storeError{cause: err}
}

type storeError struct {
	cause error
}

func (e *storeError) Error() string { return ErrStoreCommit.Error() + ": " + e.cause.Error() }

func (e *storeError) Unwrap() []error { return []error{ErrStoreCommit, e.cause} }
