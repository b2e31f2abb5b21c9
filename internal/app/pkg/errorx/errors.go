package errorx

import (
	"errors"
	"fmt"
)

// Error 错误结构（包含可重试标记）
// 可重试：网络抖动、供应商临时故障，下一轮轮询自动重试
// 不可重试：数据缺失、配置错误等致命问题，直接终止当前任务
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Retriable 创建可重试错误
func Retriable(message string) *Error {
	return &Error{
		Code:      500,
		Message:   message,
		Retryable: true,
	}
}

// RetriableWrap 包装底层错误为可重试错误
func RetriableWrap(err error, message string) *Error {
	return &Error{
		Code:       500,
		Message:    message,
		Retryable:  true,
		DevDetails: fmt.Sprintf("%v", err),
	}
}

// NonRetriable 创建不可重试错误
func NonRetriable(message string) *Error {
	return &Error{
		Code:      400,
		Message:   message,
		Retryable: false,
	}
}

// NonRetriableWrap 包装底层错误为不可重试错误
func NonRetriableWrap(err error, message string) *Error {
	return &Error{
		Code:       400,
		Message:    message,
		Retryable:  false,
		DevDetails: fmt.Sprintf("%v", err),
	}
}

// IsRetryable 判断错误是否可重试（未标记的错误默认可重试，交给下一轮处理）
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}
