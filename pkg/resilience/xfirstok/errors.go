package xfirstok

import "errors"

// 错误定义。
var (
	// ErrNilContext context 为 nil。
	ErrNilContext = errors.New("xfirstok: context is nil")

	// ErrNilCall 操作闭包为 nil。
	ErrNilCall = errors.New("xfirstok: call is nil")
)
