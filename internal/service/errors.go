package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 资源不存在，或对当前访问者不可见（两者刻意不可区分）
	ErrNotFound = errors.New("not found")
	// ErrForbidden 非作者尝试修改/删除
	ErrForbidden = errors.New("not permitted")
	// ErrInvalidCredentials 登录失败统一提示
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError 字段级校验错误，在任何存储调用之前返回
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
