package service

import (
	"errors"
	"fmt"
	"net"
)

// ErrCancelled 用户主动取消，静默中止，绝不作为错误展示
var ErrCancelled = errors.New("operation cancelled")

// RateLimitError 后端限流/过载（429），重试网关据此做指数退避
type RateLimitError struct {
	Status int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("server is busy (%d)", e.Status)
}

// ContractError 后端响应不满足结构契约（如视频提示词不足两条），不重试
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return e.Msg
}

// IsRetriable 限流或瞬时网络错误可重试，其余立即失败
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
