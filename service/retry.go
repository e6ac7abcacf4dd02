package service

import (
	"context"
	"sync"
	"time"

	"IdeaToVideo-server/config"
)

// CancelFlag 一次运行共享的取消标记：循环开始处轮询，退避等待中可被打断。
// 已发出的网络调用不受影响，总是跑到成功或失败。
type CancelFlag struct {
	once sync.Once
	ch   chan struct{}
}

func NewCancelFlag() *CancelFlag {
	return &CancelFlag{ch: make(chan struct{})}
}

func (c *CancelFlag) Cancel() {
	c.once.Do(func() { close(c.ch) })
}

func (c *CancelFlag) Cancelled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

func (c *CancelFlag) Done() <-chan struct{} {
	return c.ch
}

// RetryObserver 每次退避等待前回调 (attempt, maxAttempts)，attempt 从 1 递增
type RetryObserver func(attempt, maxAttempts int)

// Gateway 重试网关：对单次出站生成调用做有界指数退避。
// 同一个实例可复用于一个场景的两条视频变体，各自传独立的 observer。
type Gateway struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func NewGateway() *Gateway {
	return &Gateway{
		MaxAttempts: config.AppConfig.Retry.MaxAttempts,
		BaseDelay:   time.Duration(config.AppConfig.Retry.BaseDelayMs) * time.Millisecond,
	}
}

// Do 执行一次能力调用：成功立即返回；限流/瞬时网络错误按 BaseDelay×2^attempt
// 退避后重试；其余错误立即上抛。取消在每次尝试前检查，并能打断退避等待。
// 尝试次数耗尽后返回最后一次错误。
func (g *Gateway) Do(ctx context.Context, cancel *CancelFlag, onRetry RetryObserver, call func() error) error {
	var lastErr error

	for attempt := 0; attempt < g.MaxAttempts; attempt++ {
		if cancel != nil && cancel.Cancelled() {
			return ErrCancelled
		}
		if ctx != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		err := call()
		if err == nil {
			return nil
		}
		if !IsRetriable(err) {
			return err
		}
		lastErr = err

		if attempt == g.MaxAttempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt+1, g.MaxAttempts)
		}

		delay := g.BaseDelay * (1 << attempt)
		timer := time.NewTimer(delay)
		var cancelCh <-chan struct{}
		if cancel != nil {
			cancelCh = cancel.Done()
		}
		var ctxCh <-chan struct{}
		if ctx != nil {
			ctxCh = ctx.Done()
		}
		select {
		case <-timer.C:
		case <-cancelCh:
			timer.Stop()
			return ErrCancelled
		case <-ctxCh:
			timer.Stop()
			return ctx.Err()
		}
	}

	return lastErr
}
