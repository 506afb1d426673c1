package llm

import (
	"context"
	"time"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
)

// RetryPolicy 固定间隔重试
type RetryPolicy struct {
	// MaxAttempts 总尝试次数，包含第一次
	MaxAttempts int
	Delay       time.Duration
	// Recover 每次重试前执行，例如预热模型
	Recover func(ctx context.Context)
	// Sleep 为空时使用真实计时器
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do 执行 fn，失败时按策略重试，返回最后一次的错误
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			logger.Log.Infof("预热后进行第 %d 次尝试...", i+1)
			if p.Recover != nil {
				p.Recover(ctx)
			}
			if serr := p.sleep(ctx, p.Delay); serr != nil {
				return serr
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		logger.Log.Errorf("LLM 第 %d 次调用失败: %v", i+1, err)
	}
	return err
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
