package crawlers

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer 在浏览器操作之间插入固定间隔(调试模式下的慢动作)
// 间隔为0时 Wait 立即返回
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer 创建每interval放行一次操作的节流器
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait 阻塞直到允许下一次操作或ctx结束
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
