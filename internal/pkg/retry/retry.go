package retry

import (
	"context"
	log "log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Options 最多尝试 MaxRetries+1 次，第 n 次(n>=2)前等待 min(BaseDelay*2^(n-2), MaxDelay)
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

type Operation func() error

// Notify 在每次重试等待前调用，attempt 为刚刚失败的尝试序号(从 1 开始)
type Notify func(err error, attempt int, next time.Duration)

// Controller 有界指数退避，等待只挂起调用方 goroutine
type Controller struct {
	opts Options
}

func NewController(opts Options) *Controller {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxDelay < opts.BaseDelay {
		opts.MaxDelay = opts.BaseDelay
	}
	return &Controller{opts: opts}
}

func (c *Controller) Options() Options {
	return c.opts
}

// MaxAttempts 总尝试次数
func (c *Controller) MaxAttempts() int {
	return c.opts.MaxRetries + 1
}

// DelayBefore 第 attempt 次尝试之前的等待时间，第 1 次为 0
func (c *Controller) DelayBefore(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := c.opts.BaseDelay
	for i := 2; i < attempt; i++ {
		if d >= c.opts.MaxDelay/2 {
			return c.opts.MaxDelay
		}
		d *= 2
	}
	return min(d, c.opts.MaxDelay)
}

// newBackOff 去掉随机抖动，使等待序列严格等于 DelayBefore
func (c *Controller) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = c.opts.MaxDelay
	return b
}

// Execute 执行 op 直至成功、返回 Permanent 错误、次数耗尽或 ctx 取消
// 最后一次失败的错误原样返回
func (c *Controller) Execute(ctx context.Context, label string, op Operation, notify Notify) error {
	attempt := 0
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			attempt++
			return struct{}{}, op()
		},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.MaxAttempts())),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WarnContext(ctx, "attempt failed, retrying",
				"label", label,
				"attempt", attempt,
				"max_attempts", c.MaxAttempts(),
				"next_delay", next,
				"err", err)
			if notify != nil {
				notify(err, attempt, next)
			}
		}),
	)
	if err != nil {
		log.ErrorContext(ctx, "operation failed", "label", label, "attempts", attempt, "err", err)
	}
	return err
}

// Permanent 标记不可重试的错误
func Permanent(err error) error {
	return backoff.Permanent(err)
}
