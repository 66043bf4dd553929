package playback

import (
	"context"
	"time"
)

// Driver 可被 Loop 驱动的对象（Scheduler 与 engine.Engine 都实现了它）
type Driver interface {
	Trigger() bool
	Poll() bool
	NextDeadline() (time.Time, bool)
}

// Loop 没有图形主循环时使用的调度上下文
//
// 所有对 Driver 的调用都在 Run 所在的 goroutine 中执行；其他 goroutine 通过
// Trigger / Do 投递请求。Loop 只持有一个 time.Timer，每处理完一个事件就按
// NextDeadline 重新设置，因此不会有两个计时器同时推进帧。
type Loop struct {
	driver   Driver
	triggers chan struct{}
	tasks    chan func()
	done     chan struct{}
}

// NewLoop 创建事件循环
func NewLoop(driver Driver) *Loop {
	return &Loop{
		driver:   driver,
		triggers: make(chan struct{}, 16),
		tasks:    make(chan func()),
		done:     make(chan struct{}),
	}
}

// Trigger 投递一次触发请求；循环已退出时直接返回
func (l *Loop) Trigger() {
	select {
	case l.triggers <- struct{}{}:
	case <-l.done:
	}
}

// Do 在调度上下文中执行 fn 并等待其完成
//
// 返回：
//   - bool: 循环已退出、fn 未执行时返回 false
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	select {
	case l.tasks <- func() { fn(); close(finished) }:
	case <-l.done:
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Run 运行事件循环直到 ctx 取消
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if deadline, ok := l.driver.NextDeadline(); ok {
			timer.Reset(max(time.Until(deadline), 0))
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.triggers:
			l.driver.Trigger()
		case fn := <-l.tasks:
			fn()
		case <-timer.C:
			l.driver.Poll()
		}
	}
}
