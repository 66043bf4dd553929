// Package playback 根据墙上时钟决定当前应显示的动画帧
//
// Scheduler 是一个 Idle / Playing 两状态的状态机，只能在单一的调度上下文
// （ebiten 的 Update 或 Loop 的 goroutine）中使用，不做并发保护。
// 帧下标由"当前时间 - 触发时间"计算，而不是累加帧数，因此卡顿只会跳帧而不会拖慢动画。
package playback

import (
	"image"
	"math"
	"time"

	"github.com/decker502/qingpet/pkg/frames"
)

// State 播放状态
type State int

const (
	// Idle 空闲：显示原尺寸 idle 立绘
	Idle State = iota
	// Playing 播放中：按时间选择预渲染帧
	Playing
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Clock 时钟接口，测试中可替换
type Clock interface {
	Now() time.Time
}

// SystemClock 使用 time.Now（带单调时钟读数）
type SystemClock struct{}

// Now 返回当前时间
func (SystemClock) Now() time.Time { return time.Now() }

// Presenter 接收要显示的位图（compositor.Surface 实现了该接口）
type Presenter interface {
	Place(frame *image.NRGBA)
}

// Snapshot 播放状态快照
type Snapshot struct {
	State      State
	Start      time.Time // 最近一次触发的时间
	FrameIndex int       // 最近一次显示的帧下标（Idle 时为 -1）
}

// Scheduler 播放调度器
//
// 只持有一个 deadline 作为可重置的定时句柄：重新触发会直接覆盖它，
// 因此旧一轮播放遗留的 tick 自然失效，任何时刻最多只有一个待执行的 tick。
type Scheduler struct {
	clock     Clock
	presenter Presenter

	seq  *frames.Sequence
	idle *image.NRGBA

	state      State
	start      time.Time
	frameIndex int

	deadline time.Time
	armed    bool
}

// NewScheduler 创建调度器，初始为 Idle 且没有帧序列（此时触发无效）
func NewScheduler(clock Clock, presenter Presenter) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:      clock,
		presenter:  presenter,
		frameIndex: -1,
	}
}

// SetSequence 换入新的帧序列与 idle 立绘
// 停止当前播放、取消待执行的 tick，并显示 idle 立绘。
// seq 为 nil 表示序列尚未就绪，期间的触发都是空操作。
func (s *Scheduler) SetSequence(seq *frames.Sequence, idle *image.NRGBA) {
	s.seq = seq
	s.idle = idle
	s.goIdle()
}

// Ready 是否已有可播放的帧序列
func (s *Scheduler) Ready() bool {
	return s.seq != nil
}

// TickInterval 两次 tick 的间隔：1s / (2 × 帧率)
// 刷新频率是逻辑帧率的两倍，只影响显示的平滑度，不影响帧下标的计算。
func (s *Scheduler) TickInterval() time.Duration {
	if s.seq == nil {
		return 0
	}
	fps := s.seq.Config().FrameRate
	if fps < 1 {
		fps = 1
	}
	return time.Duration(float64(time.Second) / float64(2*fps))
}

// Trigger 开始（或重新开始）一次播放
// 无论上一次播放是否结束，都从第 0 帧重新计时。
//
// 返回：
//   - bool: 序列未就绪时返回 false（空操作）
func (s *Scheduler) Trigger() bool {
	if s.seq == nil {
		return false
	}
	now := s.clock.Now()
	s.start = now
	s.state = Playing
	s.frameIndex = 0

	if s.seq.Len() == 0 {
		s.goIdle()
		return true
	}
	s.present(s.seq.Frame(0))
	s.arm(now)
	return true
}

// Poll 若 tick 已到期则执行一次 tick
// 由宿主循环反复调用；tick 执行完才会重新设置下一次 deadline，不会重入。
//
// 返回：
//   - bool: 本次是否执行了 tick
func (s *Scheduler) Poll() bool {
	if !s.armed {
		return false
	}
	now := s.clock.Now()
	if now.Before(s.deadline) {
		return false
	}
	s.tick(now)
	return true
}

// NextDeadline 下一次 tick 的时间
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	return s.deadline, s.armed
}

// Snapshot 返回当前播放状态
func (s *Scheduler) Snapshot() Snapshot {
	return Snapshot{State: s.state, Start: s.start, FrameIndex: s.frameIndex}
}

// FrameAt 计算经过 elapsed 后应显示的帧下标：floor(elapsed × 帧率)
// 负值按 0 处理
func FrameAt(elapsed time.Duration, frameRate int) int {
	idx := int(math.Floor(elapsed.Seconds() * float64(frameRate)))
	if idx < 0 {
		return 0
	}
	return idx
}

func (s *Scheduler) tick(now time.Time) {
	s.armed = false
	if s.state != Playing || s.seq == nil {
		return
	}

	idx := FrameAt(now.Sub(s.start), s.seq.Config().FrameRate)
	if idx >= s.seq.Len() {
		s.goIdle()
		return
	}

	s.frameIndex = idx
	s.present(s.seq.Frame(idx))
	s.arm(now)
}

// goIdle 显示原尺寸 idle 立绘并停止 tick
func (s *Scheduler) goIdle() {
	s.state = Idle
	s.frameIndex = -1
	s.armed = false
	s.present(s.idle)
}

func (s *Scheduler) arm(now time.Time) {
	s.deadline = now.Add(s.TickInterval())
	s.armed = true
}

func (s *Scheduler) present(frame *image.NRGBA) {
	if s.presenter != nil && frame != nil {
		s.presenter.Place(frame)
	}
}
