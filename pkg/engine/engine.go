// Package engine 是单个角色的动画引擎实例
//
// Engine 持有帧序列、播放调度器、合成画布和音效，所有状态只在调度上下文
// （ebiten 的 Update 或 playback.Loop）中修改。音效在后台 goroutine 中即发即弃；
// 异步重建的帧序列通过互斥量交还给调度上下文，在下一次 Poll 时整体换入。
package engine

import (
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decker502/qingpet/pkg/compositor"
	"github.com/decker502/qingpet/pkg/frames"
	"github.com/decker502/qingpet/pkg/playback"
	"github.com/decker502/qingpet/pkg/sprite"
)

// Audio 音效协作者
type Audio interface {
	Play()
	Stop()
}

// CanvasResizer 显示端可选实现：画布尺寸变化时收到通知
type CanvasResizer interface {
	SetCanvasSize(width, height int)
}

// Settings 引擎参数
type Settings struct {
	Animation frames.AnimationConfig
	// Echo 为 true 时音效可以叠加；为 false 时每次播放前先停止正在播放的音效
	Echo bool
}

// Assets 立绘素材
type Assets struct {
	Idle   *image.NRGBA // 空闲立绘；nil 时使用占位图
	Active *image.NRGBA // 弹跳立绘；nil 时复制 Idle
}

// resolve 补全缺省素材
func (a Assets) resolve() Assets {
	if a.Idle == nil {
		log.Printf("[Engine] Warning: idle pose missing (using placeholder)")
		a.Idle = sprite.Placeholder()
	}
	if a.Active == nil {
		a.Active = sprite.Clone(a.Idle)
	}
	return a
}

// buildFunc 帧序列构建函数
type buildFunc func(active *image.NRGBA, cfg frames.AnimationConfig) (*frames.Sequence, error)

// restorePoint 异步重建失败时恢复的状态
type restorePoint struct {
	settings Settings
	assets   Assets
	seq      *frames.Sequence
}

type buildResult struct {
	generation uint64
	seq        *frames.Sequence
	err        error
}

// Engine 动画引擎
type Engine struct {
	settings Settings
	assets   Assets
	seq      *frames.Sequence

	clock     playback.Clock
	display   compositor.Display
	audio     Audio
	surface   *compositor.Surface
	scheduler *playback.Scheduler
	build     buildFunc

	// soundMu 让一次 Stop+Play 成为整体，多个触发的音效命令不会交错
	soundMu sync.Mutex

	fallback   *restorePoint
	generation atomic.Uint64
	readyMu    sync.Mutex
	ready      *buildResult
}

// New 创建引擎并同步构建帧序列
//
// 参数：
//   - settings: 引擎参数（帧率 <= 0、时长 <= 0 时立即返回错误）
//   - assets: 立绘素材，缺失项自动补全
//   - display: 显示端
//   - audio: 音效，可为 nil
//   - clock: 时钟，nil 使用系统时钟
//
// 返回：
//   - *Engine: 处于 Idle 状态、显示 idle 立绘的引擎
//   - error: 参数不合法
func New(settings Settings, assets Assets, display compositor.Display, audio Audio, clock playback.Clock) (*Engine, error) {
	if clock == nil {
		clock = playback.SystemClock{}
	}
	e := &Engine{
		clock:   clock,
		display: display,
		audio:   audio,
		build:   frames.Build,
	}
	if err := e.Reload(settings, assets); err != nil {
		return nil, err
	}
	return e, nil
}

// Trigger 触发一次弹跳（点击、按键）
// 每次触发都独立播放一次音效；动画总是从第 0 帧重新开始。
// 帧序列尚未就绪时为空操作，返回 false。
func (e *Engine) Trigger() bool {
	if !e.scheduler.Ready() {
		return false
	}
	e.playSound()
	return e.scheduler.Trigger()
}

// Poll 在调度上下文中周期调用：换入已完成的异步构建，并推进播放
//
// 返回：
//   - bool: 本次是否执行了 tick
func (e *Engine) Poll() bool {
	e.adoptReady()
	return e.scheduler.Poll()
}

// NextDeadline 下一次 tick 的时间（供 playback.Loop 使用）
func (e *Engine) NextDeadline() (time.Time, bool) {
	return e.scheduler.NextDeadline()
}

// Reload 同步重建帧序列并整体换入，旧序列被丢弃
// 参数不合法时返回错误，原有状态保持不变。
func (e *Engine) Reload(settings Settings, assets Assets) error {
	if err := settings.Animation.Validate(); err != nil {
		return fmt.Errorf("invalid animation settings: %w", err)
	}
	assets = assets.resolve()

	seq, err := e.build(assets.Active, settings.Animation)
	if err != nil {
		return fmt.Errorf("failed to build frames: %w", err)
	}

	e.generation.Add(1)
	e.discardReady()
	e.fallback = nil
	e.apply(settings, assets)
	e.seq = seq
	e.scheduler.SetSequence(seq, assets.Idle)
	log.Printf("[Engine] Reloaded: %d frames, canvas %dx%d", seq.Len(), e.canvasWidth(), e.canvasHeight())
	return nil
}

// ReloadAsync 在后台重建帧序列
// 立即丢弃旧序列并显示新的 idle 立绘；构建完成前的触发都是空操作。
// 构建结果在之后的 Poll 中换入；若期间又发起了新的重建，旧结果会被丢弃。
// 构建失败时恢复到发起重建之前的参数、素材和帧序列。
func (e *Engine) ReloadAsync(settings Settings, assets Assets) error {
	if err := settings.Animation.Validate(); err != nil {
		return fmt.Errorf("invalid animation settings: %w", err)
	}
	assets = assets.resolve()

	gen := e.generation.Add(1)
	e.discardReady()
	// 连续重建时保留最早的可用状态
	if e.seq != nil {
		e.fallback = &restorePoint{settings: e.settings, assets: e.assets, seq: e.seq}
	}
	e.apply(settings, assets)
	e.seq = nil
	e.scheduler.SetSequence(nil, assets.Idle)

	active := assets.Active
	cfg := settings.Animation
	build := e.build
	go func() {
		var seq *frames.Sequence
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("frame build panicked: %v", r)
				}
			}()
			seq, err = build(active, cfg)
		}()
		e.readyMu.Lock()
		defer e.readyMu.Unlock()
		if e.generation.Load() != gen {
			return
		}
		e.ready = &buildResult{generation: gen, seq: seq, err: err}
	}()
	return nil
}

// Rebuilding 是否有尚未换入的异步构建
func (e *Engine) Rebuilding() bool {
	return e.seq == nil
}

// SetEcho 修改音效叠加策略
func (e *Engine) SetEcho(echo bool) {
	e.settings.Echo = echo
}

// Settings 当前参数
func (e *Engine) Settings() Settings {
	return e.settings
}

// Assets 当前素材（已补全）
func (e *Engine) Assets() Assets {
	return e.assets
}

// Sequence 当前帧序列（重建期间为 nil）
func (e *Engine) Sequence() *frames.Sequence {
	return e.seq
}

// Snapshot 播放状态
func (e *Engine) Snapshot() playback.Snapshot {
	return e.scheduler.Snapshot()
}

// Canvas 画布尺寸
func (e *Engine) Canvas() (int, int) {
	return e.surface.Size()
}

// apply 更新参数与素材，并按新的 idle 立绘尺寸重建画布
func (e *Engine) apply(settings Settings, assets Assets) {
	e.settings = settings
	e.assets = assets

	b := assets.Idle.Bounds()
	e.surface = compositor.NewSurface(b.Dx(), b.Dy(), e.display)
	if resizer, ok := e.display.(CanvasResizer); ok {
		resizer.SetCanvasSize(e.surface.Size())
	}
	e.scheduler = playback.NewScheduler(e.clock, e.surface)
}

func (e *Engine) adoptReady() {
	e.readyMu.Lock()
	res := e.ready
	e.ready = nil
	e.readyMu.Unlock()

	if res == nil || res.generation != e.generation.Load() {
		return
	}
	if res.err != nil {
		log.Printf("[Engine] Error: background rebuild failed: %v", res.err)
		e.restore()
		return
	}
	e.fallback = nil
	e.seq = res.seq
	e.scheduler.SetSequence(res.seq, e.assets.Idle)
	log.Printf("[Engine] Background rebuild finished: %d frames", res.seq.Len())
}

// restore 回到最近一次可用的帧序列
func (e *Engine) restore() {
	fb := e.fallback
	e.fallback = nil
	if fb == nil {
		log.Printf("[Engine] Warning: no previous frames to restore, triggers stay disabled until next reload")
		return
	}
	e.apply(fb.settings, fb.assets)
	e.seq = fb.seq
	e.scheduler.SetSequence(fb.seq, fb.assets.Idle)
	log.Printf("[Engine] Restored previous frames: %d frames", fb.seq.Len())
}

func (e *Engine) discardReady() {
	e.readyMu.Lock()
	e.ready = nil
	e.readyMu.Unlock()
}

// playSound 在后台 goroutine 中播放音效，不阻塞调度
func (e *Engine) playSound() {
	if e.audio == nil {
		return
	}
	a := e.audio
	echo := e.settings.Echo
	go func() {
		e.soundMu.Lock()
		defer e.soundMu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Engine] Warning: sound playback failed: %v", r)
			}
		}()
		if !echo {
			a.Stop()
		}
		a.Play()
	}()
}

func (e *Engine) canvasWidth() int {
	w, _ := e.surface.Size()
	return w
}

func (e *Engine) canvasHeight() int {
	_, h := e.surface.Size()
	return h
}
