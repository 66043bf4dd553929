// Package frames 预先渲染整段弹跳动画
//
// 按固定帧率对缩放曲线采样，每个采样点对 active 立绘做一次缩放 + 透明度二值化，
// 得到一个只读、定长、按下标访问的帧序列。播放时只查表，不再做任何图像运算。
package frames

import (
	"errors"
	"fmt"
	"math"

	"github.com/decker502/qingpet/pkg/curve"
)

var (
	// ErrInvalidFrameRate 帧率必须 >= 1
	ErrInvalidFrameRate = errors.New("frame rate must be at least 1")
	// ErrInvalidDuration 动画时长必须为正的有限值
	ErrInvalidDuration = errors.New("animation duration must be a positive finite number")
	// ErrNoFrames floor(frameRate × duration) 为 0
	ErrNoFrames = errors.New("frame rate × duration yields no frames")
)

// frameCountEpsilon 修正 0.29*100 = 28.999999999999996 这类浮点误差
const frameCountEpsilon = 1e-9

// AnimationConfig 动画参数
type AnimationConfig struct {
	FrameRate      int              // 帧率（帧/秒）
	Duration       float64          // 动画总时长（秒）
	Curve          curve.ScaleCurve // 缩放曲线
	AlphaThreshold uint8            // 二值化阈值
}

// FrameCount 帧数 = floor(FrameRate × Duration)
func (c AnimationConfig) FrameCount() int {
	if c.FrameRate <= 0 || !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return 0
	}
	return int(math.Floor(float64(c.FrameRate)*c.Duration + frameCountEpsilon))
}

// Validate 构造时快速失败：帧率、时长、帧数必须合法
// 曲线本身的空隙不算错误（空隙处按原尺寸处理），这里不检查
func (c AnimationConfig) Validate() error {
	if c.FrameRate < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidFrameRate, c.FrameRate)
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidDuration, c.Duration)
	}
	if c.FrameCount() < 1 {
		return fmt.Errorf("%w (%d fps × %vs)", ErrNoFrames, c.FrameRate, c.Duration)
	}
	return nil
}
