// Package curve 把若干缓动函数组合成"时间 → (scaleX, scaleY)"的弹跳轮廓
//
// 一条 ScaleCurve 由按时间升序排列的曲线段组成，每段管辖 [From, To) 区间
// （最后一段包含 To），段内把缓动值按各自的 X/Y 映射换算成缩放系数，
// 因此 X 与 Y 可以不对称（压扁/拉伸）。
package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/decker502/qingpet/pkg/easing"
)

var (
	// ErrEmpty 曲线没有任何曲线段
	ErrEmpty = errors.New("scale curve has no segments")
	// ErrGap 曲线段之间（或与 [0,1] 端点之间）存在空隙
	ErrGap = errors.New("scale curve segments leave a gap")
	// ErrOverlap 曲线段重叠或未按升序排列
	ErrOverlap = errors.New("scale curve segments overlap or are unsorted")
)

// boundaryEpsilon 判定相邻段首尾相接时允许的浮点误差
const boundaryEpsilon = 1e-9

// AxisMap 把缓动值 v 映射为单轴缩放系数：Base + Gain*v
type AxisMap struct {
	Base float64 `yaml:"base"`
	Gain float64 `yaml:"gain"`
}

// Apply 计算映射结果
func (m AxisMap) Apply(v float64) float64 {
	return m.Base + m.Gain*v
}

// Segment 曲线段
type Segment struct {
	From float64     `yaml:"from"` // 起始时间（包含）
	To   float64     `yaml:"to"`   // 结束时间（不包含，最后一段包含）
	Ease easing.Spec `yaml:"ease"` // Ease.Duration 为 0 时使用 To-From
	X    AxisMap     `yaml:"x"`
	Y    AxisMap     `yaml:"y"`
}

// spec 返回补全时长后的缓动描述
func (s Segment) spec() easing.Spec {
	spec := s.Ease
	if spec.Duration == 0 {
		spec.Duration = s.To - s.From
	}
	return spec
}

// Scale 计算段内局部时间对应的缩放系数
func (s Segment) Scale(t float64) (float64, float64) {
	v := s.spec().Ease(t - s.From)
	return s.X.Apply(v), s.Y.Apply(v)
}

// ScaleCurve 弹跳缩放曲线
type ScaleCurve struct {
	Segments []Segment `yaml:"segments"`
}

// Validate 检查曲线段是否有序、不重叠并且铺满 [0,1]
func (c ScaleCurve) Validate() error {
	if len(c.Segments) == 0 {
		return ErrEmpty
	}
	cursor := 0.0
	for i, seg := range c.Segments {
		if !(seg.To > seg.From) {
			return fmt.Errorf("segment #%d [%v, %v): %w", i, seg.From, seg.To, ErrOverlap)
		}
		switch {
		case seg.From > cursor+boundaryEpsilon:
			return fmt.Errorf("segment #%d starts at %v, expected %v: %w", i, seg.From, cursor, ErrGap)
		case seg.From < cursor-boundaryEpsilon:
			return fmt.Errorf("segment #%d starts at %v before %v: %w", i, seg.From, cursor, ErrOverlap)
		}
		if err := seg.spec().Validate(); err != nil {
			return fmt.Errorf("segment #%d: %w", i, err)
		}
		cursor = seg.To
	}
	if math.Abs(cursor-1) > boundaryEpsilon {
		return fmt.Errorf("last segment ends at %v, expected 1: %w", cursor, ErrGap)
	}
	return nil
}

// Segment 返回管辖 t 的曲线段下标
// 按升序检查，首个满足 From <= t < To 的段胜出，因此共享边界归属于从该点开始的段；
// 最后一段额外包含其 To 端点。没有段管辖时返回 -1。
func (c ScaleCurve) Segment(t float64) int {
	if math.IsNaN(t) {
		return -1
	}
	last := len(c.Segments) - 1
	for i, seg := range c.Segments {
		if t >= seg.From && (t < seg.To || (i == last && t == seg.To)) {
			return i
		}
	}
	return -1
}

// Evaluate 计算归一化时间 t 对应的 (scaleX, scaleY)
// t 不在 [0,1] 内或没有曲线段管辖时返回 (1, 1)。纯函数，可以任意顺序重复调用。
func (c ScaleCurve) Evaluate(t float64) (float64, float64) {
	if !(t >= 0 && t <= 1) {
		return 1.0, 1.0
	}
	i := c.Segment(t)
	if i < 0 {
		return 1.0, 1.0
	}
	return c.Segments[i].Scale(t)
}
