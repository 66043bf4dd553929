package curve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/decker502/qingpet/pkg/easing"
)

// 内置预设名称
const (
	PresetElastic = "elastic" // 先压扁，再弹性回弹并衰减
	PresetSquash  = "squash"  // 压扁 → 拉伸过冲 → 平复 三段式
)

// DefaultPreset 未配置曲线时使用的预设
const DefaultPreset = PresetElastic

// ErrUnknownPreset 预设名称不存在
var ErrUnknownPreset = errors.New("unknown curve preset")

// 两个预设都使用的对称映射：sx = 1 - v, sy = 1 + v
var (
	narrowX = AxisMap{Base: 1, Gain: -1}
	widenX  = AxisMap{Base: 1, Gain: 1}
	tallY   = AxisMap{Base: 1, Gain: 1}
	flatY   = AxisMap{Base: 1, Gain: -1}
)

var presets = map[string]func() ScaleCurve{
	PresetElastic: Elastic,
	PresetSquash:  Squash,
}

// Elastic 弹性预设
//
//	[0, 0.125)  CubicOut    0 → -0.5  （横向拉宽、纵向压扁）
//	[0.125, 1]  ElasticOut -0.5 → 0   （时长 1.25，只播放前 70%，以弹性振荡回到原尺寸附近）
func Elastic() ScaleCurve {
	return ScaleCurve{Segments: []Segment{
		{
			From: 0, To: 0.125,
			Ease: easing.Spec{Kind: easing.CubicOut, Start: 0, End: -0.5, Duration: 0.125},
			X:    narrowX, Y: tallY,
		},
		{
			From: 0.125, To: 1,
			Ease: easing.Spec{Kind: easing.ElasticOut, Start: -0.5, End: 0, Duration: 1.25},
			X:    narrowX, Y: tallY,
		},
	}}
}

// Squash 三段式预设
//
//	[0, 0.2)    CubicOut   0 → 0.3     压扁
//	[0.2, 0.55) QuadOut    0.3 → -0.15 拉伸过冲
//	[0.55, 1]   SineInOut -0.15 → 0    平复
func Squash() ScaleCurve {
	return ScaleCurve{Segments: []Segment{
		{
			From: 0, To: 0.2,
			Ease: easing.Spec{Kind: easing.CubicOut, Start: 0, End: 0.3},
			X:    widenX, Y: flatY,
		},
		{
			From: 0.2, To: 0.55,
			Ease: easing.Spec{Kind: easing.QuadOut, Start: 0.3, End: -0.15},
			X:    widenX, Y: flatY,
		},
		{
			From: 0.55, To: 1,
			Ease: easing.Spec{Kind: easing.SineInOut, Start: -0.15, End: 0},
			X:    widenX, Y: flatY,
		},
	}}
}

// Preset 按名称返回预设曲线（大小写不敏感）
func Preset(name string) (ScaleCurve, error) {
	factory, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ScaleCurve{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return factory(), nil
}

// PresetNames 返回全部预设名（已排序）
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config 曲线的配置文件形式
// Segments 非空时优先于 Preset；两者都为空时使用 DefaultPreset
type Config struct {
	Preset   string    `yaml:"preset,omitempty"`
	Segments []Segment `yaml:"segments,omitempty"`
}

// Resolve 把配置解析为经过校验的曲线
func (c Config) Resolve() (ScaleCurve, error) {
	if len(c.Segments) > 0 {
		curve := ScaleCurve{Segments: append([]Segment(nil), c.Segments...)}
		if err := curve.Validate(); err != nil {
			return ScaleCurve{}, fmt.Errorf("custom curve: %w", err)
		}
		return curve, nil
	}
	name := c.Preset
	if name == "" {
		name = DefaultPreset
	}
	return Preset(name)
}
