// Package easing 提供带输出区间重映射的缓动函数
//
// 每个缓动函数接受归一化时间 t，按 start + (end-start) * raw(t/duration) 计算数值。
// 公式由 gween/ease 提供（其 TweenFunc(t, b, c, d) 恰好是这种重映射形式），ElasticOut 除外。
// Elastic / Back 等曲线的输出可以超出 [start, end]，这是弹跳"回弹"效果所需要的。
//
// 参考：https://easings.net/
package easing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDuration 缓动时长必须为正的有限值
var ErrInvalidDuration = errors.New("easing duration must be a positive finite number")

// Kind 缓动曲线类型
type Kind int

const (
	// Linear 线性（无缓动）
	Linear Kind = iota
	// QuadIn 二次方缓入：t²
	QuadIn
	// QuadOut 二次方缓出：1-(1-t)²
	QuadOut
	// QuadInOut 二次方缓入缓出
	QuadInOut
	// CubicIn 三次方缓入：t³
	CubicIn
	// CubicOut 三次方缓出：1-(1-t)³
	CubicOut
	// CubicInOut 三次方缓入缓出
	CubicInOut
	// SineIn 正弦缓入
	SineIn
	// SineOut 正弦缓出
	SineOut
	// SineInOut 正弦缓入缓出：-(cos(πt)-1)/2
	SineInOut
	// ExpoOut 指数缓出
	ExpoOut
	// BackOut 回退缓出（末端过冲）
	BackOut
	// ElasticOut 弹性缓出：sin(-13π/2·(t+1))·2^(-10t) + 1
	ElasticOut
	// BounceOut 落地弹跳缓出
	BounceOut
)

var kindNames = map[Kind]string{
	Linear:     "linear",
	QuadIn:     "quad_in",
	QuadOut:    "quad_out",
	QuadInOut:  "quad_in_out",
	CubicIn:    "cubic_in",
	CubicOut:   "cubic_out",
	CubicInOut: "cubic_in_out",
	SineIn:     "sine_in",
	SineOut:    "sine_out",
	SineInOut:  "sine_in_out",
	ExpoOut:    "expo_out",
	BackOut:    "back_out",
	ElasticOut: "elastic_out",
	BounceOut:  "bounce_out",
}

var kindFuncs = map[Kind]ease.TweenFunc{
	Linear:     ease.Linear,
	QuadIn:     ease.InQuad,
	QuadOut:    ease.OutQuad,
	QuadInOut:  ease.InOutQuad,
	CubicIn:    ease.InCubic,
	CubicOut:   ease.OutCubic,
	CubicInOut: ease.InOutCubic,
	SineIn:     ease.InSine,
	SineOut:    ease.OutSine,
	SineInOut:  ease.InOutSine,
	ExpoOut:    ease.OutExpo,
	BackOut:    ease.OutBack,
	ElasticOut: outElastic,
	BounceOut:  ease.OutBounce,
}

// outElastic 弹性缓出
// gween 的 OutElastic 使用 0.3 周期的 Penner 形式，振荡略快；这里固定为 13π/2 的角频率。
func outElastic(t, b, c, d float32) float32 {
	x := float64(t / d)
	raw := math.Sin(-13*math.Pi/2*(x+1))*math.Pow(2, -10*x) + 1
	return b + c*float32(raw)
}

// String 返回曲线类型的配置名（如 "cubic_out"）
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind 根据配置名解析曲线类型
// 大小写不敏感，同时接受 "CubicOut" / "cubic-out" / "cubic_out" 等写法
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for kind, kindName := range kindNames {
		if normalized == kindName || normalized == strings.ReplaceAll(kindName, "_", "") {
			return kind, nil
		}
	}
	return Linear, fmt.Errorf("unknown easing kind %q", name)
}

// MarshalYAML 以配置名序列化
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML 从配置名反序列化
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	kind, err := ParseKind(name)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Raw 计算曲线在 [0,1] 区间上的原始值（start=0, end=1, duration=1）
func (k Kind) Raw(t float64) float64 {
	fn, ok := kindFuncs[k]
	if !ok {
		fn = ease.Linear
	}
	return float64(fn(float32(t), 0, 1, 1))
}

// Spec 缓动函数描述：曲线类型 + 输出区间 + 作用时长
type Spec struct {
	Kind     Kind    `yaml:"kind"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	Duration float64 `yaml:"duration,omitempty"` // 为 0 时由所属曲线段补全
}

// Validate 检查时长是否合法
func (s Spec) Validate() error {
	if s.Duration <= 0 || math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
		return fmt.Errorf("%s: %w (got %v)", s.Kind, ErrInvalidDuration, s.Duration)
	}
	return nil
}

// Ease 计算 t 时刻的缓动值
// 公式：start + (end-start) * raw(t/duration)
//
// 纯函数，无副作用；t 不会被截断到 [0, duration]
func (s Spec) Ease(t float64) float64 {
	fn, ok := kindFuncs[s.Kind]
	if !ok {
		fn = ease.Linear
	}
	return float64(fn(float32(t), float32(s.Start), float32(s.End-s.Start), float32(s.Duration)))
}
