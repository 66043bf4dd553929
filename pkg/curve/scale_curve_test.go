package curve

import (
	"errors"
	"math"
	"testing"

	"github.com/decker502/qingpet/pkg/easing"
	"gopkg.in/yaml.v3"
)

const tolerance = 1e-4

func TestEvaluateFiniteInsideUnitRange(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			c, err := Preset(name)
			if err != nil {
				t.Fatalf("Preset(%q): %v", name, err)
			}
			for i := 0; i <= 1000; i++ {
				ti := float64(i) / 1000
				sx, sy := c.Evaluate(ti)
				if math.IsNaN(sx) || math.IsInf(sx, 0) || math.IsNaN(sy) || math.IsInf(sy, 0) {
					t.Fatalf("Evaluate(%v) = (%v, %v)，应为有限值", ti, sx, sy)
				}
			}
		})
	}
}

func TestEvaluateOutsideUnitRangeIsIdentity(t *testing.T) {
	c := Elastic()
	inputs := []float64{-0.5, -1e-9, 1.0000001, 2, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, ti := range inputs {
		sx, sy := c.Evaluate(ti)
		if sx != 1.0 || sy != 1.0 {
			t.Errorf("Evaluate(%v) = (%v, %v), 期望 (1, 1)", ti, sx, sy)
		}
	}
}

func TestSegmentSelectionIsTotal(t *testing.T) {
	for _, name := range PresetNames() {
		c, _ := Preset(name)
		for i := 0; i <= 10000; i++ {
			ti := float64(i) / 10000
			if idx := c.Segment(ti); idx < 0 {
				t.Fatalf("%s: t=%v 没有对应的曲线段", name, ti)
			}
		}
	}
}

func TestSegmentBoundaryTieBreak(t *testing.T) {
	tests := []struct {
		name  string
		curve ScaleCurve
		input float64
		want  int
	}{
		{"弹性预设起点", Elastic(), 0, 0},
		{"弹性预设边界归属后一段", Elastic(), 0.125, 1},
		{"弹性预设边界之前", Elastic(), 0.1249, 0},
		{"弹性预设终点包含在最后一段", Elastic(), 1, 1},
		{"三段式第一边界", Squash(), 0.2, 1},
		{"三段式第二边界", Squash(), 0.55, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.curve.Segment(tt.input); got != tt.want {
				t.Errorf("Segment(%v) = %d, 期望 %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestElasticPresetValues(t *testing.T) {
	c := Elastic()

	sx, sy := c.Evaluate(0)
	if math.Abs(sx-1) > tolerance || math.Abs(sy-1) > tolerance {
		t.Errorf("t=0 时应为原尺寸，得到 (%v, %v)", sx, sy)
	}

	// 第一段：CubicOut(0.5) = 0.875，v = -0.5*0.875 = -0.4375
	sx, sy = c.Evaluate(0.0625)
	if math.Abs(sx-1.4375) > tolerance || math.Abs(sy-0.5625) > tolerance {
		t.Errorf("Evaluate(0.0625) = (%v, %v), 期望 (1.4375, 0.5625)", sx, sy)
	}

	// 第二段起点：ElasticOut 的 start = -0.5
	sx, sy = c.Evaluate(0.125)
	if math.Abs(sx-1.5) > tolerance || math.Abs(sy-0.5) > tolerance {
		t.Errorf("Evaluate(0.125) = (%v, %v), 期望 (1.5, 0.5)", sx, sy)
	}
}

func TestSquashPresetSettlesToIdentity(t *testing.T) {
	c := Squash()
	sx, sy := c.Evaluate(1)
	if math.Abs(sx-1) > tolerance || math.Abs(sy-1) > tolerance {
		t.Errorf("Evaluate(1) = (%v, %v), 期望 (1, 1)", sx, sy)
	}

	// 压扁阶段：横向变宽、纵向变矮
	sx, sy = c.Evaluate(0.19)
	if !(sx > 1 && sy < 1) {
		t.Errorf("压扁阶段应 sx>1, sy<1，得到 (%v, %v)", sx, sy)
	}

	// 过冲阶段末尾：横向变窄、纵向拉长
	sx, sy = c.Evaluate(0.54)
	if !(sx < 1 && sy > 1) {
		t.Errorf("拉伸阶段应 sx<1, sy>1，得到 (%v, %v)", sx, sy)
	}
}

func TestAsymmetricAxisMapping(t *testing.T) {
	c := ScaleCurve{Segments: []Segment{{
		From: 0, To: 1,
		Ease: easing.Spec{Kind: easing.Linear, Start: 0, End: 1},
		X:    AxisMap{Base: 1, Gain: 0.5},
		Y:    AxisMap{Base: 2, Gain: -1},
	}}}

	sx, sy := c.Evaluate(0.5)
	if math.Abs(sx-1.25) > tolerance || math.Abs(sy-1.5) > tolerance {
		t.Errorf("Evaluate(0.5) = (%v, %v), 期望 (1.25, 1.5)", sx, sy)
	}
}

func TestValidate(t *testing.T) {
	lin := easing.Spec{Kind: easing.Linear, Start: 0, End: 0}
	tests := []struct {
		name    string
		curve   ScaleCurve
		wantErr error
	}{
		{"弹性预设合法", Elastic(), nil},
		{"三段式预设合法", Squash(), nil},
		{"空曲线", ScaleCurve{}, ErrEmpty},
		{
			name: "中间有空隙",
			curve: ScaleCurve{Segments: []Segment{
				{From: 0, To: 0.4, Ease: lin},
				{From: 0.5, To: 1, Ease: lin},
			}},
			wantErr: ErrGap,
		},
		{
			name:    "未覆盖到 1",
			curve:   ScaleCurve{Segments: []Segment{{From: 0, To: 0.9, Ease: lin}}},
			wantErr: ErrGap,
		},
		{
			name: "重叠",
			curve: ScaleCurve{Segments: []Segment{
				{From: 0, To: 0.6, Ease: lin},
				{From: 0.5, To: 1, Ease: lin},
			}},
			wantErr: ErrOverlap,
		},
		{
			name:    "反向区间",
			curve:   ScaleCurve{Segments: []Segment{{From: 1, To: 0, Ease: lin}}},
			wantErr: ErrOverlap,
		},
		{
			name: "非法缓动时长",
			curve: ScaleCurve{Segments: []Segment{
				{From: 0, To: 1, Ease: easing.Spec{Kind: easing.Linear, Duration: -1}},
			}},
			wantErr: easing.ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.curve.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, 期望 nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, 期望 %v", err, tt.wantErr)
			}
		})
	}
}

func TestGapEvaluatesToIdentity(t *testing.T) {
	c := ScaleCurve{Segments: []Segment{
		{From: 0, To: 0.4, Ease: easing.Spec{Kind: easing.Linear, Start: 0.5, End: 0.5}, X: widenX, Y: flatY},
		{From: 0.6, To: 1, Ease: easing.Spec{Kind: easing.Linear, Start: 0.5, End: 0.5}, X: widenX, Y: flatY},
	}}

	sx, sy := c.Evaluate(0.5)
	if sx != 1 || sy != 1 {
		t.Errorf("空隙处 Evaluate(0.5) = (%v, %v), 期望 (1, 1)", sx, sy)
	}
	sx, _ = c.Evaluate(0.2)
	if math.Abs(sx-1.5) > tolerance {
		t.Errorf("覆盖处 Evaluate(0.2) sx = %v, 期望 1.5", sx)
	}
}

func TestConfigResolve(t *testing.T) {
	t.Run("默认预设", func(t *testing.T) {
		c, err := Config{}.Resolve()
		if err != nil {
			t.Fatalf("Resolve(): %v", err)
		}
		if len(c.Segments) != len(Elastic().Segments) {
			t.Errorf("默认应为 elastic 预设，得到 %d 段", len(c.Segments))
		}
	})

	t.Run("指定预设", func(t *testing.T) {
		c, err := Config{Preset: "Squash"}.Resolve()
		if err != nil {
			t.Fatalf("Resolve(): %v", err)
		}
		if len(c.Segments) != 3 {
			t.Errorf("squash 预设应有 3 段，得到 %d", len(c.Segments))
		}
	})

	t.Run("未知预设", func(t *testing.T) {
		if _, err := (Config{Preset: "wobble"}).Resolve(); err == nil {
			t.Error("未知预设应返回错误")
		}
	})

	t.Run("YAML 自定义曲线", func(t *testing.T) {
		src := `
segments:
  - from: 0
    to: 0.5
    ease: {kind: cubic_out, start: 0, end: 0.2}
    x: {base: 1, gain: 1}
    y: {base: 1, gain: -1}
  - from: 0.5
    to: 1
    ease: {kind: sine_in_out, start: 0.2, end: 0}
    x: {base: 1, gain: 1}
    y: {base: 1, gain: -1}
`
		var cfg Config
		if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
			t.Fatalf("yaml.Unmarshal: %v", err)
		}
		c, err := cfg.Resolve()
		if err != nil {
			t.Fatalf("Resolve(): %v", err)
		}
		sx, sy := c.Evaluate(0.5)
		if math.Abs(sx-1.2) > tolerance || math.Abs(sy-0.8) > tolerance {
			t.Errorf("Evaluate(0.5) = (%v, %v), 期望 (1.2, 0.8)", sx, sy)
		}
	})

	t.Run("YAML 自定义曲线有空隙", func(t *testing.T) {
		cfg := Config{Segments: []Segment{{From: 0, To: 0.5, Ease: easing.Spec{Kind: easing.Linear}}}}
		if _, err := cfg.Resolve(); !errors.Is(err, ErrGap) {
			t.Errorf("Resolve() = %v, 期望 ErrGap", err)
		}
	})
}
