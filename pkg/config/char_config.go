package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/decker502/qingpet/pkg/curve"
	"github.com/decker502/qingpet/pkg/frames"
	"github.com/decker502/qingpet/pkg/sprite"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidColor 颜色不是 #RGB / #RRGGBB / #RRGGBBAA
	ErrInvalidColor = errors.New("invalid color")
	// ErrInvalidDuration 动画时长必须为有限正数
	ErrInvalidDuration = errors.New("duration must be a positive finite number")
)

// CharConfig 角色配置（角色目录下的 config.yml）
// 文件名相对于角色目录
type CharConfig struct {
	Sound          string       `yaml:"sound"`
	Image          string       `yaml:"image"`
	ImageActive    string       `yaml:"image_active,omitempty"`
	Icon           string       `yaml:"icon,omitempty"`
	MiyuColor      string       `yaml:"miyu_color"`
	Duration       float64      `yaml:"duration"`
	AlphaThreshold uint8        `yaml:"alpha_threshold"`
	Curve          curve.Config `yaml:"curve,omitempty"`
}

// DefaultCharConfig 默认角色配置
func DefaultCharConfig() CharConfig {
	return CharConfig{
		Sound:          "sndReverbClack.wav",
		Image:          "Miss Qing.png",
		MiyuColor:      "#AD0FA1",
		Duration:       1.0,
		AlphaThreshold: sprite.DefaultAlphaThreshold,
	}
}

// LoadCharConfig 加载角色目录下的配置
// 配置文件不存在时用 template 创建。
func LoadCharConfig(dir string, template []byte) (*CharConfig, error) {
	path := filepath.Join(dir, FileName)
	cfg := DefaultCharConfig()
	if err := ensureFile(path, template, cfg); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read character config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse character config YAML from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid character config in %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveCharConfig 写回角色配置
func SaveCharConfig(dir string, cfg *CharConfig) error {
	if err := writeYAML(filepath.Join(dir, FileName), cfg); err != nil {
		return fmt.Errorf("failed to save character config: %w", err)
	}
	return nil
}

// Validate 校验角色配置
func (c *CharConfig) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image is required")
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidDuration, c.Duration)
	}
	if _, err := ParseColor(c.MiyuColor); err != nil {
		return fmt.Errorf("miyu_color: %w", err)
	}
	if _, err := c.Curve.Resolve(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	return nil
}

// Animation 组合出帧缓存的构建参数
//
// 参数：
//   - fps: 应用配置中的帧率
//
// 返回：
//   - frames.AnimationConfig: 可直接交给 frames.Build 的参数
//   - error: 曲线配置无效
func (c *CharConfig) Animation(fps int) (frames.AnimationConfig, error) {
	sc, err := c.Curve.Resolve()
	if err != nil {
		return frames.AnimationConfig{}, fmt.Errorf("curve: %w", err)
	}
	return frames.AnimationConfig{
		FrameRate:      fps,
		Duration:       c.Duration,
		Curve:          sc,
		AlphaThreshold: c.AlphaThreshold,
	}, nil
}

// ChromaKey miyu_color 对应的颜色（无效时返回默认颜色）
func (c *CharConfig) ChromaKey() color.NRGBA {
	col, err := ParseColor(c.MiyuColor)
	if err != nil {
		col, _ = ParseColor(DefaultCharConfig().MiyuColor)
	}
	return col
}

// ParseColor 解析 #RGB、#RRGGBB 或 #RRGGBBAA 形式的颜色
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)

	alpha := uint8(0xFF)
	switch len(s) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q (bad alpha)", ErrInvalidColor, s)
		}
		alpha = uint8(a)
		s = s[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q (want #RGB, #RRGGBB or #RRGGBBAA)", ErrInvalidColor, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
