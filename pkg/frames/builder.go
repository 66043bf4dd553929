package frames

import (
	"fmt"
	"image"
	"log"
	"math"
	"runtime"

	"github.com/decker502/qingpet/pkg/sprite"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// maxScale 单轴缩放上限，防止异常曲线分配巨大的位图
const maxScale = 8

// Sequence 只读帧序列
// 构建完成后不再修改；重新加载角色时整体替换，不与其他实例共享
type Sequence struct {
	frames []*image.NRGBA
	cfg    AnimationConfig
}

// Len 帧数
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// Frame 返回第 i 帧；越界返回 nil
func (s *Sequence) Frame(i int) *image.NRGBA {
	if s == nil || i < 0 || i >= len(s.frames) {
		return nil
	}
	return s.frames[i]
}

// Config 返回构建该序列时使用的参数
func (s *Sequence) Config() AnimationConfig {
	return s.cfg
}

// Sample 第 i 帧的采样时间 t = i / frameCount 及对应缩放系数
func Sample(cfg AnimationConfig, i int) (t, sx, sy float64) {
	t = float64(i) / float64(cfg.FrameCount())
	sx, sy = cfg.Curve.Evaluate(t)
	return t, sx, sy
}

// Build 预先生成全部动画帧
//
// 对每个 i ∈ [0, frameCount)：t = i/frameCount → 曲线求值 → 按 round(w*sx) × round(h*sy)
// 做线性插值缩放（尺寸钳制在 [1, 8w] × [1, 8h]）→ 二值化。
// 各帧互相独立，使用 errgroup 并行计算；函数返回时全部帧均已生成，不存在半成品序列。
//
// 参数：
//   - active: 弹跳使用的立绘（不能为 nil）
//   - cfg: 动画参数（会先做校验）
//
// 返回：
//   - *Sequence: 帧序列
//   - error: 参数不合法
func Build(active *image.NRGBA, cfg AnimationConfig) (*Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if active == nil {
		return nil, fmt.Errorf("frames: active pose is nil")
	}

	count := cfg.FrameCount()
	width := active.Bounds().Dx()
	height := active.Bounds().Dy()
	out := make([]*image.NRGBA, count)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			_, sx, sy := Sample(cfg, i)
			w := scaledSize(width, sx)
			h := scaledSize(height, sy)
			resized := imaging.Resize(active, w, h, imaging.Linear)
			out[i] = sprite.Threshold(resized, cfg.AlphaThreshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[Frames] Built %d frames (%d fps × %.3fs) from %dx%d sprite", count, cfg.FrameRate, cfg.Duration, width, height)
	return &Sequence{frames: out, cfg: cfg}, nil
}

// scaledSize 计算缩放后的边长：四舍五入，非有限值或过小钳制到 1 像素，过大钳制到 maxScale 倍
func scaledSize(size int, scale float64) int {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return 1
	}
	if scale > maxScale {
		scale = maxScale
	}
	n := int(math.Round(float64(size) * scale))
	if n < 1 {
		return 1
	}
	return n
}
