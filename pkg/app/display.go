package app

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// windowDisplay 实现 compositor.Display 与 engine.CanvasResizer
// SetFrame 只记录要显示的位图，Draw 时才转换为 ebiten.Image（每个位图只转换一次）。
type windowDisplay struct {
	transparent bool
	background  color.NRGBA
	icon        image.Image

	width, height int
	frame         *image.NRGBA
	x, y          int

	cache map[*image.NRGBA]*ebiten.Image
}

func newWindowDisplay(transparent bool) *windowDisplay {
	return &windowDisplay{
		transparent: transparent,
		cache:       make(map[*image.NRGBA]*ebiten.Image),
	}
}

// SetFrame 设置当前帧及其左上角坐标
func (d *windowDisplay) SetFrame(frame *image.NRGBA, x, y int) {
	d.frame = frame
	d.x, d.y = x, y
}

// SetCanvasSize 画布尺寸变化：调整窗口并丢弃旧帧的纹理
func (d *windowDisplay) SetCanvasSize(width, height int) {
	d.width, d.height = width, height
	for frame, img := range d.cache {
		img.Deallocate()
		delete(d.cache, frame)
	}
	if width > 0 && height > 0 {
		ebiten.SetWindowSize(width, height)
	}
}

// SetBackground 透明窗口不可用时的背景色
func (d *windowDisplay) SetBackground(c color.NRGBA) {
	d.background = c
}

// SetIcon 窗口图标
func (d *windowDisplay) SetIcon(icon image.Image) {
	d.icon = icon
}

// applyWindow 把图标应用到窗口
func (d *windowDisplay) applyWindow() {
	if d.icon != nil {
		ebiten.SetWindowIcon([]image.Image{d.icon})
	}
}

// Draw 绘制背景与当前帧
func (d *windowDisplay) Draw(screen *ebiten.Image) {
	if !d.transparent {
		screen.Fill(d.background)
	}
	if d.frame == nil {
		return
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(d.x), float64(d.y))
	screen.DrawImage(d.texture(d.frame), op)
}

// texture 返回位图对应的纹理，首次使用时创建
func (d *windowDisplay) texture(frame *image.NRGBA) *ebiten.Image {
	if img, ok := d.cache[frame]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(frame)
	d.cache[frame] = img
	return img
}
