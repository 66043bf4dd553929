// Package compositor 把当前帧放到固定大小的画布上
package compositor

import "image"

// CanvasFactor 画布相对 idle 立绘的放大系数，给过冲缩放留出空间
const CanvasFactor = 1.5

// Display 显示端（窗口）接口
// 接收位图及其在画布中的左上角坐标
type Display interface {
	SetFrame(frame *image.NRGBA, x, y int)
}

// Surface 底部居中对齐的合成画布
type Surface struct {
	width   int
	height  int
	display Display
}

// NewSurface 根据 idle 立绘尺寸创建画布（宽高各为 1.5 倍，向下取整）
func NewSurface(idleWidth, idleHeight int, display Display) *Surface {
	return &Surface{
		width:   int(float64(idleWidth) * CanvasFactor),
		height:  int(float64(idleHeight) * CanvasFactor),
		display: display,
	}
}

// Size 画布尺寸
func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

// Anchor 计算帧的左上角坐标：水平居中、底部对齐
// 帧比画布大时坐标可以为负，超出部分由显示端裁剪；奇数差值一律向下取整
func (s *Surface) Anchor(frameWidth, frameHeight int) (int, int) {
	x := floorHalf(s.width - frameWidth)
	y := s.height - frameHeight
	return x, y
}

// floorHalf 向负无穷取整的 n/2（Go 的整数除法向零截断）
func floorHalf(n int) int {
	if n < 0 {
		return -((1 - n) / 2)
	}
	return n / 2
}

// Place 放置一帧；每帧尺寸不同，坐标每次重新计算
func (s *Surface) Place(frame *image.NRGBA) {
	if frame == nil || s.display == nil {
		return
	}
	b := frame.Bounds()
	x, y := s.Anchor(b.Dx(), b.Dy())
	s.display.SetFrame(frame, x, y)
}
