package sprite

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// 占位图参数
const (
	PlaceholderSize = 0x100 // 占位图边长
	markerScale     = 4     // ":(" 标记相对 basicfont 的放大倍数
)

// PlaceholderColor 占位图底色（品红）
var PlaceholderColor = color.NRGBA{R: 0xF8, G: 0x00, B: 0xF8, A: 0xFF}

// Placeholder 生成素材缺失时使用的占位图
// 品红底色 + 左上/右下两个黑色方块组成棋盘格，左上角画一个放大的 ":(" 标记。
// 每次调用返回新的位图。
func Placeholder() *image.NRGBA {
	img := imaging.New(PlaceholderSize, PlaceholderSize, PlaceholderColor)
	black := color.NRGBA{A: 0xFF}
	half := PlaceholderSize / 2
	fillRect(img, image.Rect(0, 0, half, half), black)
	fillRect(img, image.Rect(half, half, PlaceholderSize, PlaceholderSize), black)

	marker := brokenMarker()
	return imaging.Overlay(img, marker, image.Pt(0x20, 0x10), 1.0)
}

// brokenMarker 用 basicfont 画出 ":("，再按最近邻放大，保持像素硬边
func brokenMarker() *image.NRGBA {
	face := basicfont.Face7x13
	text := ":("
	width := font.MeasureString(face, text).Ceil()
	height := face.Height

	small := image.NewNRGBA(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(PlaceholderColor),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(text)

	return imaging.Resize(small, width*markerScale, height*markerScale, imaging.NearestNeighbor)
}

func fillRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
