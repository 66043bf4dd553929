// Package sprite 负责立绘位图：加载、缺失占位图以及透明度二值化
//
// 所有位图统一使用 *image.NRGBA（非预乘 alpha），修改 alpha 时 RGB 通道保持不变。
package sprite

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultAlphaThreshold 默认阈值：只有完全不透明的像素才保留
const DefaultAlphaThreshold = 0xFF

// Threshold 将图像的透明度二值化（完全透明 或 完全不透明）
// 不透明度小于 cutoff 的像素变为 0，其余变为 255，RGB 通道不变。
//
// 缩放插值会重新引入半透明像素，因此每次缩放之后都要再调用一次。
// 返回新图像，不修改 img；结果满足 Threshold(Threshold(img, c), c) == Threshold(img, c)。
func Threshold(img *image.NRGBA, cutoff uint8) *image.NRGBA {
	if img == nil {
		return nil
	}
	out := imaging.Clone(img)
	bounds := out.Bounds()
	width := bounds.Dx() * 4
	for y := 0; y < bounds.Dy(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+width]
		for i := 3; i < len(row); i += 4 {
			if row[i] < cutoff {
				row[i] = 0x00
			} else {
				row[i] = 0xFF
			}
		}
	}
	return out
}

// Clone 复制一份独立的位图（例如 active 立绘缺省时复制 idle 立绘）
func Clone(img image.Image) *image.NRGBA {
	if img == nil {
		return nil
	}
	return imaging.Clone(img)
}
