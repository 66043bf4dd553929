package sprite

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Load 从文件加载立绘并转换为 NRGBA
// 支持 PNG / GIF / JPEG / BMP / WebP，按 EXIF 方向自动旋转。
func Load(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load sprite %s: %w", path, err)
	}
	return imaging.Clone(img), nil
}

// LoadOrPlaceholder 加载立绘并做一次二值化；失败时记录日志并返回占位图
//
// 返回：
//   - *image.NRGBA: 立绘或占位图（永不为 nil）
//   - bool: 是否成功加载了真实素材
func LoadOrPlaceholder(path string, cutoff uint8) (*image.NRGBA, bool) {
	img, err := Load(path)
	if err != nil {
		log.Printf("[Sprite] Warning: %v (using placeholder)", err)
		return Placeholder(), false
	}
	return Threshold(img, cutoff), true
}
