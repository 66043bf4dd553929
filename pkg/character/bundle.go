// Package character 管理角色目录
//
// 一个角色目录包含 config.yml、立绘和音效，可以整体导出、导入或分享。
// 配置中的文件名都相对于角色目录。
package character

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/decker502/qingpet/pkg/config"
	"github.com/decker502/qingpet/pkg/sprite"
)

// ErrUnknownAsset 不支持替换的素材类型
var ErrUnknownAsset = errors.New("unknown asset kind")

// AssetKind 可替换的素材
type AssetKind int

const (
	AssetImage AssetKind = iota
	AssetImageActive
	AssetSound
	AssetIcon
)

// String 素材类型对应的配置键
func (k AssetKind) String() string {
	switch k {
	case AssetImage:
		return "image"
	case AssetImageActive:
		return "image_active"
	case AssetSound:
		return "sound"
	case AssetIcon:
		return "icon"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(k))
	}
}

// Bundle 已加载的角色目录
type Bundle struct {
	Dir    string
	Config *config.CharConfig
}

// Poses 立绘
type Poses struct {
	Idle   *image.NRGBA
	Active *image.NRGBA // 未配置 image_active 时为 nil
}

// Open 加载角色目录
// 目录或配置文件不存在时用 template 创建配置。
func Open(dir string, template []byte) (*Bundle, error) {
	cfg, err := config.LoadCharConfig(dir, template)
	if err != nil {
		return nil, fmt.Errorf("failed to open character %s: %w", dir, err)
	}
	log.Printf("[Character] Opened %s (image=%q, sound=%q)", dir, cfg.Image, cfg.Sound)
	return &Bundle{Dir: dir, Config: cfg}, nil
}

// Path 配置中的文件名对应的路径；空名称返回空字符串
func (b *Bundle) Path(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(b.Dir, name)
}

// SoundPath 音效文件路径
func (b *Bundle) SoundPath() string {
	return b.Path(b.Config.Sound)
}

// LoadPoses 加载立绘
// image 加载失败时使用占位图；配置了 image_active 但加载失败时也使用占位图。
func (b *Bundle) LoadPoses() Poses {
	cutoff := b.Config.AlphaThreshold
	idle, _ := sprite.LoadOrPlaceholder(b.Path(b.Config.Image), cutoff)

	poses := Poses{Idle: idle}
	if b.Config.ImageActive != "" {
		poses.Active, _ = sprite.LoadOrPlaceholder(b.Path(b.Config.ImageActive), cutoff)
	}
	return poses
}

// LoadIcon 窗口图标
// 依次尝试 icon、image，都失败时使用 idle 立绘的副本
func (b *Bundle) LoadIcon(idle *image.NRGBA) *image.NRGBA {
	for _, name := range []string{b.Config.Icon, b.Config.Image} {
		if name == "" {
			continue
		}
		img, err := sprite.Load(b.Path(name))
		if err != nil {
			log.Printf("[Character] Warning: icon candidate %s unusable: %v", name, err)
			continue
		}
		return img
	}
	return sprite.Clone(idle)
}

// ImportAsset 把外部文件复制进角色目录，并把对应配置键指向它
// 源文件已经在角色目录中时不复制。
func (b *Bundle) ImportAsset(kind AssetKind, src string) error {
	var key *string
	switch kind {
	case AssetImage:
		key = &b.Config.Image
	case AssetImageActive:
		key = &b.Config.ImageActive
	case AssetSound:
		key = &b.Config.Sound
	case AssetIcon:
		key = &b.Config.Icon
	default:
		return fmt.Errorf("%w: %d", ErrUnknownAsset, int(kind))
	}

	name := filepath.Base(src)
	if err := copyFile(src, filepath.Join(b.Dir, name)); err != nil {
		return fmt.Errorf("failed to import %s: %w", kind, err)
	}
	*key = name

	if err := config.SaveCharConfig(b.Dir, b.Config); err != nil {
		return err
	}
	log.Printf("[Character] Imported %s as %s", src, kind)
	return nil
}

// Export 把整个角色目录复制到 dst；dst 已存在时合并（同名文件被覆盖）
func (b *Bundle) Export(dst string) error {
	if err := copyTree(b.Dir, dst); err != nil {
		return fmt.Errorf("failed to export character to %s: %w", dst, err)
	}
	log.Printf("[Character] Exported %s to %s", b.Dir, dst)
	return nil
}

// Exists 目录是否存在
func Exists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
