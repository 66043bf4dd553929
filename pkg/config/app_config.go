package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName 应用配置与角色配置共用的文件名
const FileName = "config.yml"

// ErrInvalidFrameRate 帧率必须为正
var ErrInvalidFrameRate = errors.New("fps must be positive")

// AppConfig 应用配置（config.yml）
type AppConfig struct {
	Char        string `yaml:"char"`        // 角色目录，相对路径以配置文件所在目录为基准
	FPS         int    `yaml:"fps"`         // 逻辑帧率
	Topmost     bool   `yaml:"topmost"`     // 窗口置顶
	Echo        bool   `yaml:"echo"`        // 音效是否可以叠加
	Transparent bool   `yaml:"transparent"` // 透明窗口；平台不支持时用 miyu_color 填充
}

// DefaultAppConfig 默认应用配置
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Char:        "./miss_qing",
		FPS:         60,
		Topmost:     true,
		Echo:        false,
		Transparent: true,
	}
}

// LoadAppConfig 加载应用配置
// 文件不存在时先用 template 创建（template 为空时写入默认值），再加载。
// 文件中缺省的键保留默认值。
//
// 参数：
//   - path: 配置文件路径
//   - template: 带注释的默认配置模板
//
// 返回：
//   - *AppConfig: 合并默认值后的配置
//   - error: 创建、读取、解析或校验失败
func LoadAppConfig(path string, template []byte) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if err := ensureFile(path, template, cfg); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app config YAML from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config in %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate 校验应用配置
func (c *AppConfig) Validate() error {
	if c.FPS < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidFrameRate, c.FPS)
	}
	if c.Char == "" {
		return fmt.Errorf("char directory is required")
	}
	return nil
}

// CharDir 角色目录的绝对位置
// 相对路径以应用配置文件所在目录为基准
func (c *AppConfig) CharDir(configPath string) string {
	if filepath.IsAbs(c.Char) {
		return c.Char
	}
	return filepath.Join(filepath.Dir(configPath), c.Char)
}

// SaveAppConfig 写回应用配置
func SaveAppConfig(path string, cfg *AppConfig) error {
	if err := writeYAML(path, cfg); err != nil {
		return fmt.Errorf("failed to save app config: %w", err)
	}
	log.Printf("[Config] Saved app config to %s", path)
	return nil
}

// ensureFile 文件不存在时创建
// 优先写入模板，没有模板时写入 fallback 的 YAML 形式
func ensureFile(path string, template []byte, fallback any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if len(template) == 0 {
		log.Printf("[Config] %s not found, writing defaults", path)
		return writeYAML(path, fallback)
	}
	log.Printf("[Config] %s not found, writing template", path)
	return writeFile(path, template)
}

// writeYAML 以两空格缩进写出 YAML
func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	return writeFile(path, data)
}

// writeFile 先写临时文件再改名，避免写到一半的配置
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
