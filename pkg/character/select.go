package character

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/decker502/qingpet/pkg/config"
)

// Select 把应用配置的 char 指向 dir 并写回
// dir 必须是已存在的目录；相对路径先转换为绝对路径。
func Select(configPath string, appCfg *config.AppConfig, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve character directory %s: %w", dir, err)
	}
	if !Exists(abs) {
		return fmt.Errorf("character directory %s does not exist", abs)
	}

	appCfg.Char = abs
	if err := config.SaveAppConfig(configPath, appCfg); err != nil {
		return err
	}
	log.Printf("[Character] Selected %s", abs)
	return nil
}
