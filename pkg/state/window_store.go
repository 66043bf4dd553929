// Package state 保存跨重启的窗口状态
//
// 数据通过 gdata 写入用户数据目录（不放在角色目录里，角色目录可以整体导出分享）。
// 无法打开用户数据目录时进入降级模式：只在内存中保存，进程退出即丢失。
package state

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// AppName gdata 使用的应用名（决定用户数据目录）
const AppName = "qingpet"

// 存储路径常量
const (
	windowObject = "window"
)

// Position 窗口左上角位置（屏幕坐标）
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// WindowStore 按角色保存窗口位置
type WindowStore struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式）
	memory       map[string]Position
}

// Open 打开用户数据目录并创建 WindowStore
// 打开失败时记录日志并返回降级模式的实例
func Open(appName string) *WindowStore {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[State] Warning: Failed to open user data storage: %v (positions will not persist)", err)
		manager = nil
	}
	return NewWindowStore(manager)
}

// NewWindowStore 创建 WindowStore
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存）
func NewWindowStore(gdataManager *gdata.Manager) *WindowStore {
	return &WindowStore{
		gdataManager: gdataManager,
		memory:       make(map[string]Position),
	}
}

// Persistent 是否能持久化
func (s *WindowStore) Persistent() bool {
	return s.gdataManager != nil
}

// Load 读取角色的窗口位置
//
// 返回：
//   - Position: 保存的位置
//   - bool: 是否有保存的位置
func (s *WindowStore) Load(charDir string) (Position, bool) {
	key := PropKey(charDir)
	if pos, ok := s.memory[key]; ok {
		return pos, true
	}
	if s.gdataManager == nil || !s.gdataManager.ObjectPropExists(windowObject, key) {
		return Position{}, false
	}

	data, err := s.gdataManager.LoadObjectProp(windowObject, key)
	if err != nil {
		log.Printf("[State] Warning: Failed to load window position for %s: %v", key, err)
		return Position{}, false
	}
	var pos Position
	if err := yaml.Unmarshal(data, &pos); err != nil {
		log.Printf("[State] Warning: Corrupted window position for %s: %v", key, err)
		return Position{}, false
	}
	s.memory[key] = pos
	return pos, true
}

// Save 保存角色的窗口位置
// 降级模式下只写入内存，不返回错误
func (s *WindowStore) Save(charDir string, pos Position) error {
	key := PropKey(charDir)
	s.memory[key] = pos
	if s.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal window position: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(windowObject, key, data); err != nil {
		return fmt.Errorf("failed to save window position: %w", err)
	}
	log.Printf("[State] Saved window position for %s: (%d, %d)", key, pos.X, pos.Y)
	return nil
}

// PropKey 由角色目录生成存储键
// 只保留小写字母、数字和下划线；空名称使用 "default"
func PropKey(charDir string) string {
	name := strings.ToLower(filepath.Base(filepath.Clean(charDir)))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	key := strings.Trim(b.String(), "_")
	if key == "" {
		return "default"
	}
	return key
}
