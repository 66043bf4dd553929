// Package app 把动画引擎接到 ebiten 窗口上
//
// App 实现 ebiten.Game：Update 是唯一的调度上下文，负责输入、轮询引擎和换入后台构建的帧；
// Draw 只把当前帧画到画布上。窗口无边框、可置顶，支持透明时背景透明，
// 否则使用角色的 miyu_color 填充。
package app

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/decker502/qingpet/pkg/character"
	"github.com/decker502/qingpet/pkg/config"
	"github.com/decker502/qingpet/pkg/embedded"
	"github.com/decker502/qingpet/pkg/engine"
	"github.com/decker502/qingpet/pkg/sound"
	"github.com/decker502/qingpet/pkg/state"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// WindowTitle 窗口标题
const WindowTitle = "中旋晴"

// defaultPosition 没有保存过位置时窗口的初始位置
var defaultPosition = state.Position{X: 100, Y: 100}

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 应用配置文件路径
	ConfigPath string
}

// App 桌面宠物应用，实现 ebiten.Game 接口
type App struct {
	configPath string
	appCfg     *config.AppConfig
	bundle     *character.Bundle

	engine  *engine.Engine
	display *windowDisplay
	audio   *audio.Context
	sound   *sound.Slot
	store   *state.WindowStore

	input    inputState
	welcomed bool
	verbose  bool
}

// NewApp 加载配置与角色并创建应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	appCfg, err := config.LoadAppConfig(cfg.ConfigPath, embedded.AppTemplate())
	if err != nil {
		return nil, fmt.Errorf("应用配置加载失败: %w", err)
	}

	a := &App{
		configPath: cfg.ConfigPath,
		appCfg:     appCfg,
		audio:      sound.Context(),
		sound:      sound.NewSlot(nil),
		store:      state.Open(state.AppName),
		verbose:    cfg.Verbose,
	}
	a.display = newWindowDisplay(appCfg.Transparent)

	settings, assets, err := a.loadCharacter()
	if err != nil {
		return nil, err
	}
	a.engine, err = engine.New(settings, assets, a.display, a.sound, nil)
	if err != nil {
		return nil, fmt.Errorf("动画引擎初始化失败: %w", err)
	}
	log.Printf("[App] Character %s ready", a.bundle.Dir)
	return a, nil
}

// loadCharacter 打开角色目录，加载立绘与音效
func (a *App) loadCharacter() (engine.Settings, engine.Assets, error) {
	bundle, err := character.Open(a.appCfg.CharDir(a.configPath), embedded.CharTemplate())
	if err != nil {
		return engine.Settings{}, engine.Assets{}, fmt.Errorf("角色加载失败: %w", err)
	}
	anim, err := bundle.Config.Animation(a.appCfg.FPS)
	if err != nil {
		return engine.Settings{}, engine.Assets{}, fmt.Errorf("角色动画配置无效: %w", err)
	}

	poses := bundle.LoadPoses()
	a.bundle = bundle
	a.sound.Set(sound.LoadOrSilent(a.audio, bundle.SoundPath()))
	a.display.SetBackground(bundle.Config.ChromaKey())
	a.display.SetIcon(bundle.LoadIcon(poses.Idle))

	settings := engine.Settings{Animation: anim, Echo: a.appCfg.Echo}
	return settings, engine.Assets{Idle: poses.Idle, Active: poses.Active}, nil
}

// Run 打开窗口并进入主循环，直到窗口关闭或按下 Ctrl+Q
func (a *App) Run() error {
	ebiten.SetWindowTitle(WindowTitle)
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(a.appCfg.Topmost)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(tpsFor(a.appCfg.FPS))
	a.display.applyWindow()

	pos, ok := a.store.Load(a.bundle.Dir)
	if !ok {
		pos = defaultPosition
	}
	ebiten.SetWindowPosition(pos.X, pos.Y)

	err := ebiten.RunGameWithOptions(a, &ebiten.RunGameOptions{
		ScreenTransparent: a.appCfg.Transparent,
	})
	a.savePosition()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// tpsFor Update 频率：至少是逻辑帧率的两倍，与调度器的 tick 间隔一致
func tpsFor(fps int) int {
	tps := 2 * fps
	if tps < ebiten.DefaultTPS {
		tps = ebiten.DefaultTPS
	}
	return tps
}

// Update 处理输入并推进动画
func (a *App) Update() error {
	// 欢迎
	if !a.welcomed {
		a.welcomed = true
		a.engine.Trigger()
	}

	if err := a.handleInput(); err != nil {
		return err
	}
	a.engine.Poll()
	return nil
}

// Draw 绘制当前帧
func (a *App) Draw(screen *ebiten.Image) {
	a.display.Draw(screen)
}

// Layout 逻辑画布与窗口一一对应
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.engine.Canvas()
}

// Reload 重新读取配置与素材，在后台重建帧序列
// 失败时保留当前角色。
func (a *App) Reload() error {
	appCfg, err := config.LoadAppConfig(a.configPath, embedded.AppTemplate())
	if err != nil {
		return fmt.Errorf("应用配置加载失败: %w", err)
	}
	previous := a.appCfg
	a.appCfg = appCfg

	settings, assets, err := a.loadCharacter()
	if err != nil {
		a.appCfg = previous
		return err
	}
	if err := a.engine.ReloadAsync(settings, assets); err != nil {
		a.appCfg = previous
		return fmt.Errorf("动画引擎重载失败: %w", err)
	}

	ebiten.SetWindowFloating(a.appCfg.Topmost)
	ebiten.SetTPS(tpsFor(a.appCfg.FPS))
	a.display.applyWindow()
	log.Printf("[App] Reloaded character %s", a.bundle.Dir)
	return nil
}

// ToggleTopmost 切换置顶并写回配置
func (a *App) ToggleTopmost() {
	a.appCfg.Topmost = !a.appCfg.Topmost
	ebiten.SetWindowFloating(a.appCfg.Topmost)
	if err := config.SaveAppConfig(a.configPath, a.appCfg); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// savePosition 保存窗口位置
func (a *App) savePosition() {
	x, y := ebiten.WindowPosition()
	if err := a.store.Save(a.bundle.Dir, state.Position{X: x, Y: y}); err != nil {
		log.Printf("[App] Warning: %v", err)
	}
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
