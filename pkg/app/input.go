package app

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// inputState 拖动状态与按键缓冲
type inputState struct {
	dragging bool
	startX   int // 按下时光标在窗口内的位置
	startY   int
	keys     []ebiten.Key
}

// handleInput 处理鼠标与键盘
//
// 左键按下：触发弹跳并开始拖动；按住移动：窗口跟随光标；松开：保存窗口位置。
// 任意键：触发弹跳。F5 重新加载，Ctrl+T 切换置顶，Ctrl+Q 退出。
func (a *App) handleInput() error {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		a.engine.Trigger()
		a.input.dragging = true
		a.input.startX, a.input.startY = ebiten.CursorPosition()
	}

	if a.input.dragging {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			a.dragWindow()
		} else {
			a.input.dragging = false
			a.savePosition()
		}
	}

	return a.handleKeys()
}

// dragWindow 按光标相对按下位置的偏移移动窗口
// 窗口移动后光标在窗口内的位置回到按下时的位置，所以偏移不会累积
func (a *App) dragWindow() {
	cx, cy := ebiten.CursorPosition()
	dx, dy := cx-a.input.startX, cy-a.input.startY
	if dx == 0 && dy == 0 {
		return
	}
	wx, wy := ebiten.WindowPosition()
	ebiten.SetWindowPosition(wx+dx, wy+dy)
}

func (a *App) handleKeys() error {
	a.input.keys = inpututil.AppendJustPressedKeys(a.input.keys[:0])
	if len(a.input.keys) == 0 {
		return nil
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	for _, key := range a.input.keys {
		switch {
		case key == ebiten.KeyF5:
			if err := a.Reload(); err != nil {
				log.Printf("[App] Warning: reload failed: %v", err)
			}
		case ctrl && key == ebiten.KeyT:
			a.ToggleTopmost()
		case ctrl && key == ebiten.KeyQ:
			return ebiten.Termination
		default:
			a.engine.Trigger()
		}
	}
	return nil
}
