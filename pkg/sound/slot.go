package sound

import "sync"

// Slot 可替换的音效
// 引擎只持有 Slot，重新加载角色时换入新的音效即可。
type Slot struct {
	mu     sync.Mutex
	player Player
}

// NewSlot 创建 Slot；player 为 nil 时使用 Silent
func NewSlot(player Player) *Slot {
	s := &Slot{}
	s.Set(player)
	return s
}

// Set 换入新的音效，旧音效会被停止
func (s *Slot) Set(player Player) {
	if player == nil {
		player = Silent{}
	}
	s.mu.Lock()
	old := s.player
	s.player = player
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

func (s *Slot) current() Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// Play 播放当前音效
func (s *Slot) Play() {
	s.current().Play()
}

// Stop 停止当前音效
func (s *Slot) Stop() {
	s.current().Stop()
}
