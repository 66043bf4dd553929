// Package sound 播放触发时的音效
//
// 音效只接收 Play / Stop 两个命令，从不读取动画状态。加载失败时使用 Silent，
// 动画照常播放，只是没有声音。
package sound

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	auaudio "github.com/decker502/qingpet/internal/audio"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// SampleRate 音频上下文采样率
const SampleRate = 48000

// Player 音效接口
type Player interface {
	Play()
	Stop()
}

// Silent 不发声的音效（加载失败时的降级实现）
type Silent struct{}

// Play 空操作
func (Silent) Play() {}

// Stop 空操作
func (Silent) Stop() {}

// Context 返回进程唯一的音频上下文（ebiten 不允许创建多个）
func Context() *audio.Context {
	if ctx := audio.CurrentContext(); ctx != nil {
		return ctx
	}
	return audio.NewContext(SampleRate)
}

// voice 单个播放实例（*audio.Player 实现了它）
type voice interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Clip 预先解码到内存的音效
// 每次 Play 创建一个新的播放器，因此多次播放可以叠加；Stop 停止全部正在播放的实例。
// 方法可在任意 goroutine 中调用。
type Clip struct {
	pcm      []byte
	name     string
	newVoice func() voice

	mu      sync.Mutex
	players []voice
}

// Load 加载音效文件
// 支持 .wav / .mp3 / .ogg / .au，统一重采样到上下文采样率。
func Load(ctx *audio.Context, path string) (*Clip, error) {
	if ctx == nil {
		return nil, fmt.Errorf("audio context is nil")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file %s: %w", path, err)
	}
	pcm, err := decodePCM(path, data, ctx.SampleRate())
	if err != nil {
		return nil, err
	}
	clip := &Clip{pcm: pcm, name: filepath.Base(path)}
	clip.newVoice = func() voice { return ctx.NewPlayerFromBytes(clip.pcm) }
	return clip, nil
}

// LoadOrSilent 加载音效，失败时记录日志并返回 Silent
func LoadOrSilent(ctx *audio.Context, path string) Player {
	clip, err := Load(ctx, path)
	if err != nil {
		log.Printf("[Sound] Warning: %v (sound disabled)", err)
		return Silent{}
	}
	log.Printf("[Sound] Loaded %s (%d bytes PCM)", clip.name, len(clip.pcm))
	return clip
}

// Play 播放一次
func (c *Clip) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prune()
	player := c.newVoice()
	player.Play()
	c.players = append(c.players, player)
}

// Stop 停止所有正在播放的实例
func (c *Clip) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, player := range c.players {
		player.Pause()
		if err := player.Close(); err != nil {
			log.Printf("[Sound] Warning: failed to close player for %s: %v", c.name, err)
		}
	}
	c.players = c.players[:0]
}

// prune 回收已经播放完毕的播放器
func (c *Clip) prune() {
	alive := c.players[:0]
	for _, player := range c.players {
		if player.IsPlaying() {
			alive = append(alive, player)
			continue
		}
		if err := player.Close(); err != nil {
			log.Printf("[Sound] Warning: failed to close finished player for %s: %v", c.name, err)
		}
	}
	c.players = alive
}

// decodePCM 按扩展名解码为 16 位小端立体声 PCM（采样率 sampleRate）
func decodePCM(path string, data []byte, sampleRate int) ([]byte, error) {
	reader := bytes.NewReader(data)
	ext := strings.ToLower(filepath.Ext(path))

	var stream io.Reader
	switch ext {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV sound %s: %w", path, err)
		}
		stream = s
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 sound %s: %w", path, err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG sound %s: %w", path, err)
		}
		stream = s
	case ".au":
		s, err := auaudio.DecodeAU(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decode AU sound %s: %w", path, err)
		}
		stream = s
		if s.SampleRate() != sampleRate {
			stream = audio.Resample(s, s.Length(), s.SampleRate(), sampleRate)
		}
	default:
		return nil, fmt.Errorf("unsupported sound format: %s (supported: .wav, .mp3, .ogg, .au)", ext)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded sound %s: %w", path, err)
	}
	return pcm, nil
}
