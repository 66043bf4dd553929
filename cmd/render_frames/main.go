// cmd/render_frames/main.go
// 把角色的弹跳动画逐帧导出为 PNG，可选在无窗口的事件循环中回放一次
//
// 用法：
//
//	go run ./cmd/render_frames -char ./miss_qing -out frames
//	go run ./cmd/render_frames -char ./miss_qing -play
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/decker502/qingpet/pkg/character"
	"github.com/decker502/qingpet/pkg/curve"
	"github.com/decker502/qingpet/pkg/engine"
	"github.com/decker502/qingpet/pkg/frames"
	"github.com/decker502/qingpet/pkg/playback"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

func main() {
	charDir := flag.String("char", "./miss_qing", "角色目录")
	fps := flag.Int("fps", 60, "逻辑帧率")
	preset := flag.String("curve", "", "覆盖角色配置中的曲线预设（elastic / squash）")
	out := flag.String("out", "frames", "PNG 输出目录")
	play := flag.Bool("play", false, "在无窗口的事件循环中回放一次并打印每帧位置")
	flag.Parse()

	e, err := loadEngine(*charDir, *fps, *preset)
	if err != nil {
		log.Fatalf("加载角色失败: %v", err)
	}

	if err := dumpFrames(e, *out); err != nil {
		log.Fatalf("导出失败: %v", err)
	}
	log.Printf("✓ 已导出 %d 帧到 %s", e.Sequence().Len(), *out)

	if *play {
		if err := replay(e); err != nil {
			log.Fatalf("回放失败: %v", err)
		}
	}
}

func loadEngine(charDir string, fps int, preset string) (*engine.Engine, error) {
	bundle, err := character.Open(charDir, nil)
	if err != nil {
		return nil, err
	}
	if preset != "" {
		bundle.Config.Curve = curve.Config{Preset: preset}
	}
	anim, err := bundle.Config.Animation(fps)
	if err != nil {
		return nil, err
	}
	poses := bundle.LoadPoses()

	display := &logDisplay{}
	e, err := engine.New(
		engine.Settings{Animation: anim},
		engine.Assets{Idle: poses.Idle, Active: poses.Active},
		display, nil, nil,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// dumpFrames 并行写出 idle.png 与 frame_NNN.png
func dumpFrames(e *engine.Engine, out string) error {
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	seq := e.Sequence()

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	g.Go(func() error {
		return imaging.Save(e.Assets().Idle, filepath.Join(out, "idle.png"))
	})
	for i := 0; i < seq.Len(); i++ {
		i := i
		g.Go(func() error {
			t, sx, sy := frames.Sample(seq.Config(), i)
			path := filepath.Join(out, fmt.Sprintf("frame_%03d.png", i))
			if err := imaging.Save(seq.Frame(i), path); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			log.Printf("frame %3d  t=%.3f  scale=(%.3f, %.3f)  %v", i, t, sx, sy, seq.Frame(i).Bounds().Size())
			return nil
		})
	}
	return g.Wait()
}

// replay 触发一次弹跳，播放结束后退出
func replay(e *engine.Engine) error {
	cfg := e.Sequence().Config()
	total := time.Duration(cfg.Duration*float64(time.Second)) + 200*time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), total)
	defer cancel()

	loop := playback.NewLoop(e)
	var g errgroup.Group
	g.Go(func() error {
		if err := loop.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})
	loop.Trigger()
	if err := g.Wait(); err != nil {
		return err
	}

	w, h := e.Canvas()
	log.Printf("✓ 回放结束：画布 %dx%d，状态 %v", w, h, e.Snapshot().State)
	return nil
}

// logDisplay 把每次放置的位图打印出来
type logDisplay struct {
	mu    sync.Mutex
	count int
}

func (d *logDisplay) SetFrame(frame *image.NRGBA, x, y int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count++
	log.Printf("  #%-3d %v at (%d, %d)", d.count, frame.Bounds().Size(), x, y)
}
