package character

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/decker502/qingpet/pkg/config"
	"github.com/decker502/qingpet/pkg/sprite"
	"github.com/disintegration/imaging"
)

// writePNG 写出一张纯色 PNG
func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := imaging.New(w, h, c)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("写入 %s 失败: %v", path, err)
	}
}

func openBundle(t *testing.T, dir string) *Bundle {
	t.Helper()
	b, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	return b
}

func TestOpenCreatesConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "miss_qing")
	b, err := Open(dir, []byte("image: idle.png\nduration: 0.5\n"))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	if b.Config.Image != "idle.png" || b.Config.Duration != 0.5 {
		t.Errorf("配置 = %+v, 期望来自模板", b.Config)
	}
	if !Exists(dir) {
		t.Error("应创建角色目录")
	}
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err != nil {
		t.Errorf("应创建 config.yml: %v", err)
	}
}

func TestPath(t *testing.T) {
	b := &Bundle{Dir: filepath.Join("chars", "qing")}
	abs, _ := filepath.Abs("sound.wav")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"相对路径", "idle.png", filepath.Join("chars", "qing", "idle.png")},
		{"绝对路径", abs, abs},
		{"空名称", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Path(tt.in); got != tt.want {
				t.Errorf("Path(%q) = %q, 期望 %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadPoses(t *testing.T) {
	t.Run("加载并二值化", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "Miss Qing.png"), 40, 30, color.NRGBA{R: 10, G: 20, B: 30, A: 200})
		b := openBundle(t, dir)

		poses := b.LoadPoses()
		if got := poses.Idle.Bounds().Size(); got != image.Pt(40, 30) {
			t.Errorf("Idle 尺寸 = %v, 期望 40x30", got)
		}
		if a := poses.Idle.NRGBAAt(0, 0).A; a != 0 {
			t.Errorf("alpha 200 < 255 应变为透明, got %d", a)
		}
		if poses.Active != nil {
			t.Error("未配置 image_active 时 Active 应为 nil")
		}
	})

	t.Run("立绘缺失时使用占位图", func(t *testing.T) {
		b := openBundle(t, t.TempDir())

		poses := b.LoadPoses()
		if got := poses.Idle.Bounds().Dx(); got != sprite.PlaceholderSize {
			t.Errorf("Idle 宽度 = %d, 期望占位图 %d", got, sprite.PlaceholderSize)
		}
	})

	t.Run("image_active 加载失败时使用占位图", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "Miss Qing.png"), 8, 8, color.NRGBA{A: 255})
		b := openBundle(t, dir)
		b.Config.ImageActive = "missing.png"

		poses := b.LoadPoses()
		if poses.Active == nil || poses.Active.Bounds().Dx() != sprite.PlaceholderSize {
			t.Error("image_active 无法加载时应为占位图")
		}
		if poses.Idle.Bounds().Dx() != 8 {
			t.Error("Idle 不应受影响")
		}
	})
}

func TestLoadIcon(t *testing.T) {
	idle := imaging.New(5, 5, color.NRGBA{A: 255})

	t.Run("优先使用 icon", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "icon.png"), 16, 16, color.NRGBA{A: 255})
		writePNG(t, filepath.Join(dir, "Miss Qing.png"), 32, 32, color.NRGBA{A: 255})
		b := openBundle(t, dir)
		b.Config.Icon = "icon.png"

		if got := b.LoadIcon(idle).Bounds().Dx(); got != 16 {
			t.Errorf("图标宽度 = %d, 期望 16", got)
		}
	})

	t.Run("icon 缺失时使用 image", func(t *testing.T) {
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "Miss Qing.png"), 32, 32, color.NRGBA{A: 255})
		b := openBundle(t, dir)
		b.Config.Icon = "broken.png"

		if got := b.LoadIcon(idle).Bounds().Dx(); got != 32 {
			t.Errorf("图标宽度 = %d, 期望 32", got)
		}
	})

	t.Run("都缺失时复制 idle", func(t *testing.T) {
		b := openBundle(t, t.TempDir())

		icon := b.LoadIcon(idle)
		if icon == idle {
			t.Error("应返回副本而不是 idle 本身")
		}
		if icon.Bounds().Dx() != 5 {
			t.Errorf("图标宽度 = %d, 期望 5", icon.Bounds().Dx())
		}
	})
}

func TestImportAsset(t *testing.T) {
	t.Run("复制文件并写回配置", func(t *testing.T) {
		dir := t.TempDir()
		b := openBundle(t, dir)
		src := filepath.Join(t.TempDir(), "boing.wav")
		if err := os.WriteFile(src, []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := b.ImportAsset(AssetSound, src); err != nil {
			t.Fatalf("ImportAsset(): %v", err)
		}
		if b.Config.Sound != "boing.wav" {
			t.Errorf("Sound = %q, 期望 boing.wav", b.Config.Sound)
		}
		data, err := os.ReadFile(filepath.Join(dir, "boing.wav"))
		if err != nil || string(data) != "RIFF" {
			t.Errorf("文件未被复制: %v", err)
		}

		reloaded := openBundle(t, dir)
		if reloaded.Config.Sound != "boing.wav" {
			t.Errorf("配置未保存: sound = %q", reloaded.Config.Sound)
		}
	})

	t.Run("源文件已在角色目录中", func(t *testing.T) {
		dir := t.TempDir()
		b := openBundle(t, dir)
		src := filepath.Join(dir, "active.png")
		writePNG(t, src, 4, 4, color.NRGBA{A: 255})

		if err := b.ImportAsset(AssetImageActive, src); err != nil {
			t.Fatalf("同一文件不应报错: %v", err)
		}
		if b.Config.ImageActive != "active.png" {
			t.Errorf("ImageActive = %q", b.Config.ImageActive)
		}
	})

	t.Run("源文件不存在", func(t *testing.T) {
		b := openBundle(t, t.TempDir())
		if err := b.ImportAsset(AssetImage, filepath.Join(t.TempDir(), "nope.png")); err == nil {
			t.Error("应返回错误")
		}
		if b.Config.Image != "Miss Qing.png" {
			t.Error("失败时不应修改配置")
		}
	})

	t.Run("未知素材类型", func(t *testing.T) {
		b := openBundle(t, t.TempDir())
		if err := b.ImportAsset(AssetKind(42), "x.png"); !errors.Is(err, ErrUnknownAsset) {
			t.Errorf("error = %v, 期望 ErrUnknownAsset", err)
		}
	})
}

func TestExport(t *testing.T) {
	src := t.TempDir()
	b := openBundle(t, src)
	writePNG(t, filepath.Join(src, "Miss Qing.png"), 4, 4, color.NRGBA{A: 255})
	if err := os.MkdirAll(filepath.Join(src, "extra"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "extra", "note.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(dst, "keep.txt"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := b.Export(dst); err != nil {
		t.Fatalf("Export(): %v", err)
	}
	for _, name := range []string{config.FileName, "Miss Qing.png", filepath.Join("extra", "note.txt"), "keep.txt"} {
		if _, err := os.Stat(filepath.Join(dst, name)); err != nil {
			t.Errorf("%s 应存在: %v", name, err)
		}
	}

	exported := openBundle(t, dst)
	if exported.Config.Image != b.Config.Image {
		t.Error("导出的配置应与原配置一致")
	}

	t.Run("不能导出到自身内部", func(t *testing.T) {
		if err := b.Export(filepath.Join(src, "nested")); err == nil {
			t.Error("应返回错误")
		}
	})
}

func TestAssetKindString(t *testing.T) {
	tests := map[AssetKind]string{
		AssetImage:       "image",
		AssetImageActive: "image_active",
		AssetSound:       "sound",
		AssetIcon:        "icon",
		AssetKind(9):     "AssetKind(9)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("String() = %q, 期望 %q", got, want)
		}
	}
}

func TestSelect(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), config.FileName)
	appCfg := config.DefaultAppConfig()

	charDir := t.TempDir()
	if err := Select(configPath, &appCfg, charDir); err != nil {
		t.Fatalf("Select(): %v", err)
	}
	if appCfg.CharDir(configPath) != charDir {
		t.Errorf("CharDir() = %q, 期望 %q", appCfg.CharDir(configPath), charDir)
	}

	saved, err := config.LoadAppConfig(configPath, nil)
	if err != nil {
		t.Fatalf("LoadAppConfig(): %v", err)
	}
	if saved.Char != charDir {
		t.Errorf("保存的 char = %q, 期望 %q", saved.Char, charDir)
	}

	if err := Select(configPath, &appCfg, filepath.Join(charDir, "missing")); err == nil {
		t.Error("目录不存在时应返回错误")
	}
	if appCfg.Char != charDir {
		t.Error("失败时不应修改配置")
	}
}
