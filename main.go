package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/qingpet/pkg/app"
	"github.com/decker502/qingpet/pkg/character"
	"github.com/decker502/qingpet/pkg/config"
	"github.com/decker502/qingpet/pkg/embedded"
)

func main() {
	configPath := flag.String("config", config.FileName, "应用配置文件路径")
	verbose := flag.Bool("verbose", false, "输出详细日志")
	importChar := flag.String("import-char", "", "切换到指定的角色目录")
	exportChar := flag.String("export-char", "", "把当前角色目录导出到指定位置")
	setImage := flag.String("set-image", "", "替换空闲立绘")
	setImageActive := flag.String("set-image-active", "", "替换弹跳立绘")
	setSound := flag.String("set-sound", "", "替换音效")
	setIcon := flag.String("set-icon", "", "替换窗口图标")
	flag.Parse()

	embedded.Init(dataFS)

	edits := map[character.AssetKind]string{
		character.AssetImage:       *setImage,
		character.AssetImageActive: *setImageActive,
		character.AssetSound:       *setSound,
		character.AssetIcon:        *setIcon,
	}
	if *importChar != "" || *exportChar != "" || hasEdits(edits) {
		if err := runCommands(*configPath, *importChar, *exportChar, edits); err != nil {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
			os.Exit(1)
		}
		return
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	if err := gameApp.Run(); err != nil {
		log.Fatal(err)
	}
}

func hasEdits(edits map[character.AssetKind]string) bool {
	for _, src := range edits {
		if src != "" {
			return true
		}
	}
	return false
}

// runCommands 执行命令行指定的角色操作，不打开窗口
// 顺序：切换角色 → 替换素材 → 导出
func runCommands(configPath, importChar, exportChar string, edits map[character.AssetKind]string) error {
	appCfg, err := config.LoadAppConfig(configPath, embedded.AppTemplate())
	if err != nil {
		return err
	}

	if importChar != "" {
		if err := character.Select(configPath, appCfg, importChar); err != nil {
			return err
		}
		fmt.Printf("已切换到角色 %s\n", appCfg.Char)
	}

	bundle, err := character.Open(appCfg.CharDir(configPath), embedded.CharTemplate())
	if err != nil {
		return err
	}

	for _, kind := range []character.AssetKind{
		character.AssetImage,
		character.AssetImageActive,
		character.AssetSound,
		character.AssetIcon,
	} {
		src := edits[kind]
		if src == "" {
			continue
		}
		if err := bundle.ImportAsset(kind, src); err != nil {
			return err
		}
		fmt.Printf("已替换 %s: %s\n", kind, src)
	}

	if exportChar != "" {
		if err := bundle.Export(exportChar); err != nil {
			return err
		}
		fmt.Printf("已导出到 %s\n", exportChar)
	}
	return nil
}
