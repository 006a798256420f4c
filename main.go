package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/heartbloom/pkg/app"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	startAt := flag.String("stage", "", "从指定阶段开始: loading, hero, letter")
	speed := flag.Float64("speed", 1, "时间倍率（调试用）")
	seed := flag.Int64("seed", 0, "粒子随机种子，0 使用当前时间")
	flag.Parse()

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		StartAt:    *startAt,
		Speed:      *speed,
		Seed:       *seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer gameApp.Shutdown()

	cfg := gameApp.Experience()
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Window.TPS)

	if err := ebiten.RunGame(gameApp); err != nil {
		log.Fatal(err)
	}
}
