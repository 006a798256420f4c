// termview 在终端里播放体验：tcell 屏幕、鼠标移动/点击/滚轮输入
//
// 用法：
//
//	go run ./cmd/termview [--config experience.yaml] [--stage hero] [--log termview.log]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/decker502/heartbloom/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "YAML 配置文件路径")
	stage := flag.String("stage", "", "从指定阶段开始: loading, hero, letter")
	logPath := flag.String("log", "", "日志文件路径（终端被占用，默认不输出日志）")
	speed := flag.Float64("speed", 1, "时间倍率")
	seed := flag.Int64("seed", 0, "粒子随机种子，0 使用当前时间")
	flag.Parse()

	if err := run(*configPath, *stage, *logPath, *speed, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, stage, logPath string, speed float64, seed int64) error {
	log.SetOutput(io.Discard)
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("无法创建日志文件: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.EnableMouse()
	screen.HideCursor()

	v := newView(screen, cfg, seed, speed)
	if err := v.start(stage); err != nil {
		screen.Fini()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return v.run(ctx)
}
