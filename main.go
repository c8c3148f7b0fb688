package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ByLCY/furigana/config"
	"github.com/ByLCY/furigana/fonts"
	"github.com/ByLCY/furigana/logging"
	"github.com/ByLCY/furigana/pipeline"
	"github.com/ByLCY/furigana/server"
)

func main() {
	envFiles := flag.String("env", ".env", "逗号分隔的 .env 文件列表")
	serve := flag.Bool("serve", false, "启动 HTTP 服务而不是只生成一次")
	output := flag.String("out", "", "PNG 输出路径（覆盖 OUTPUT_PATH）")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	log := logging.New(os.Stderr, *verbose)

	cfg, err := config.Load(splitList(*envFiles)...)
	if err != nil {
		fatal(log, "加载配置失败", err)
	}
	if *output != "" {
		cfg.OutputPath = *output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *serve, *debug, log); err != nil {
		fatal(log, "运行失败", err)
	}
}

// run 串联配置、生成与服务。
func run(ctx context.Context, cfg config.Config, serve bool, debugPath string, log *slog.Logger) error {
	// 字体缺失属于配置错误，启动时即失败。
	fontPath, err := fonts.Resolve(cfg.FontPaths)
	if err != nil {
		return err
	}
	log.Debug("font resolved", "path", fontPath)
	log.Info("text source", "kind", cfg.Source)

	gen, err := pipeline.New(pipeline.Options{
		Source:     cfg.TextSource(log),
		FontPaths:  cfg.FontPaths,
		Page:       cfg.Page,
		OutputPath: cfg.OutputPath,
		DebugPath:  debugPath,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	if !serve {
		sum, err := gen.Generate(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("已生成图片：%s（%d 行）\n", sum.Path, sum.Lines)
		return nil
	}

	handler := server.New(server.Options{
		Generator:    gen,
		Static:       cfg.ServeMode == config.ServeStatic,
		ArtifactPath: cfg.OutputPath,
		Logger:       log,
	})
	return server.ListenAndServe(ctx, cfg.ListenAddr, handler, log)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "err", err)
	os.Exit(1)
}
