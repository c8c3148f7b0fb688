// Package pipeline runs one end-to-end generation: acquire text, parse the
// furigana annotations, lay the tokens out and write the rendered PNG.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/furigana/dsl"
	"github.com/ByLCY/furigana/fonts"
	"github.com/ByLCY/furigana/layout"
	"github.com/ByLCY/furigana/logging"
	"github.com/ByLCY/furigana/renderer"
	canvasrenderer "github.com/ByLCY/furigana/renderer/canvas"
	"github.com/ByLCY/furigana/source"
)

// Options configures a Generator.
type Options struct {
	Source     source.Source
	FontPaths  []string
	Page       layout.Geometry
	OutputPath string
	// DebugPath, when set, receives the layout as JSON after every run.
	DebugPath string
	Logger    *slog.Logger
}

// Generator produces the annotated image. Each call resolves fonts and
// acquires text afresh, so no state is shared between invocations.
type Generator struct {
	opts Options
	log  *slog.Logger
	// newRenderer builds the renderer for one run from the font bytes.
	newRenderer func(font []byte) (renderer.Renderer, error)
}

// Summary describes the outcome of one run.
type Summary struct {
	Path      string
	FontPath  string
	Lines     int
	Truncated bool
	Dropped   int
	Bytes     []byte
}

// New validates the options.
func New(opts Options) (*Generator, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("未配置文本来源")
	}
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("输出路径不能为空")
	}
	if err := opts.Page.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{opts: opts, log: logging.OrNop(opts.Logger)}
	g.newRenderer = func(font []byte) (renderer.Renderer, error) {
		return canvasrenderer.New(canvasrenderer.Options{
			Font:   canvasrenderer.Resource{Bytes: font},
			Page:   opts.Page,
			Logger: opts.Logger,
		})
	}
	return g, nil
}

// Generate runs the pipeline and writes the PNG to the output path.
// On failure the previous artifact is left untouched.
func (g *Generator) Generate(ctx context.Context) (*Summary, error) {
	fontPath, fontData, err := fonts.Load(g.opts.FontPaths)
	if err != nil {
		return nil, err
	}
	g.log.Info("using font", "path", fontPath)

	r, err := g.newRenderer(fontData)
	if err != nil {
		return nil, fmt.Errorf("初始化渲染器失败: %w", err)
	}
	// 排版与绘制必须共用同一套字体度量。
	ts, ok := r.(layout.Typesetter)
	if !ok {
		return nil, fmt.Errorf("渲染器未实现排版接口")
	}

	text, err := source.Fetch(ctx, g.opts.Source)
	if err != nil {
		return nil, err
	}

	segs, err := dsl.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("解析注音文本失败: %w", err)
	}
	result, err := layout.Build(layout.Tokenize(segs), layout.BuildOptions{
		Typesetter: ts,
		Page:       g.opts.Page,
		Logger:     g.opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	if result.Truncated {
		g.log.Warn("text truncated at bottom margin", "lines", len(result.Lines), "dropped", result.Dropped)
	}

	if g.opts.DebugPath != "" {
		debug, err := layout.DebugJSON(result)
		if err != nil {
			return nil, fmt.Errorf("编码调试 JSON 失败: %w", err)
		}
		if err := WriteFileAtomic(g.opts.DebugPath, debug); err != nil {
			return nil, err
		}
		g.log.Debug("wrote layout debug", "path", g.opts.DebugPath)
	}

	data, err := r.Render(result)
	if err != nil {
		return nil, fmt.Errorf("渲染 PNG 失败: %w", err)
	}
	if err := WriteFileAtomic(g.opts.OutputPath, data); err != nil {
		return nil, err
	}
	g.log.Info("wrote image", "path", g.opts.OutputPath, "lines", len(result.Lines), "bytes", len(data))

	return &Summary{
		Path:      g.opts.OutputPath,
		FontPath:  fontPath,
		Lines:     len(result.Lines),
		Truncated: result.Truncated,
		Dropped:   result.Dropped,
		Bytes:     data,
	}, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("设置 %s 权限失败: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("替换 %s 失败: %w", path, err)
	}
	return nil
}
