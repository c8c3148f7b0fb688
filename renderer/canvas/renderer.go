package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/furigana/layout"
	"github.com/ByLCY/furigana/logging"
	"github.com/ByLCY/furigana/renderer"
)

// furiganaLift moves the reading's top down from one furigana size above
// the line top, leaving a small gap between reading and base text.
const furiganaLift = 2.5

// Renderer draws layout results via github.com/tdewolff/canvas and
// rasterizes them into a single-channel grayscale PNG.
//
// The same font faces serve Measure and drawing, so layout widths and drawn
// widths agree exactly.
type Renderer struct {
	page     layout.Geometry
	main     *canvas.FontFace
	furigana *canvas.FontFace
	log      *slog.Logger
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Font   Resource
	Page   layout.Geometry
	Logger *slog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// New loads one face per font size. Faces are reused for every measurement
// and drawing call made through this renderer.
func New(opts Options) (*Renderer, error) {
	if err := opts.Page.Validate(); err != nil {
		return nil, err
	}
	data, err := loadResource(opts.Font)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("furigana")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	r := &Renderer{
		page:     opts.Page,
		main:     family.Face(layout.PixelsToPoints(opts.Page.MainSize), canvas.Black, canvas.FontRegular, canvas.FontNormal),
		furigana: family.Face(layout.PixelsToPoints(opts.Page.FuriganaSize), canvas.Black, canvas.FontRegular, canvas.FontNormal),
		log:      logging.OrNop(opts.Logger),
	}
	return r, nil
}

func loadResource(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	if res.Path == "" {
		return nil, errors.New("字体资源缺少 Bytes 或 Path")
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
	}
	return data, nil
}

// Measure implements layout.Typesetter. Canvas units are pixels here, so
// widths and metrics come back in pixels.
func (r *Renderer) Measure(text string, role layout.FontRole) layout.Extent {
	face := r.face(role)
	m := face.Metrics()
	return layout.Extent{
		Width:   face.TextWidth(text),
		Ascent:  m.Ascent,
		Descent: m.Descent,
	}
}

func (r *Renderer) face(role layout.FontRole) *canvas.FontFace {
	if role == layout.FuriganaFont {
		return r.furigana
	}
	return r.main
}

// Render renders the result into PNG bytes (8-bit grayscale).
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	img, err := r.Image(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Image draws the result on a white canvas and returns the grayscale raster.
func (r *Renderer) Image(result *layout.Result) (*image.Gray, error) {
	if result == nil {
		return nil, errors.New("渲染结果为空")
	}
	page := result.Page
	if page != r.page {
		return nil, fmt.Errorf("排版参数与渲染器字体不一致: layout=%+v renderer=%+v", page, r.page)
	}

	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与排版保持左上角为原点
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))

	for _, line := range result.Lines {
		r.drawLine(ctx, line)
	}

	// 每个画布单位对应一个像素
	rgba := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	gray := image.NewGray(rgba.Bounds())
	xdraw.Draw(gray, gray.Bounds(), rgba, rgba.Bounds().Min, xdraw.Src)
	r.log.Debug("rendered image", "lines", len(result.Lines), "width", gray.Bounds().Dx(), "height", gray.Bounds().Dy())
	return gray, nil
}

// drawLine 从左边距开始逐个绘制 token。line.Y 为行顶部，基线 = 顶部 + 上升部。
func (r *Renderer) drawLine(ctx *canvas.Context, line layout.Line) {
	x := r.page.Margin
	mainAscent := r.main.Metrics().Ascent
	baseline := line.Y + mainAscent

	for _, tok := range line.Tokens {
		switch t := tok.(type) {
		case layout.Word:
			x += r.drawRun(ctx, r.main, t.Content, x, baseline)
		case layout.Char:
			x += r.drawRun(ctx, r.main, t.Content, x, baseline)
		case layout.Furigana:
			baseWidth := r.main.TextWidth(t.Base)
			readingWidth := r.furigana.TextWidth(t.Reading)
			// 读音在基字上方居中，读音更宽时偏移为负
			readingX := x + (baseWidth-readingWidth)/2
			readingTop := line.Y - r.page.FuriganaSize + furiganaLift
			r.drawRun(ctx, r.furigana, t.Reading, readingX, readingTop+r.furigana.Metrics().Ascent)
			r.drawRun(ctx, r.main, t.Base, x, baseline)
			x += math.Max(baseWidth, readingWidth)
		case layout.LineBreak:
			continue
		}
		// 空白 token 本身就是间距
		if !layout.IsWhitespace(tok) {
			x += r.page.Spacing
		}
	}
}

func (r *Renderer) drawRun(ctx *canvas.Context, face *canvas.FontFace, s string, x, baseline float64) float64 {
	if s == "" {
		return 0
	}
	ctx.DrawText(x, baseline, canvas.NewTextLine(face, s, canvas.Left))
	return face.TextWidth(s)
}
