package layout

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/furigana/logging"
)

// noLineStart 中的标点不应出现在行首。
const noLineStart = "。、）】』」！？"

// CanBreakBefore 判断能否在 tok 之前换行。
// 空白与行首禁则标点返回 false，注音与显式换行总是允许。
func CanBreakBefore(tok Token) bool {
	content := textContent(tok)
	if content == "" {
		return true
	}
	if IsWhitespace(tok) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(content)
	return !strings.ContainsRune(noLineStart, first)
}

// IsWhitespace 判断 Word/Char 是否只由空白组成。
func IsWhitespace(tok Token) bool {
	content := textContent(tok)
	return content != "" && strings.TrimFunc(content, isSpace) == ""
}

func textContent(tok Token) string {
	switch t := tok.(type) {
	case Word:
		return t.Content
	case Char:
		return t.Content
	default:
		return ""
	}
}

// TokenWidth 返回 token 的排版宽度；注音取基字与读音宽度的较大者。
func TokenWidth(tok Token, ts Typesetter) float64 {
	switch t := tok.(type) {
	case Word:
		return ts.Measure(t.Content, MainFont).Width
	case Char:
		return ts.Measure(t.Content, MainFont).Width
	case Furigana:
		return math.Max(ts.Measure(t.Base, MainFont).Width, ts.Measure(t.Reading, FuriganaFont).Width)
	default:
		return 0
	}
}

// Build 以贪心方式将 token 排成行，不回溯、不断词。
// 纵向空间耗尽时停止，剩余 token 被丢弃并记录在 Result 中。
func Build(tokens []Token, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少度量后端 Typesetter")
	}
	page := opts.Page
	if err := page.Validate(); err != nil {
		return nil, err
	}
	log := logging.OrNop(opts.Logger)

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = page.MaxLineWidth()
	}

	b := &lineBuilder{page: page, y: page.FirstLineTop()}
	for i, tok := range tokens {
		if _, ok := tok.(LineBreak); ok {
			b.flush()
			if !b.advance() {
				b.truncate(len(tokens) - i - 1)
				break
			}
			continue
		}

		width := TokenWidth(tok, opts.Typesetter)
		if len(b.current.Tokens) > 0 && b.current.Width+width+page.Spacing > maxWidth {
			forced := !CanBreakBefore(tok)
			if forced {
				log.Debug("forced line break", "token", Text(tok), "line", len(b.lines))
			}
			b.flush()
			if !b.advance() {
				b.truncate(len(tokens) - i)
				break
			}
			b.current = Line{Tokens: []Token{tok}, Width: width, Forced: forced}
			continue
		}

		b.current.Tokens = append(b.current.Tokens, tok)
		b.current.Width += width + page.Spacing
	}
	if !b.truncated {
		b.flush()
	}

	res := &Result{
		Lines:     b.lines,
		Page:      page,
		Truncated: b.truncated,
		Dropped:   b.dropped,
	}
	log.Debug("layout finished", "tokens", len(tokens), "lines", len(res.Lines), "truncated", res.Truncated, "dropped", res.Dropped)
	return res, nil
}

// lineBuilder 记录当前行与纵向游标。
type lineBuilder struct {
	page      Geometry
	lines     []Line
	current   Line
	y         float64
	truncated bool
	dropped   int
}

// flush 收尾当前行；空行不输出。
func (b *lineBuilder) flush() {
	if len(b.current.Tokens) == 0 {
		b.current = Line{}
		return
	}
	b.current.Y = b.y
	b.lines = append(b.lines, b.current)
	b.current = Line{}
}

// advance 下移一行，返回新行是否仍在画布内。
func (b *lineBuilder) advance() bool {
	b.y += b.page.LineHeight()
	return b.page.Fits(b.y)
}

func (b *lineBuilder) truncate(dropped int) {
	b.truncated = true
	b.dropped = dropped
	b.current = Line{}
}
