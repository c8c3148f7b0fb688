package layout

import (
	"encoding/json"
	"fmt"
)

// 该文件定义排版单元、行与排版结果，供换行引擎、渲染与调试 JSON 共用。

// Token 是排版的最小不可拆分单元，只有本包中的四种类型实现它。
type Token interface {
	token()
}

// Word 为一段连续的 ASCII 文本，或单个 ASCII 空白字符。
type Word struct {
	Content string
}

// Char 为单个非 ASCII 字符（按日文处理，允许在任意字符处换行）。
type Char struct {
	Content string
}

// LineBreak 表示显式换行。
type LineBreak struct{}

// Furigana 为带读音的基字，整体作为一个单元排版。
type Furigana struct {
	Base    string
	Reading string
}

func (Word) token()      {}
func (Char) token()      {}
func (LineBreak) token() {}
func (Furigana) token()  {}

// Text 返回 token 在正文中占用的文字（注音只返回基字，换行返回空串）。
func Text(tok Token) string {
	switch t := tok.(type) {
	case Word:
		return t.Content
	case Char:
		return t.Content
	case Furigana:
		return t.Base
	case LineBreak:
		return ""
	default:
		panic(fmt.Sprintf("layout: unknown token %T", tok))
	}
}

// Line 为排好的一行，Y 为行顶部在画布中的位置（像素）。
type Line struct {
	Tokens []Token `json:"-"`
	Width  float64 `json:"width"`
	Y      float64 `json:"y"`
	Forced bool    `json:"forced,omitempty"` // 行首位置本不允许断行
}

// Result 保存一次排版的全部行与页面参数。
type Result struct {
	Lines     []Line   `json:"lines"`
	Page      Geometry `json:"page"`
	Truncated bool     `json:"truncated"`
	Dropped   int      `json:"dropped"` // 因纵向空间不足被丢弃的 token 数
}

// Geometry 描述画布尺寸与字号，单位均为像素。
type Geometry struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Margin       float64 `json:"margin"`
	MainSize     float64 `json:"mainSize"`
	FuriganaSize float64 `json:"furiganaSize"`
	Spacing      float64 `json:"spacing"` // token 之间的固定间距
}

// DefaultGeometry 返回 1264×1680 的默认画布。
func DefaultGeometry() Geometry {
	return Geometry{
		Width:        1264,
		Height:       1680,
		Margin:       50,
		MainSize:     32,
		FuriganaSize: 16,
		Spacing:      2,
	}
}

// MaxLineWidth 为左右边距之间的可用宽度。
func (g Geometry) MaxLineWidth() float64 { return g.Width - 2*g.Margin }

// LineHeight 包含注音所需的空间。
func (g Geometry) LineHeight() float64 { return g.MainSize + g.FuriganaSize + 10 }

// FirstLineTop 首行下移，为首行注音留出空间。
func (g Geometry) FirstLineTop() float64 { return g.Margin + g.FuriganaSize + 5 }

// Fits 判断顶部位于 top 的行能否放入画布底部边距之内。
func (g Geometry) Fits(top float64) bool { return top+g.MainSize <= g.Height-g.Margin }

// Validate 检查尺寸是否可用于排版。
func (g Geometry) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("画布尺寸必须为正数: %gx%g", g.Width, g.Height)
	case g.MainSize <= 0 || g.FuriganaSize <= 0:
		return fmt.Errorf("字号必须为正数: main=%g furigana=%g", g.MainSize, g.FuriganaSize)
	case g.Margin < 0 || g.Spacing < 0:
		return fmt.Errorf("边距与间距不能为负数: margin=%g spacing=%g", g.Margin, g.Spacing)
	case g.MaxLineWidth() <= 0:
		return fmt.Errorf("边距 %g 超出画布宽度 %g", g.Margin, g.Width)
	}
	return nil
}

// FontRole 区分正文字体与注音字体。
type FontRole int

const (
	MainFont FontRole = iota
	FuriganaFont
)

func (r FontRole) String() string {
	switch r {
	case MainFont:
		return "main"
	case FuriganaFont:
		return "furigana"
	default:
		return fmt.Sprintf("FontRole(%d)", int(r))
	}
}

// Extent 为一段文字的度量结果（像素）。
type Extent struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// tokenJSON 是调试输出中 token 的表示。
type tokenJSON struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Base    string `json:"base,omitempty"`
	Reading string `json:"reading,omitempty"`
}

// MarshalJSON 为每个 token 附带 type 字段。
func (l Line) MarshalJSON() ([]byte, error) {
	type plain Line
	tokens := make([]tokenJSON, 0, len(l.Tokens))
	for _, tok := range l.Tokens {
		switch t := tok.(type) {
		case Word:
			tokens = append(tokens, tokenJSON{Type: "word", Content: t.Content})
		case Char:
			tokens = append(tokens, tokenJSON{Type: "char", Content: t.Content})
		case LineBreak:
			tokens = append(tokens, tokenJSON{Type: "linebreak"})
		case Furigana:
			tokens = append(tokens, tokenJSON{Type: "furigana", Base: t.Base, Reading: t.Reading})
		}
	}
	return json.Marshal(struct {
		plain
		Tokens []tokenJSON `json:"tokens"`
	}{plain: plain(l), Tokens: tokens})
}
