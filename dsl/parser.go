package dsl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 注音写法：一个或多个汉字，后面可跟假名送り仮名，紧接着方括号中的读音。
// 字符区间与原有格式保持一致，不做推广。
const (
	basePattern    = `[一-龯]+[ぁ-ゟァ-ヿ]*`
	readingPattern = `[ぁ-ゟァ-ヿー]+`
)

var (
	furiganaPattern = regexp.MustCompile(`^(` + basePattern + `)\[(` + readingPattern + `)\]$`)

	// Rules are tried in order at every position, which gives the same
	// leftmost-first result as scanning the text with the annotation regexp.
	annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ruby", Pattern: basePattern + `\[` + readingPattern + `\]`},
		{Name: "Plain", Pattern: `[^一-龯]+`},
		{Name: "Ideograph", Pattern: `[一-龯]`},
	})

	textParser = participle.MustBuild[Text](
		participle.Lexer(annotationLexer),
	)
)

// Text is the root AST node for annotated reading text.
type Text struct {
	Spans []*Span `parser:"@@*"`
}

// Span is either an annotated word or a run of literal text.
type Span struct {
	Ruby  *RubyLiteral `parser:"  @Ruby"`
	Plain string       `parser:"| @( Plain | Ideograph )+"`
}

// RubyLiteral splits a captured `base[reading]` token.
type RubyLiteral struct {
	Base    string
	Reading string
}

// Capture implements participle.Capture.
func (r *RubyLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("furigana capture requires value")
	}
	m := furiganaPattern.FindStringSubmatch(strings.Join(values, ""))
	if m == nil {
		return fmt.Errorf("malformed furigana %q", values[0])
	}
	r.Base, r.Reading = m[1], m[2]
	return nil
}

// Segment is a parsed piece of reading text: PlainText or Furigana.
type Segment interface {
	segment()
}

// PlainText is literal text without annotation.
type PlainText struct {
	Content string `json:"content"`
}

// Furigana is base text with its phonetic reading.
type Furigana struct {
	Base    string `json:"base"`
	Reading string `json:"reading"`
}

func (PlainText) segment() {}
func (Furigana) segment()  {}

// Parse splits annotated text into segments in source order.
// Brackets that do not follow a qualifying base stay literal.
func Parse(text string) ([]Segment, error) {
	if text == "" {
		return nil, nil
	}
	ast, err := textParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("解析注音文本失败: %w", err)
	}
	return ast.Segments(), nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) []Segment {
	segs, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return segs
}

// Segments converts the AST into segments.
func (t *Text) Segments() []Segment {
	if t == nil {
		return nil
	}
	out := make([]Segment, 0, len(t.Spans))
	for _, span := range t.Spans {
		switch {
		case span.Ruby != nil:
			out = append(out, Furigana{Base: span.Ruby.Base, Reading: span.Ruby.Reading})
		case span.Plain != "":
			out = append(out, PlainText{Content: span.Plain})
		}
	}
	return out
}

// Join reconstructs the text of the segments without readings.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		switch s := s.(type) {
		case PlainText:
			b.WriteString(s.Content)
		case Furigana:
			b.WriteString(s.Base)
		}
	}
	return b.String()
}
