package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/furigana/dsl"
)

// Tokenize 将段落展开为可排版的 token。
// ASCII 文本按词聚合，非 ASCII 字符逐字拆开，注音段保持整体。
// 以码点 128 为界的判断是固定规则，不做完整的 Unicode 分词。
func Tokenize(segments []dsl.Segment) []Token {
	var tokens []Token
	for _, seg := range segments {
		switch s := seg.(type) {
		case dsl.PlainText:
			tokens = appendPlain(tokens, s.Content)
		case dsl.Furigana:
			tokens = append(tokens, Furigana{Base: s.Base, Reading: s.Reading})
		}
	}
	return tokens
}

func appendPlain(tokens []Token, content string) []Token {
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, Word{Content: word.String()})
		word.Reset()
	}

	for _, r := range content {
		switch {
		case r == '\n':
			flush()
			tokens = append(tokens, LineBreak{})
		case r < utf8.RuneSelf:
			if isSpace(r) {
				flush()
				tokens = append(tokens, Word{Content: string(r)})
				continue
			}
			word.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, Char{Content: string(r)})
		}
	}
	flush()
	return tokens
}

// isSpace 额外把 ASCII 的 0x1C–0x1F 分隔符视为空白。
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
