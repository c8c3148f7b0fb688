package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{\s*([A-Za-z0-9_.\[\]]+)\s*\}`)

// Interpolate 将模板中的 ${name} 或 ${a.b[0]} 替换为 data 中对应的值。
// data 为空或路径不存在时保留原占位符，便于发现遗漏的变量。
func Interpolate(template string, data any) string {
	if data == nil {
		return template
	}
	return exprPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if val, ok := Lookup(data, groups[1]); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Placeholders 返回模板中出现的变量路径，按出现顺序去重。
func Placeholders(template string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Lookup 按点号路径在 map/切片中取值，支持 items[2] 形式的下标。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			next, ok := field(current, name)
			if !ok {
				return nil, false
			}
			current = next
		}
		for rest != "" {
			idxStr, tail, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, false
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			if current, ok = index(current, idx); !ok {
				return nil, false
			}
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return current, true
}

func field(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	default:
		return nil, false
	}
}

func index(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
