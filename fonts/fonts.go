package fonts

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotFound 表示候选路径中没有可用的日文字体，属于配置错误。
var ErrNotFound = errors.New("未找到日文字体")

// DefaultCandidates 为默认的字体查找顺序：容器内自带字体、系统 Noto 字体、工作目录。
func DefaultCandidates() []string {
	return []string{
		"/app/fonts/NotoSansJP-Regular.ttf",
		"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.otf",
		"NotoSansJP-Regular.ttf",
	}
}

// Resolve 按顺序返回第一个存在的普通文件路径。
func Resolve(candidates []string) (string, error) {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return path, nil
	}
	return "", fmt.Errorf("%w（已尝试 %d 个位置: %v）", ErrNotFound, len(candidates), candidates)
}

// Load 解析字体路径并读取字体数据。
func Load(candidates []string) (string, []byte, error) {
	path, err := Resolve(candidates)
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("字体文件 %s 为空", path)
	}
	return path, data, nil
}
