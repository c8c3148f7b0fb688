package renderer

import "github.com/ByLCY/furigana/layout"

// Renderer 将排版结果输出为最终文件。
// Render 返回生成的二进制数据（8 位灰度 PNG 字节）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
