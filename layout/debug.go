package layout

import "encoding/json"

// DebugJSON 将排版结果编码为带缩进的 JSON，token 附带 type 字段。
// 写盘由调用方负责，便于与 PNG 一样原子替换。
func DebugJSON(res *Result) ([]byte, error) {
	if res == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(res, "", "  ")
}
