package layout

import "log/slog"

// BuildOptions 配置排版阶段所需的依赖，例如度量后端与画布参数。
type BuildOptions struct {
	Typesetter Typesetter
	Page       Geometry
	// MaxWidth 覆盖 Page.MaxLineWidth()，<=0 时使用页面可用宽度。
	MaxWidth float64
	Logger   *slog.Logger
}

// Typesetter 负责按字体角色度量文字，排版与渲染必须使用同一套字体度量。
type Typesetter interface {
	Measure(text string, role FontRole) Extent
}
