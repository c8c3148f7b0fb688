package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 16, 32, 72, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in       string
		wantPx   float64
		wantUnit Unit
	}{
		{"32px", 32, UnitPX},
		{" 16 PX ", 16, UnitPX},
		{"50", 50, UnitNone},
		{"12.5mm", 12.5, UnitMM},
		{"24pt", 24 * PtToMm, UnitPT},
	}
	for _, tt := range tests {
		l, err := ParseLength(tt.in)
		if err != nil {
			t.Fatalf("%q: 解析失败: %v", tt.in, err)
		}
		if l.Unit != tt.wantUnit {
			t.Fatalf("%q: 单位错误: got=%v want=%v", tt.in, l.Unit, tt.wantUnit)
		}
		if diff := math.Abs(l.Pixels() - tt.wantPx); diff > 1e-9 {
			t.Fatalf("%q: 像素值错误: got=%g want=%g", tt.in, l.Pixels(), tt.wantPx)
		}
	}
}

func TestParseLengthRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "px", "abc", "-3px"} {
		if _, err := ParseLength(in); err == nil {
			t.Fatalf("%q: 期望解析失败", in)
		}
	}
}

// 32px 的字号换算为 pt 后再按 pt 解释，应回到 32px。
func TestPixelsToPoints(t *testing.T) {
	pt := PixelsToPoints(32)
	l := Length{Value: pt, Unit: UnitPT}
	if diff := math.Abs(l.Pixels() - 32); diff > 1e-9 {
		t.Fatalf("px→pt→px 往返误差过大: got=%g", l.Pixels())
	}
	if got := (Length{Value: 32, Unit: UnitPX}).Points(); math.Abs(got-pt) > 1e-9 {
		t.Fatalf("Points 与 PixelsToPoints 不一致: %g vs %g", got, pt)
	}
}

func TestLengthString(t *testing.T) {
	for in, want := range map[string]string{"32px": "32px", "12.5 MM": "12.5mm", "50": "50", "9pt": "9pt"} {
		l, err := ParseLength(in)
		if err != nil {
			t.Fatalf("%q: 解析失败: %v", in, err)
		}
		if got := l.String(); got != want {
			t.Fatalf("%q: String()=%q want %q", in, got, want)
		}
	}
}
