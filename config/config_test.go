package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/furigana/fonts"
	"github.com/ByLCY/furigana/layout"
	"github.com/ByLCY/furigana/source"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Page != layout.DefaultGeometry() || cfg.OutputPath != "result.png" || cfg.ListenAddr != ":8000" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if diff := cmp.Diff(fonts.DefaultCandidates(), cfg.FontPaths); diff != "" {
		t.Fatalf("font candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestFromMapOverrides(t *testing.T) {
	sep := string(os.PathListSeparator)
	cfg, err := FromMap(map[string]string{
		"TEST_MODE":          "true",
		"TEST_FILE":          "stories/today.txt",
		"GEMINI_MODEL":       "gemini-2.5-pro",
		"STORY_LEVEL":        "beginner",
		"FONT_PATHS":         "a.ttf" + sep + " " + sep + "b.otf",
		"SERVE_MODE":         "Static",
		"CANVAS_WIDTH":       "800px",
		"CANVAS_HEIGHT":      "600",
		"MAIN_FONT_SIZE":     "24",
		"FURIGANA_FONT_SIZE": "12mm",
		"MARGIN":             "  20px ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != SourceFile || cfg.TestFile != "stories/today.txt" {
		t.Fatalf("TEST_MODE should select the file source: %+v", cfg)
	}
	if cfg.GeminiModel != "gemini-2.5-pro" || cfg.StoryLevel != "beginner" || cfg.StoryParagraphs != "two" {
		t.Fatalf("unexpected story settings: %+v", cfg)
	}
	if diff := cmp.Diff([]string{"a.ttf", "b.otf"}, cfg.FontPaths); diff != "" {
		t.Fatalf("font paths mismatch (-want +got):\n%s", diff)
	}
	if cfg.ServeMode != ServeStatic {
		t.Fatalf("expected static mode, got %q", cfg.ServeMode)
	}
	want := layout.Geometry{Width: 800, Height: 600, Margin: 20, MainSize: 24, FuriganaSize: 12, Spacing: 2}
	if diff := cmp.Diff(want, cfg.Page); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestPointSizesConvertToPixels(t *testing.T) {
	cfg, err := FromMap(map[string]string{"MAIN_FONT_SIZE": "24pt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.Page.MainSize, 24*layout.PtToMm; got != want {
		t.Fatalf("MainSize = %g, want %g", got, want)
	}
}

func TestTestModeOnlyAcceptsTrue(t *testing.T) {
	tests := []struct {
		value string
		want  SourceKind
	}{
		{"true", SourceFile},
		{"TRUE", SourceFile},
		{" True ", SourceFile},
		{"false", SourceGemini},
		{"1", SourceGemini},
		{"t", SourceGemini},
		{"yes", SourceGemini},
		{"on", SourceGemini},
		{"maybe", SourceGemini},
	}
	for _, tt := range tests {
		cfg, err := FromMap(map[string]string{"TEST_MODE": tt.value})
		if err != nil {
			t.Fatalf("TEST_MODE=%q: unexpected error: %v", tt.value, err)
		}
		if cfg.Source != tt.want {
			t.Fatalf("TEST_MODE=%q: source = %q, want %q", tt.value, cfg.Source, tt.want)
		}
	}
}

func TestTextSourceOverridesTestMode(t *testing.T) {
	cfg, err := FromMap(map[string]string{"TEST_MODE": "true", "TEXT_SOURCE": "gemini", "GEMINI_API_KEY": "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g, ok := cfg.TextSource(nil).(source.Gemini)
	if !ok {
		t.Fatalf("expected Gemini source, got %T", cfg.TextSource(nil))
	}
	if g.APIKey != "k" || g.Model != source.DefaultModel {
		t.Fatalf("unexpected gemini source: %+v", g)
	}
	if diff := cmp.Diff(map[string]any{"level": "intermediate", "paragraphs": "two"}, g.PromptData); diff != "" {
		t.Fatalf("prompt data mismatch (-want +got):\n%s", diff)
	}

	cfg.Source = SourceFile
	f, ok := cfg.TextSource(nil).(source.File)
	if !ok || f.Path != "test.txt" {
		t.Fatalf("expected file source for test.txt, got %#v", cfg.TextSource(nil))
	}
}

func TestFromMapErrors(t *testing.T) {
	tests := []map[string]string{
		{"TEXT_SOURCE": "clipboard"},
		{"SERVE_MODE": "both"},
		{"CANVAS_WIDTH": "wide"},
		{"MARGIN": "-5"},
		{"MARGIN": "700"},
	}
	for _, env := range tests {
		if _, err := FromMap(env); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}

func TestLoadReadsEnvFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	if err := os.WriteFile(first, []byte("STORY_LEVEL=advanced\nOUTPUT_PATH=out/first.png\n"), 0o644); err != nil {
		t.Fatalf("写入 env 文件失败: %v", err)
	}
	if err := os.WriteFile(second, []byte("STORY_LEVEL=beginner\nSTORY_PARAGRAPHS=three\n"), 0o644); err != nil {
		t.Fatalf("写入 env 文件失败: %v", err)
	}
	t.Setenv("OUTPUT_PATH", "from-env.png")

	cfg, err := Load(first, filepath.Join(dir, "missing.env"), second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoryLevel != "advanced" {
		t.Fatalf("earlier file should win, got %q", cfg.StoryLevel)
	}
	if cfg.StoryParagraphs != "three" {
		t.Fatalf("later file should fill unset keys, got %q", cfg.StoryParagraphs)
	}
	if cfg.OutputPath != "from-env.png" {
		t.Fatalf("process environment should override files, got %q", cfg.OutputPath)
	}
}

func TestLoadRejectsMalformedEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	if err := os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o644); err != nil {
		t.Fatalf("写入 env 文件失败: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "bad.env") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}
