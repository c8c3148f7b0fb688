// Package config assembles the runtime configuration from .env files and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ByLCY/furigana/fonts"
	"github.com/ByLCY/furigana/layout"
	"github.com/ByLCY/furigana/source"
)

// SourceKind selects where the annotated text comes from.
type SourceKind string

const (
	SourceFile   SourceKind = "file"
	SourceGemini SourceKind = "gemini"
)

// ServeMode selects what GET / does.
type ServeMode string

const (
	// ServeGenerate runs the pipeline on every request.
	ServeGenerate ServeMode = "generate"
	// ServeStatic returns the last artifact from disk.
	ServeStatic ServeMode = "static"
)

// Config is the explicit configuration passed to the pipeline and server.
type Config struct {
	Source          SourceKind
	TestFile        string
	GeminiAPIKey    string
	GeminiModel     string
	StoryLevel      string
	StoryParagraphs string
	FontPaths       []string
	OutputPath      string
	ListenAddr      string
	ServeMode       ServeMode
	Page            layout.Geometry
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Source:          SourceGemini,
		TestFile:        "test.txt",
		GeminiModel:     source.DefaultModel,
		StoryLevel:      "intermediate",
		StoryParagraphs: "two",
		FontPaths:       fonts.DefaultCandidates(),
		OutputPath:      "result.png",
		ListenAddr:      ":8000",
		ServeMode:       ServeGenerate,
		Page:            layout.DefaultGeometry(),
	}
}

// Load reads the given .env files (missing files are skipped), overlays the
// process environment and parses the result. With no files, ".env" in the
// working directory is tried.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	env := map[string]string{}
	for _, name := range envFiles {
		vals, err := godotenv.Read(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("读取 %s 失败: %w", name, err)
		}
		for k, v := range vals {
			// earlier files win, as with godotenv.Load
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return FromMap(env)
}

// FromMap parses configuration from a variable map.
func FromMap(env map[string]string) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := env[key]
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	// only a case-insensitive "true" enables test mode; any other value is false
	if v, ok := get("TEST_MODE"); ok && strings.EqualFold(v, "true") {
		cfg.Source = SourceFile
	}
	if v, ok := get("TEXT_SOURCE"); ok {
		switch kind := SourceKind(strings.ToLower(v)); kind {
		case SourceFile, SourceGemini:
			cfg.Source = kind
		default:
			return Config{}, fmt.Errorf("TEXT_SOURCE 取值无效 %q（可选 file、gemini）", v)
		}
	}
	if v, ok := get("SERVE_MODE"); ok {
		switch mode := ServeMode(strings.ToLower(v)); mode {
		case ServeGenerate, ServeStatic:
			cfg.ServeMode = mode
		default:
			return Config{}, fmt.Errorf("SERVE_MODE 取值无效 %q（可选 generate、static）", v)
		}
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"TEST_FILE", &cfg.TestFile},
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"GEMINI_MODEL", &cfg.GeminiModel},
		{"STORY_LEVEL", &cfg.StoryLevel},
		{"STORY_PARAGRAPHS", &cfg.StoryParagraphs},
		{"OUTPUT_PATH", &cfg.OutputPath},
		{"LISTEN_ADDR", &cfg.ListenAddr},
	}
	for _, s := range strs {
		if v, ok := get(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := get("FONT_PATHS"); ok {
		var paths []string
		for _, p := range strings.Split(v, string(os.PathListSeparator)) {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		cfg.FontPaths = paths
	}

	lengths := []struct {
		key string
		dst *float64
	}{
		{"CANVAS_WIDTH", &cfg.Page.Width},
		{"CANVAS_HEIGHT", &cfg.Page.Height},
		{"MAIN_FONT_SIZE", &cfg.Page.MainSize},
		{"FURIGANA_FONT_SIZE", &cfg.Page.FuriganaSize},
		{"MARGIN", &cfg.Page.Margin},
	}
	for _, l := range lengths {
		v, ok := get(l.key)
		if !ok {
			continue
		}
		length, err := layout.ParseLength(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", l.key, err)
		}
		*l.dst = length.Pixels()
	}
	if err := cfg.Page.Validate(); err != nil {
		return Config{}, fmt.Errorf("页面尺寸无效: %w", err)
	}
	return cfg, nil
}

// TextSource builds the configured text source.
func (c Config) TextSource(log *slog.Logger) source.Source {
	if c.Source == SourceFile {
		return source.File{Path: c.TestFile, Logger: log}
	}
	return source.Gemini{
		APIKey: c.GeminiAPIKey,
		Model:  c.GeminiModel,
		Logger: log,
		PromptData: map[string]any{
			"level":      c.StoryLevel,
			"paragraphs": c.StoryParagraphs,
		},
	}
}
