// Package source acquires the annotated Japanese text that gets rendered.
//
// Two sources exist: a local file holding pre-formatted text, and the Gemini
// generative API asked for a short annotated story. Any failure is reported
// as ErrNoText so callers never start a render without input.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/ByLCY/furigana/binding"
	"github.com/ByLCY/furigana/logging"
)

var (
	// ErrNoText wraps every text acquisition failure.
	ErrNoText = errors.New("没有可用的文本")
	// ErrMissingCredentials is returned when the Gemini API key is unset.
	ErrMissingCredentials = errors.New("缺少 GEMINI_API_KEY")
)

// Delimiter separates the Japanese story from its English translation.
const Delimiter = "***"

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// PromptTemplate is the story request; ${level} and ${paragraphs} are filled
// from Gemini.PromptData.
const PromptTemplate = `Generate an ${level} level Japanese paragraph for reading practice. Do not print titles, section markers, or separators. Make it a good story, no more than ${paragraphs} paragraphs. For furigana, please place the kana representing the reading in square brackets (私[わたし]) on a per-character basis. Don't apply furigana for a word if there isn't any kanji.
First, print the story in Japanese, with furigana. Then, print the english translation. Separate the translations with three asterisks ***.`

// Source produces raw annotated text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// File reads pre-formatted text from disk.
type File struct {
	Path   string
	Logger *slog.Logger
}

// Fetch reads the whole file and trims surrounding whitespace.
func (f File) Fetch(ctx context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("%w: 读取 %s 失败: %v", ErrNoText, f.Path, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s 为空", ErrNoText, f.Path)
	}
	logging.OrNop(f.Logger).Info("loaded text from file", "path", f.Path, "length", len(text))
	return text, nil
}

// Generator is the subset of the genai models service used here.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks the Gemini API for a story.
type Gemini struct {
	APIKey     string
	Model      string
	Prompt     string         // defaults to PromptTemplate
	PromptData map[string]any // values for the prompt placeholders
	Logger     *slog.Logger

	// Client overrides the genai client, mainly for tests.
	Client Generator
}

// DefaultPromptData asks for an intermediate story of two paragraphs.
func DefaultPromptData() map[string]any {
	return map[string]any{"level": "intermediate", "paragraphs": "two"}
}

// BuildPrompt fills the prompt template. A placeholder left without a value
// is an error, so a half-filled prompt never reaches the service.
func (g Gemini) BuildPrompt() (string, error) {
	prompt := g.Prompt
	if prompt == "" {
		prompt = PromptTemplate
	}
	data := g.PromptData
	if data == nil {
		data = DefaultPromptData()
	}
	prompt = binding.Interpolate(prompt, data)
	if missing := binding.Placeholders(prompt); len(missing) > 0 {
		return "", fmt.Errorf("提示词变量未赋值: %v", missing)
	}
	return prompt, nil
}

// Fetch sends a single request; there are no retries.
func (g Gemini) Fetch(ctx context.Context) (string, error) {
	log := logging.OrNop(g.Logger)
	client := g.Client
	if client == nil {
		if g.APIKey == "" {
			return "", fmt.Errorf("%w: %w", ErrNoText, ErrMissingCredentials)
		}
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.APIKey, Backend: genai.BackendGeminiAPI})
		if err != nil {
			return "", fmt.Errorf("%w: 创建 Gemini 客户端失败: %v", ErrNoText, err)
		}
		client = c.Models
	}
	prompt, err := g.BuildPrompt()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	model := g.Model
	if model == "" {
		model = DefaultModel
	}

	log.Info("generating text", "model", model)
	resp, err := client.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: Gemini 生成失败: %v", ErrNoText, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: Gemini 返回空内容", ErrNoText)
	}
	log.Info("generated text", "model", model, "length", len(text))
	return text, nil
}

// Japanese returns the text before the first line consisting of the
// delimiter, trimmed. Text without a delimiter is returned whole.
func Japanese(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == Delimiter {
			lines = lines[:i]
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Fetch acquires text from src and keeps only the Japanese portion.
func Fetch(ctx context.Context, src Source) (string, error) {
	if src == nil {
		return "", fmt.Errorf("%w: 未配置文本来源", ErrNoText)
	}
	raw, err := src.Fetch(ctx)
	if err != nil {
		return "", err
	}
	text := Japanese(raw)
	if text == "" {
		return "", fmt.Errorf("%w: 分隔符之前没有日文内容", ErrNoText)
	}
	return text, nil
}
