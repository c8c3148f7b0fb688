package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"level": "intermediate",
		"story": map[string]any{
			"paragraphs": 2,
			"topics":     []any{"travel", "food"},
		},
		"names": []string{"Taro", "Hanako"},
	}
	tests := []struct {
		in, want string
	}{
		{"Write an ${level} story.", "Write an intermediate story."},
		{"${ level }", "intermediate"},
		{"${story.paragraphs} paragraphs about ${story.topics[1]}", "2 paragraphs about food"},
		{"hero: ${names[0]}", "hero: Taro"},
		{"missing ${nope} stays", "missing ${nope} stays"},
		{"out of range ${names[5]}", "out of range ${names[5]}"},
		{"no placeholders", "no placeholders"},
	}
	for _, tt := range tests {
		if got := Interpolate(tt.in, data); got != tt.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Interpolate("${level}", nil); got != "${level}" {
		t.Fatalf("nil data should keep template, got %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("${level} ${paragraphs} ${level} ${a.b[0]}")
	want := []string{"level", "paragraphs", "a.b[0]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected placeholders (-want +got):\n%s", diff)
	}
}
