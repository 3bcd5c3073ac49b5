package strings

import (
	"testing"
	"unicode/utf8"
)

func TestSingleLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short error unchanged", "forbidden", 20, "forbidden"},
		{"exact length unchanged", "forbidden", 9, "forbidden"},
		{"long error truncated", "Ingress ingr-shop: admission webhook denied", 20, "Ingress ingr-shop..."},
		{"multi-line error flattened", "deployments.apps \"app-shop\"\nis forbidden", 64, "deployments.apps \"app-shop\" is forbidden"},
		{"whitespace runs collapsed", "a \t\r\n  b", 10, "a b"},
		{"surrounding whitespace trimmed", "  ns-shop  ", 20, "ns-shop"},
		{"unicode preserved", "héllo wörld", 20, "héllo wörld"},
		{"unicode truncation safe", "日本語テスト文字列", 6, "日本語..."},
		{"emoji preserved", "deployed 👋", 20, "deployed 👋"},
		{"empty", "", 10, ""},
		{"whitespace only", "   \n\t  ", 10, ""},
		{"zero clamped", "hello", 0, "h..."},
		{"negative clamped", "hello", -5, "h..."},
		{"at minimum", "hello", MinTruncateLen, "h..."},
		{"below minimum but fits", "hi", 3, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SingleLine(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("SingleLine(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestSingleLine_RuneLength(t *testing.T) {
	input := "日本語テスト" // 6 runes, 18 bytes
	result := SingleLine(input, 5)

	if result != "日本..." {
		t.Errorf("Expected %q but got %q", "日本...", result)
	}
	if n := utf8.RuneCountInString(result); n != 5 {
		t.Errorf("Expected 5 runes but got %d", n)
	}
}

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxBytes int
		expected string
	}{
		{"short unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"ascii truncated", "hello world", 8, "hello..."},
		{"newlines kept", "line one\nline two", 64, "line one\nline two"},
		{"multi-byte rune not split", "aé日本", 7, "aé..."},
		{"clamped", "hello", 1, "h..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateBytes(tt.input, tt.maxBytes)
			if result != tt.expected {
				t.Errorf("TruncateBytes(%q, %d) = %q, want %q", tt.input, tt.maxBytes, result, tt.expected)
			}
			if !utf8.ValidString(result) {
				t.Errorf("TruncateBytes(%q, %d) produced invalid UTF-8", tt.input, tt.maxBytes)
			}
			if len(tt.input) > tt.maxBytes && tt.maxBytes >= MinTruncateLen && len(result) > tt.maxBytes {
				t.Errorf("result %q longer than %d bytes", result, tt.maxBytes)
			}
		})
	}
}
