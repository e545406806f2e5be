package security

import (
	"strings"
	"testing"
)

// TestPlainText_RemovesTags はHTMLタグがすべて除去されることを検証する。
func TestPlainText_RemovesTags(t *testing.T) {
	p := NewTextPolicy()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"インラインタグ", "The <strong>market</strong> rallied.", "The market rallied."},
		{"リンク", `Read <a href="https://example.com">more</a> here.`, "Read more here."},
		{"スクリプト断片", "before<script>alert(1)</script>after", "beforeafter"},
		{"ネストしたタグ", "<div><p>nested <em>text</em></p></div>", "nested text"},
		{"タグなし", "plain sentence", "plain sentence"},
		{"空文字列", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.PlainText(tt.input)
			if got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestPlainText_UnescapesEntities はHTMLエンティティがデコードされることを検証する。
func TestPlainText_UnescapesEntities(t *testing.T) {
	p := NewTextPolicy()

	got := p.PlainText("Tom &amp; Jerry &lt;3")
	if got != "Tom & Jerry <3" {
		t.Errorf("PlainText = %q, want %q", got, "Tom & Jerry <3")
	}
}

// TestPlainText_TrimsWhitespace は前後の空白が除去されることを検証する。
func TestPlainText_TrimsWhitespace(t *testing.T) {
	p := NewTextPolicy()

	got := p.PlainText("  \n <p>body</p> \n ")
	if got != "body" {
		t.Errorf("PlainText = %q, want %q", got, "body")
	}
}

// TestPlainText_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestPlainText_Idempotent(t *testing.T) {
	p := NewTextPolicy()

	input := "<p>A <b>bold</b> claim &amp; a citation.</p>"
	first := p.PlainText(input)
	second := p.PlainText(first)
	if first != second {
		t.Errorf("PlainText is not idempotent: first %q, second %q", first, second)
	}
}

// TestPlainText_LongInput は長い本文でもタグが残らないことを検証する。
func TestPlainText_LongInput(t *testing.T) {
	p := NewTextPolicy()

	input := strings.Repeat("<p>paragraph text</p>", 500)
	got := p.PlainText(input)
	if strings.Contains(got, "<") || strings.Contains(got, ">") {
		t.Error("expected no angle brackets in sanitized output")
	}
}
