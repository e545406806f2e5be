package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/newspulse/internal/security"
)

// mockSSRFGuard はテスト用のSSRF検証モック。
// httptestサーバーはループバックアドレスのため、実際のガードは使用できない。
type mockSSRFGuard struct {
	validateErr error
}

func (m *mockSSRFGuard) ValidateURL(rawURL string) error {
	return m.validateErr
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestExtractor(guard SSRFValidator) *Extractor {
	return NewExtractor(guard, security.NewTextPolicy(), testLogger(), 5*time.Second, 1<<20)
}

// TestExtractor_Extract は記事ページから段落テキストが抽出され、
// script/style/nav/footer/headerが除去されることを検証する。
func TestExtractor_Extract(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><style>body { color: red; }</style></head>
<body>
	<header><p>Site Header</p></header>
	<nav><p>Home | About</p></nav>
	<script>console.log("tracking");</script>
	<article>
		<p>First paragraph of the article.</p>
		<p>Second paragraph with <em>emphasis</em>.</p>
	</article>
	<footer><p>Copyright 2026</p></footer>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{})
	text := extractor.Extract(context.Background(), server.URL)

	if !strings.Contains(text, "First paragraph of the article.") {
		t.Errorf("text should contain article paragraph, got %q", text)
	}
	if !strings.Contains(text, "Second paragraph with emphasis.") {
		t.Errorf("text should contain second paragraph with inline tag stripped, got %q", text)
	}
	if strings.Contains(text, "Site Header") {
		t.Errorf("text should not contain header content, got %q", text)
	}
	if strings.Contains(text, "Home | About") {
		t.Errorf("text should not contain nav content, got %q", text)
	}
	if strings.Contains(text, "Copyright 2026") {
		t.Errorf("text should not contain footer content, got %q", text)
	}
	if strings.Contains(text, "tracking") {
		t.Errorf("text should not contain script content, got %q", text)
	}
}

// TestExtractor_Extract_SSRFRejected はSSRF検証に失敗した場合に
// リクエストを送らず空文字列を返すことを検証する。
func TestExtractor_Extract_SSRFRejected(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{validateErr: errors.New("private address")})
	text := extractor.Extract(context.Background(), server.URL)

	if text != "" {
		t.Errorf("text = %q, want empty string", text)
	}
	if called {
		t.Error("HTTP request should not be sent when SSRF validation fails")
	}
}

// TestExtractor_Extract_HTTPError は非200ステータスで空文字列を返すことを検証する。
func TestExtractor_Extract_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{})
	if text := extractor.Extract(context.Background(), server.URL); text != "" {
		t.Errorf("text = %q, want empty string", text)
	}
}

// TestExtractor_Extract_NetworkError はネットワークエラーで空文字列を返すことを検証する。
func TestExtractor_Extract_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 即座にクローズして接続エラーを発生させる

	extractor := newTestExtractor(&mockSSRFGuard{})
	if text := extractor.Extract(context.Background(), server.URL); text != "" {
		t.Errorf("text = %q, want empty string", text)
	}
}

// TestExtractor_Extract_Truncation は長大な本文が最大文字数で
// 切り詰められることを検証する。
func TestExtractor_Extract_Truncation(t *testing.T) {
	var body strings.Builder
	body.WriteString("<html><body>")
	for i := 0; i < 200; i++ {
		body.WriteString("<p>")
		body.WriteString(strings.Repeat("a", 100))
		body.WriteString("</p>")
	}
	body.WriteString("</body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body.String())
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{})
	text := extractor.Extract(context.Background(), server.URL)

	if len(text) != maxTextLength {
		t.Errorf("len(text) = %d, want %d", len(text), maxTextLength)
	}
}

// TestExtractor_Extract_TruncationMultibyte はマルチバイト本文の切り詰めが
// rune境界で行われ、文字を破壊しないことを検証する。
func TestExtractor_Extract_TruncationMultibyte(t *testing.T) {
	var body strings.Builder
	body.WriteString("<html><body>")
	// 3バイト文字のみで構成し、最大文字数を超える本文を生成する
	for i := 0; i < 110; i++ {
		body.WriteString("<p>")
		body.WriteString(strings.Repeat("あ", 100))
		body.WriteString("</p>")
	}
	body.WriteString("</body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body.String())
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{})
	text := extractor.Extract(context.Background(), server.URL)

	if !utf8.ValidString(text) {
		t.Error("truncated text is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(text); got != maxTextLength {
		t.Errorf("rune count = %d, want %d", got, maxTextLength)
	}
}

// TestTruncateRunes はrune単位の切り詰めを検証する。
func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"shorter than max is unchanged", "abc", 5, "abc"},
		{"exact length is unchanged", "abc", 3, "abc"},
		{"ascii is cut at max", "abcdef", 3, "abc"},
		{"multibyte is cut at rune boundary", "日本語テキスト", 3, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.s, tt.max); got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
		})
	}
}

// TestExtractor_Extract_NoParagraphs は<p>要素のないページで
// 空文字列を返すことを検証する。
func TestExtractor_Extract_NoParagraphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><div>no paragraphs here</div></body></html>`)
	}))
	defer server.Close()

	extractor := newTestExtractor(&mockSSRFGuard{})
	if text := extractor.Extract(context.Background(), server.URL); text != "" {
		t.Errorf("text = %q, want empty string", text)
	}
}
