// Package extract は記事ページからの本文抽出を提供する。
//
// 検索結果のURLをフェッチし、ナビゲーションやフッターなどの
// ページ装飾を取り除いた上で<p>要素のテキストを連結して返す。
// 抽出は要約の入力を作るための補助処理であり、いかなる失敗も
// エラーとして伝播せず空文字列として扱う。
package extract

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxTextLength は抽出テキストの最大文字数。
// 要約プロンプトの肥大化を防ぐため、これを超える本文は切り詰める。
const maxTextLength = 10000

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// TextPolicy は抽出テキストの平文化のインターフェース。
type TextPolicy interface {
	PlainText(raw string) string
}

// Extractor は記事URLから本文テキストを抽出する。
type Extractor struct {
	ssrfGuard   SSRFValidator
	textPolicy  TextPolicy
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewExtractor はExtractorの新しいインスタンスを生成する。
func NewExtractor(
	ssrfGuard SSRFValidator,
	textPolicy TextPolicy,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
) *Extractor {
	return &Extractor{
		ssrfGuard:   ssrfGuard,
		textPolicy:  textPolicy,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Extract は記事URLをフェッチして本文テキストを返す。
// SSRF検証・ネットワーク・パースのいずれの失敗でもエラーは返さず、
// 空文字列を返して呼び出し側の収集処理を継続させる。
func (e *Extractor) Extract(ctx context.Context, rawURL string) string {
	// SSRF検証
	if err := e.ssrfGuard.ValidateURL(rawURL); err != nil {
		e.logger.Warn("記事URLのSSRF検証に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return ""
	}

	client := e.ssrfGuard.NewSafeClient(e.timeout, e.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		e.logger.Warn("記事リクエストの作成に失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return ""
	}

	req.Header.Set("User-Agent", "NewsPulse/1.0 Digest Generator")
	req.Header.Set("Accept", "text/html, application/xhtml+xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		e.logger.Warn("記事のフェッチに失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Warn("記事フェッチが非200ステータスを返しました",
			slog.String("url", rawURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.logger.Warn("記事HTMLのパースに失敗しました",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return ""
	}

	// ページ装飾を除去してから段落テキストを収集する
	doc.Find("script, style, nav, footer, header").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := truncateRunes(e.textPolicy.PlainText(strings.Join(paragraphs, "\n\n")), maxTextLength)

	e.logger.Info("記事本文を抽出しました",
		slog.String("url", rawURL),
		slog.Int("paragraph_count", len(paragraphs)),
		slog.Int("text_length", len(text)),
	)

	return text
}

// truncateRunes は文字列をrune単位でmaxRunes文字に切り詰める。
// バイト単位の切り詰めはマルチバイト文字を破壊するため使用しない。
func truncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
