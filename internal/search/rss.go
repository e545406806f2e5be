package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/newspulse/internal/model"
)

// defaultRSSEndpoint はGoogle NewsのRSS検索エンドポイント。
const defaultRSSEndpoint = "https://news.google.com/rss/search"

// RSSProvider はGoogle News RSSを使用する検索プロバイダ。
// APIキー不要の代替実装で、SEARCH_PROVIDER=rssで選択される。
type RSSProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxResults int
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewRSSProvider はRSSProviderの新しいインスタンスを生成する。
func NewRSSProvider(httpClient *http.Client, logger *slog.Logger, maxResults int) *RSSProvider {
	if maxResults <= 0 {
		maxResults = maxResultsPerRequest
	}
	return &RSSProvider{
		httpClient: httpClient,
		logger:     logger,
		maxResults: maxResults,
		endpoint:   defaultRSSEndpoint,
	}
}

// Search はトピックのニュース記事をRSSフィードから検索する。
// フィードの公開日時がnotBefore以前の記事は除外する。
// 公開日時を持たない記事はウィンドウ判定ができないため除外する。
func (p *RSSProvider) Search(ctx context.Context, topic string, notBefore time.Time) ([]model.SearchResult, error) {
	reqURL, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("q", topic)
	q.Set("hl", "en-US")
	q.Set("gl", "US")
	q.Set("ceid", "US:en")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "NewsPulse/1.0 Digest Generator")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("ニュースRSSの取得に失敗しました",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("rss search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("rss feed parse failed: %w", err)
	}

	var results []model.SearchResult
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		if item.PublishedParsed == nil || !item.PublishedParsed.After(notBefore) {
			continue
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Description,
		})
		if len(results) >= p.maxResults {
			break
		}
	}

	p.logger.Info("RSS検索が完了しました",
		slog.String("topic", topic),
		slog.Int("feed_items", len(feed.Items)),
		slog.Int("result_count", len(results)),
	)

	return results, nil
}

// compile-time interface check
var _ Provider = (*RSSProvider)(nil)
