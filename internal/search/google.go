package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
)

const (
	// defaultGoogleEndpoint はGoogle Custom Search JSON APIのエンドポイント。
	defaultGoogleEndpoint = "https://www.googleapis.com/customsearch/v1"
	// maxResultsPerRequest はAPIが1ページで返す最大件数。
	maxResultsPerRequest = 10
)

// GoogleClient はGoogle Custom Search APIのクライアント。
// トピック名と起点日時からニュース記事候補を検索する。
type GoogleClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	cx         string
	maxResults int
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewGoogleClient はGoogleClientの新しいインスタンスを生成する。
// maxResultsが0以下またはAPI上限を超える場合は上限値に丸める。
func NewGoogleClient(httpClient *http.Client, logger *slog.Logger, apiKey, cx string, maxResults int) *GoogleClient {
	if maxResults <= 0 || maxResults > maxResultsPerRequest {
		maxResults = maxResultsPerRequest
	}
	return &GoogleClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		cx:         cx,
		maxResults: maxResults,
		endpoint:   defaultGoogleEndpoint,
	}
}

// googleResponse はCustom Search APIのレスポンス。
// 必要なフィールドのみを明示的な構造体として検証する。
type googleResponse struct {
	Items []googleItem `json:"items"`
	Error *googleError `json:"error"`
}

// googleItem は検索結果1件を表す。
type googleItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// googleError はAPIが返すエラーペイロードを表す。
type googleError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Search はトピックのニュース記事を検索する。
// クエリは「<topic> news after:YYYY-MM-DD」の形式で構築する。
// 認証情報が未設定の場合は空結果とエラーを返す（panicしない）。
// APIのエラーペイロード・不正なレスポンスは上流障害としてエラーで返す。
func (c *GoogleClient) Search(ctx context.Context, topic string, notBefore time.Time) ([]model.SearchResult, error) {
	if c.apiKey == "" || c.cx == "" {
		return nil, fmt.Errorf("google search credentials are not configured (GOOGLE_API_KEY or GOOGLE_SEARCH_CX)")
	}

	query := fmt.Sprintf("%s news after:%s", topic, notBefore.UTC().Format("2006-01-02"))

	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("key", c.apiKey)
	q.Set("cx", c.cx)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(c.maxResults))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Google検索APIの呼び出しに失敗しました",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("google search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var decoded googleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		c.logger.Error("Google検索APIのレスポンスのパースに失敗しました",
			slog.String("topic", topic),
			slog.Int("http_status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("google search response parse failed: %w", err)
	}

	// APIはエラー時もJSONペイロードを返すため、HTTPステータスより先にerrorフィールドを見る
	if decoded.Error != nil {
		c.logger.Error("Google検索APIがエラーを返しました",
			slog.String("topic", topic),
			slog.Int("api_code", decoded.Error.Code),
			slog.String("api_message", decoded.Error.Message),
		)
		return nil, fmt.Errorf("google search API error: %s (code %d)", decoded.Error.Message, decoded.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search returned status %d", resp.StatusCode)
	}

	results := make([]model.SearchResult, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		if item.Link == "" {
			continue
		}
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	c.logger.Info("Google検索が完了しました",
		slog.String("topic", topic),
		slog.Int("result_count", len(results)),
	)

	return results, nil
}

// compile-time interface check
var _ Provider = (*GoogleClient)(nil)
