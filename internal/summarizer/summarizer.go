// Package summarizer は収集した記事からニュースレター本文を生成する。
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/hitoshi/newspulse/internal/model"
)

const maxOutputTokens int64 = 4096

const systemPrompt = `You are a professional newsletter editor. Summarize the following news articles into a cohesive newsletter.

Requirements:
1. Use MLA format for citations. When you state a fact or number, cite the source using the article number (e.g., [1]).
2. At the end, list the Works Cited.
3. The tone should be professional yet engaging.
4. Focus on the most important information.
5. Summarize each article in less than 100 words.`

// Summarizer はニュースレター本文生成のインターフェースを定義する。
type Summarizer interface {
	// Summarize は記事一覧から引用付きのニュースレター本文を生成する。
	// 記事が空の場合とAPI呼び出し失敗時はエラーを返す。
	Summarize(ctx context.Context, articles []model.Article) (string, error)
}

// OpenAISummarizer はOpenAI Responses APIを使用するSummarizerの実装。
type OpenAISummarizer struct {
	client openai.Client
}

// NewOpenAISummarizer はOpenAISummarizerの新しいインスタンスを生成する。
func NewOpenAISummarizer(apiKey string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// Summarize は記事一覧から引用付きのニュースレター本文を生成する。
// リトライは行わず、1回の呼び出しで完結する。
func (s *OpenAISummarizer) Summarize(ctx context.Context, articles []model.Article) (string, error) {
	if len(articles) == 0 {
		return "", errors.New("記事が空のため要約できません")
	}

	resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
		Model:           openai.ChatModelGPT5Mini2025_08_07,
		MaxOutputTokens: openai.Int(maxOutputTokens),
		Instructions:    openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(BuildArticlesPrompt(articles)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("要約リクエストに失敗しました: %w", err)
	}

	content := strings.TrimSpace(resp.OutputText())
	if content == "" {
		return "", fmt.Errorf("要約の出力が空です (status = %s)", resp.Status)
	}

	return content, nil
}

// BuildArticlesPrompt は記事一覧を番号付きのプロンプト本文に変換する。
// 番号は本文中の引用([n])およびWorks Citedと対応する。
func BuildArticlesPrompt(articles []model.Article) string {
	var b strings.Builder
	b.WriteString("Articles:\n")
	for i, article := range articles {
		fmt.Fprintf(&b, "\n[%d] Title: %s\nLink: %s\nContent: %s\n",
			i+1, article.Title, article.Link, article.Text)
	}
	return b.String()
}

// compile-time interface check
var _ Summarizer = (*OpenAISummarizer)(nil)
