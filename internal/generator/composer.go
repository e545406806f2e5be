package generator

import (
	"context"
	"log/slog"

	"github.com/hitoshi/newspulse/internal/metrics"
	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/summarizer"
)

// FallbackContent は要約生成失敗時に使用する固定の本文。
const FallbackContent = "Failed to generate newsletter."

// Composer は収集済み記事の先頭部分を要約プロバイダに渡し、
// ニュースレター本文を生成する。
// プロバイダ失敗時は固定のフォールバック本文を返し、エラーを伝播しない。
type Composer struct {
	summarizer  summarizer.Summarizer
	metrics     metrics.MetricsCollector
	logger      *slog.Logger
	topArticles int
}

// NewComposer はComposerの新しいインスタンスを生成する。
// topArticlesは要約に渡す記事数の上限。
func NewComposer(s summarizer.Summarizer, collector metrics.MetricsCollector, logger *slog.Logger, topArticles int) *Composer {
	return &Composer{
		summarizer:  s,
		metrics:     collector,
		logger:      logger,
		topArticles: topArticles,
	}
}

// Compose は記事一覧の先頭topArticles件からニュースレター本文を生成する。
func (c *Composer) Compose(ctx context.Context, articles []model.Article) (string, []TraceEvent) {
	trace := newTraceLog(nil)

	selected := articles
	if len(selected) > c.topArticles {
		selected = selected[:c.topArticles]
	}

	trace.info("summarize", "summarizing %d of %d articles", len(selected), len(articles))

	content, err := c.summarizer.Summarize(ctx, selected)
	if err != nil {
		c.metrics.RecordSummarizeFailure()
		c.logger.Warn("要約生成に失敗したためフォールバック本文を使用します",
			slog.String("error", err.Error()),
		)
		trace.warn("summarize", "summarization failed, using fallback: %s", err.Error())
		return FallbackContent, trace.events
	}

	trace.info("summarize", "summarization done (%d bytes)", len(content))

	return content, trace.events
}
