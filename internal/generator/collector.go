package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/newspulse/internal/metrics"
	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/search"
)

// ArticleExtractor は記事URLからの本文抽出のインターフェース。
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) string
}

// Collector は購読のトピック一覧から利用可能な記事を収集する。
// トピック単位の検索失敗や記事単位の抽出失敗は吸収し、収集を継続する。
type Collector struct {
	search           search.Provider
	extractor        ArticleExtractor
	metrics          metrics.MetricsCollector
	logger           *slog.Logger
	providerName     string
	minContentLength int
}

// NewCollector はCollectorの新しいインスタンスを生成する。
func NewCollector(
	searchProvider search.Provider,
	extractor ArticleExtractor,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
	providerName string,
	minContentLength int,
) *Collector {
	return &Collector{
		search:           searchProvider,
		extractor:        extractor,
		metrics:          collector,
		logger:           logger,
		providerName:     providerName,
		minContentLength: minContentLength,
	}
}

// Collect はトピックを購読順に巡回し、本文抽出に成功した記事を返す。
// 記事は発見順のフラットなリストで、上限もリンク重複除去も行わない。
// 上限の適用は下流のComposerの責務とする。
func (c *Collector) Collect(ctx context.Context, topics []model.Topic, notBefore time.Time) ([]model.Article, []TraceEvent) {
	trace := newTraceLog(nil)
	var articles []model.Article

	for _, topic := range topics {
		trace.info("search", "searching topic %q (not before %s)", topic.Name, notBefore.Format("2006-01-02"))

		c.metrics.RecordSearch(c.providerName)
		results, err := c.search.Search(ctx, topic.Name, notBefore)
		if err != nil {
			c.metrics.RecordSearchError(c.providerName)
			c.logger.Warn("トピック検索に失敗しました",
				slog.String("topic", topic.Name),
				slog.String("error", err.Error()),
			)
			trace.warn("search", "topic %q search failed: %s", topic.Name, err.Error())
			continue
		}

		trace.info("search", "topic %q returned %d results", topic.Name, len(results))

		for _, result := range results {
			start := time.Now()
			text := c.extractor.Extract(ctx, result.Link)
			c.metrics.RecordArticleFetchLatency(time.Since(start))

			if len(text) <= c.minContentLength {
				trace.info("fetch", "dropped %s (%d bytes, need > %d)", result.Link, len(text), c.minContentLength)
				continue
			}

			trace.info("fetch", "kept %s (%d bytes)", result.Link, len(text))
			articles = append(articles, model.Article{
				Title: result.Title,
				Link:  result.Link,
				Text:  text,
			})
		}
	}

	trace.info("collect", "collected %d articles from %d topics", len(articles), len(topics))

	return articles, trace.events
}
