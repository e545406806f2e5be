package generator

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// noopMetrics はテスト用のメトリクスモック。
type noopMetrics struct{}

func (noopMetrics) RecordGenerationOutcome(outcome string)          {}
func (noopMetrics) RecordSearch(provider string)                    {}
func (noopMetrics) RecordSearchError(provider string)               {}
func (noopMetrics) RecordArticleFetchLatency(duration time.Duration) {}
func (noopMetrics) RecordSummarizeFailure()                         {}
func (noopMetrics) RecordDelivery(delivered bool)                   {}

// mockSearchProvider は検索プロバイダのモック。
type mockSearchProvider struct {
	searchFunc func(ctx context.Context, topic string, notBefore time.Time) ([]model.SearchResult, error)
}

func (m *mockSearchProvider) Search(ctx context.Context, topic string, notBefore time.Time) ([]model.SearchResult, error) {
	return m.searchFunc(ctx, topic, notBefore)
}

// mockExtractor は記事抽出のモック。
type mockExtractor struct {
	extractFunc func(ctx context.Context, url string) string
}

func (m *mockExtractor) Extract(ctx context.Context, url string) string {
	return m.extractFunc(ctx, url)
}

// mockSummarizer は要約プロバイダのモック。
type mockSummarizer struct {
	summarizeFunc func(ctx context.Context, articles []model.Article) (string, error)
}

func (m *mockSummarizer) Summarize(ctx context.Context, articles []model.Article) (string, error) {
	return m.summarizeFunc(ctx, articles)
}

// mockMailer は配信チャネルのモック。
type mockMailer struct {
	sendFunc func(ctx context.Context, to, subject, htmlBody string) (bool, error)
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) (bool, error) {
	if m.sendFunc == nil {
		return true, nil
	}
	return m.sendFunc(ctx, to, subject, htmlBody)
}

// mockSubscriptionRepo は購読リポジトリのモック。
type mockSubscriptionRepo struct {
	findByIDWithRelationsFunc func(ctx context.Context, id string) (*model.SubscriptionWithRelations, error)
	listAllFunc               func(ctx context.Context) ([]*model.Subscription, error)
}

func (m *mockSubscriptionRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepo) FindByIDWithRelations(ctx context.Context, id string) (*model.SubscriptionWithRelations, error) {
	return m.findByIDWithRelationsFunc(ctx, id)
}

func (m *mockSubscriptionRepo) ListAll(ctx context.Context) ([]*model.Subscription, error) {
	return m.listAllFunc(ctx)
}

func (m *mockSubscriptionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Subscription, error) {
	return nil, nil
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *model.Subscription) error {
	return nil
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, sub *model.Subscription) error {
	return nil
}

func (m *mockSubscriptionRepo) ReplaceTopics(ctx context.Context, subscriptionID string, topics []model.Topic) error {
	return nil
}

// mockNewsletterRepo はニュースレターリポジトリのモック。
type mockNewsletterRepo struct {
	findLatestFunc        func(ctx context.Context, subscriptionID string) (*model.Newsletter, error)
	createIfNoneSinceFunc func(ctx context.Context, n *model.Newsletter, since time.Time) (bool, error)
}

func (m *mockNewsletterRepo) FindByID(ctx context.Context, id string) (*model.Newsletter, error) {
	return nil, nil
}

func (m *mockNewsletterRepo) FindLatestBySubscription(ctx context.Context, subscriptionID string) (*model.Newsletter, error) {
	if m.findLatestFunc == nil {
		return nil, nil
	}
	return m.findLatestFunc(ctx, subscriptionID)
}

func (m *mockNewsletterRepo) CreateIfNoneSince(ctx context.Context, n *model.Newsletter, since time.Time) (bool, error) {
	if m.createIfNoneSinceFunc == nil {
		return true, nil
	}
	return m.createIfNoneSinceFunc(ctx, n, since)
}

func (m *mockNewsletterRepo) ListAll(ctx context.Context) ([]repository.NewsletterWithSubscriber, error) {
	return nil, nil
}

// compile-time interface checks
var (
	_ repository.SubscriptionRepository = (*mockSubscriptionRepo)(nil)
	_ repository.NewsletterRepository   = (*mockNewsletterRepo)(nil)
)
