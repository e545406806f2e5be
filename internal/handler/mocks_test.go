package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/hitoshi/newspulse/internal/generator"
	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// mockGenerationService は生成サービスのモック。
type mockGenerationService struct {
	generateFunc func(ctx context.Context, subscriptionID string, force bool) (*generator.Result, error)
}

func (m *mockGenerationService) Generate(ctx context.Context, subscriptionID string, force bool) (*generator.Result, error) {
	return m.generateFunc(ctx, subscriptionID, force)
}

// mockBatchService はバッチサービスのモック。
type mockBatchService struct {
	runAllFunc func(ctx context.Context) ([]generator.EntityResult, error)
}

func (m *mockBatchService) RunAll(ctx context.Context) ([]generator.EntityResult, error) {
	return m.runAllFunc(ctx)
}

// mockUserRepo はユーザーリポジトリのモック。
type mockUserRepo struct {
	upsertFunc func(ctx context.Context, user *model.User) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	if m.upsertFunc == nil {
		return user, nil
	}
	return m.upsertFunc(ctx, user)
}

// mockSubRepo は購読リポジトリのモック。
type mockSubRepo struct {
	createFunc        func(ctx context.Context, sub *model.Subscription) error
	updateFunc        func(ctx context.Context, sub *model.Subscription) error
	listByUserIDFunc  func(ctx context.Context, userID string) ([]*model.Subscription, error)
	replaceTopicsFunc func(ctx context.Context, subscriptionID string, topics []model.Topic) error
}

func (m *mockSubRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	return nil, nil
}

func (m *mockSubRepo) FindByIDWithRelations(ctx context.Context, id string) (*model.SubscriptionWithRelations, error) {
	return nil, nil
}

func (m *mockSubRepo) ListAll(ctx context.Context) ([]*model.Subscription, error) {
	return nil, nil
}

func (m *mockSubRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Subscription, error) {
	if m.listByUserIDFunc == nil {
		return nil, nil
	}
	return m.listByUserIDFunc(ctx, userID)
}

func (m *mockSubRepo) Create(ctx context.Context, sub *model.Subscription) error {
	if m.createFunc == nil {
		return nil
	}
	return m.createFunc(ctx, sub)
}

func (m *mockSubRepo) Update(ctx context.Context, sub *model.Subscription) error {
	if m.updateFunc == nil {
		return nil
	}
	return m.updateFunc(ctx, sub)
}

func (m *mockSubRepo) ReplaceTopics(ctx context.Context, subscriptionID string, topics []model.Topic) error {
	if m.replaceTopicsFunc == nil {
		return nil
	}
	return m.replaceTopicsFunc(ctx, subscriptionID, topics)
}

// mockNewsletterRepo はニュースレターリポジトリのモック。
type mockNewsletterRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Newsletter, error)
	listAllFunc  func(ctx context.Context) ([]repository.NewsletterWithSubscriber, error)
}

func (m *mockNewsletterRepo) FindByID(ctx context.Context, id string) (*model.Newsletter, error) {
	if m.findByIDFunc == nil {
		return nil, nil
	}
	return m.findByIDFunc(ctx, id)
}

func (m *mockNewsletterRepo) FindLatestBySubscription(ctx context.Context, subscriptionID string) (*model.Newsletter, error) {
	return nil, nil
}

func (m *mockNewsletterRepo) CreateIfNoneSince(ctx context.Context, n *model.Newsletter, since time.Time) (bool, error) {
	return true, nil
}

func (m *mockNewsletterRepo) ListAll(ctx context.Context) ([]repository.NewsletterWithSubscriber, error) {
	if m.listAllFunc == nil {
		return nil, nil
	}
	return m.listAllFunc(ctx)
}

// mockFeedbackRepo はフィードバックリポジトリのモック。
type mockFeedbackRepo struct {
	createFunc func(ctx context.Context, fb *model.Feedback) error
}

func (m *mockFeedbackRepo) Create(ctx context.Context, fb *model.Feedback) error {
	if m.createFunc == nil {
		return nil
	}
	return m.createFunc(ctx, fb)
}

// compile-time interface checks
var (
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.SubscriptionRepository = (*mockSubRepo)(nil)
	_ repository.NewsletterRepository   = (*mockNewsletterRepo)(nil)
	_ repository.FeedbackRepository     = (*mockFeedbackRepo)(nil)
	_ GenerationService                 = (*mockGenerationService)(nil)
	_ BatchService                      = (*mockBatchService)(nil)
)
