package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/newspulse/internal/mail"
	"github.com/hitoshi/newspulse/internal/metrics"
	"github.com/hitoshi/newspulse/internal/model"
	"github.com/hitoshi/newspulse/internal/repository"
)

// Outcome は生成パイプライン1回の実行結果。
type Outcome string

const (
	// OutcomeSent はニュースレターが永続化されたことを示す。
	// 配信自体はベストエフォートであり、配信失敗でもSentのまま変わらない。
	OutcomeSent Outcome = "Sent"
	// OutcomeSkipped は配信期日外・記事なし・競合先行によるスキップを示す。
	OutcomeSkipped Outcome = "Skipped"
	// OutcomeFailed は購読未発見または永続化失敗による終端エラーを示す。
	OutcomeFailed Outcome = "Failed"
)

// Result は生成パイプライン1回の構造化された実行結果。
type Result struct {
	Outcome      Outcome      `json:"outcome"`
	Reason       Reason       `json:"reason,omitempty"`
	NewsletterID string       `json:"newsletter_id,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// Generator はニュースレター生成パイプラインのオーケストレーター。
// 購読のロード・配信判定・記事収集・本文生成・永続化・配信を1回の実行として束ねる。
type Generator struct {
	subRepo        repository.SubscriptionRepository
	newsletterRepo repository.NewsletterRepository
	collector      *Collector
	composer       *Composer
	mailer         mail.Mailer
	metrics        metrics.MetricsCollector
	logger         *slog.Logger
	locks          *keyedLock
	searchLookback time.Duration
	now            func() time.Time
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
func NewGenerator(
	subRepo repository.SubscriptionRepository,
	newsletterRepo repository.NewsletterRepository,
	collector *Collector,
	composer *Composer,
	mailer mail.Mailer,
	metricsCollector metrics.MetricsCollector,
	logger *slog.Logger,
	searchLookback time.Duration,
) *Generator {
	return &Generator{
		subRepo:        subRepo,
		newsletterRepo: newsletterRepo,
		collector:      collector,
		composer:       composer,
		mailer:         mailer,
		metrics:        metricsCollector,
		logger:         logger,
		locks:          newKeyedLock(),
		searchLookback: searchLookback,
		now:            time.Now,
	}
}

// Generate は1つの購読に対して生成パイプラインを実行する。
// すべての結果でトレースを返す。副作用（永続化・配信）はSentの場合のみ発生する。
func (g *Generator) Generate(ctx context.Context, subscriptionID string, force bool) (*Result, error) {
	unlock := g.locks.Lock(subscriptionID)
	defer unlock()

	trace := newTraceLog(g.now)
	now := g.now()

	// 購読のロード
	sub, err := g.subRepo.FindByIDWithRelations(ctx, subscriptionID)
	if err != nil {
		trace.error("load", "subscription load failed: %s", err.Error())
		g.metrics.RecordGenerationOutcome(string(OutcomeFailed))
		return &Result{Outcome: OutcomeFailed, Trace: trace.events},
			fmt.Errorf("購読の取得に失敗しました: %w", err)
	}
	if sub == nil {
		trace.error("load", "subscription %s not found", subscriptionID)
		g.metrics.RecordGenerationOutcome(string(OutcomeFailed))
		return &Result{Outcome: OutcomeFailed, Trace: trace.events}, model.ErrSubscriptionNotFound
	}

	trace.info("load", "loaded subscription %s (%s, %d topics)",
		sub.ID, sub.DeliveryFreq, len(sub.Topics))

	// 最新ニュースレターから前回配信時刻と検索ウィンドウ開始を導出
	latest, err := g.newsletterRepo.FindLatestBySubscription(ctx, subscriptionID)
	if err != nil {
		trace.error("load", "latest newsletter lookup failed: %s", err.Error())
		g.metrics.RecordGenerationOutcome(string(OutcomeFailed))
		return &Result{Outcome: OutcomeFailed, Trace: trace.events},
			fmt.Errorf("最新ニュースレターの取得に失敗しました: %w", err)
	}

	var lastSentAt *time.Time
	notBefore := now.Add(-g.searchLookback)
	if latest != nil {
		lastSentAt = &latest.SentAt
		notBefore = latest.SentAt
	}

	// 配信判定
	due, reason := IsDue(lastSentAt, now, sub.DeliveryFreq, sub.DeliveryDay, force)
	trace.info("duecheck", "due=%v reason=%s", due, reason)
	if !due {
		g.metrics.RecordGenerationOutcome(string(OutcomeSkipped))
		return &Result{Outcome: OutcomeSkipped, Reason: reason, Trace: trace.events}, nil
	}

	// 記事収集
	articles, collectTrace := g.collector.Collect(ctx, sub.Topics, notBefore)
	trace.events = append(trace.events, collectTrace...)
	if len(articles) == 0 {
		trace.info("collect", "no usable articles, skipping")
		g.metrics.RecordGenerationOutcome(string(OutcomeSkipped))
		return &Result{Outcome: OutcomeSkipped, Reason: ReasonNoContent, Trace: trace.events}, nil
	}

	// 本文生成
	content, composeTrace := g.composer.Compose(ctx, articles)
	trace.events = append(trace.events, composeTrace...)

	// 永続化: 条件付きINSERTで同一適格期間内の二重生成を防ぐ。
	// 強制実行はガードを経過ウィンドウごと無効化する（since=now）。
	since := eligibilityFloor(now, sub.DeliveryFreq)
	if force {
		since = now
	}

	newsletter := &model.Newsletter{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		Content:        content,
		SentAt:         now,
	}

	inserted, err := g.newsletterRepo.CreateIfNoneSince(ctx, newsletter, since)
	if err != nil {
		trace.error("persist", "newsletter insert failed: %s", err.Error())
		g.metrics.RecordGenerationOutcome(string(OutcomeFailed))
		return &Result{Outcome: OutcomeFailed, Trace: trace.events},
			fmt.Errorf("%w: %v", model.ErrPersistenceFailed, err)
	}
	if !inserted {
		trace.info("persist", "newer newsletter already exists, skipping")
		g.metrics.RecordGenerationOutcome(string(OutcomeSkipped))
		return &Result{Outcome: OutcomeSkipped, Reason: ReasonAlreadyGenerated, Trace: trace.events}, nil
	}

	trace.info("persist", "persisted newsletter %s", newsletter.ID)

	// 配信はベストエフォート: 失敗してもSentのまま
	subject := fmt.Sprintf("Your NewsPulse Digest (%s)", sub.DeliveryFreq)
	delivered, err := g.mailer.Send(ctx, sub.User.Email, subject, content)
	g.metrics.RecordDelivery(delivered)
	if err != nil {
		g.logger.Warn("ニュースレターの配信に失敗しました",
			slog.String("newsletter_id", newsletter.ID),
			slog.String("to", sub.User.Email),
			slog.String("error", err.Error()),
		)
		trace.warn("deliver", "delivery to %s failed: %s", sub.User.Email, err.Error())
	} else if delivered {
		trace.info("deliver", "delivered to %s", sub.User.Email)
	} else {
		trace.info("deliver", "delivery logged only (mailer not configured)")
	}

	g.metrics.RecordGenerationOutcome(string(OutcomeSent))
	g.logger.Info("ニュースレターを生成しました",
		slog.String("subscription_id", sub.ID),
		slog.String("newsletter_id", newsletter.ID),
		slog.Int("article_count", len(articles)),
		slog.Bool("delivered", delivered),
	)

	return &Result{
		Outcome:      OutcomeSent,
		Reason:       reason,
		NewsletterID: newsletter.ID,
		Trace:        trace.events,
	}, nil
}
