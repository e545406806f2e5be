package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newspulse/internal/repository"
)

// EntityResult はバッチ実行における1購読の結果。
type EntityResult struct {
	SubscriptionID string  `json:"subscription_id"`
	Outcome        Outcome `json:"outcome"`
	Reason         Reason  `json:"reason,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// BatchRunner は全購読を順に巡回して生成パイプラインを実行する。
// 1購読の失敗（エラー・パニックとも）はその購読の結果に閉じ込め、
// バッチ全体を中断しない。
type BatchRunner struct {
	subRepo   repository.SubscriptionRepository
	generator *Generator
	logger    *slog.Logger
}

// NewBatchRunner はBatchRunnerの新しいインスタンスを生成する。
func NewBatchRunner(subRepo repository.SubscriptionRepository, gen *Generator, logger *slog.Logger) *BatchRunner {
	return &BatchRunner{
		subRepo:   subRepo,
		generator: gen,
		logger:    logger,
	}
}

// RunAll は全購読に対して強制フラグなしで生成を実行し、購読ごとの結果を返す。
func (b *BatchRunner) RunAll(ctx context.Context) ([]EntityResult, error) {
	subs, err := b.subRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("購読一覧の取得に失敗しました: %w", err)
	}

	results := make([]EntityResult, 0, len(subs))
	for _, sub := range subs {
		results = append(results, b.runOne(ctx, sub.ID))
	}

	b.logger.Info("バッチ生成が完了しました",
		slog.Int("subscription_count", len(subs)),
	)

	return results, nil
}

// runOne は1購読の生成を実行し、パニックを含むあらゆる失敗を結果に変換する。
func (b *BatchRunner) runOne(ctx context.Context, subscriptionID string) (result EntityResult) {
	result = EntityResult{SubscriptionID: subscriptionID}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("生成パイプラインでパニックが発生しました",
				slog.String("subscription_id", subscriptionID),
				slog.Any("panic", r),
			)
			result.Outcome = OutcomeFailed
			result.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	res, err := b.generator.Generate(ctx, subscriptionID, false)
	if err != nil {
		b.logger.Error("購読の生成に失敗しました",
			slog.String("subscription_id", subscriptionID),
			slog.String("error", err.Error()),
		)
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		if res != nil {
			result.Reason = res.Reason
		}
		return result
	}

	result.Outcome = res.Outcome
	result.Reason = res.Reason
	return result
}
