// Package digest はニュースレター生成のバックグラウンド実行を提供する。
// cron式に従って全購読を対象とするバッチ生成を起動する。
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hitoshi/newspulse/internal/generator"
)

// デフォルトのcron式（毎時0分）とバッチ実行タイムアウト。
const (
	DefaultCronSpec   = "0 * * * *"
	defaultRunTimeout = 30 * time.Minute
)

// DigestRunner は全購読のバッチ生成を実行するインターフェース。
type DigestRunner interface {
	RunAll(ctx context.Context) ([]generator.EntityResult, error)
}

// Scheduler はcronスケジュールに従ってバッチ生成を起動する。
// 各実行にはタイムアウトを設定し、実行結果の集計をログに出力する。
type Scheduler struct {
	runner     DigestRunner
	logger     *slog.Logger
	cron       *cron.Cron
	spec       string
	runTimeout time.Duration
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// specが空の場合はDefaultCronSpec（毎時0分）を使用する。
// スケジュールの評価はUTCで行う。
func NewScheduler(runner DigestRunner, logger *slog.Logger, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultCronSpec
	}
	return &Scheduler{
		runner:     runner,
		logger:     logger,
		cron:       cron.New(cron.WithLocation(time.UTC)),
		spec:       spec,
		runTimeout: defaultRunTimeout,
	}
}

// Start はスケジューラを起動する。cron式が不正な場合はエラーを返す。
// コンテキストは各バッチ実行の親コンテキストとして使用される。
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunOnce(ctx); err != nil {
			s.logger.Error("バッチ生成サイクルの実行に失敗しました",
				slog.String("error", err.Error()),
			)
		}
	}); err != nil {
		return fmt.Errorf("cron式の登録に失敗しました: %w", err)
	}

	s.cron.Start()

	s.logger.Info("ダイジェストスケジューラを開始しました",
		slog.String("cron_spec", s.spec),
	)
	return nil
}

// Stop はスケジューラを停止し、実行中のジョブの完了を待つ。
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("ダイジェストスケジューラを停止しました")
}

// RunOnce は全購読のバッチ生成を1回実行し、結果の集計をログに出力する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	start := time.Now()
	s.logger.Info("バッチ生成サイクルを開始します")

	results, err := s.runner.RunAll(runCtx)
	if err != nil {
		return fmt.Errorf("バッチ生成の実行に失敗しました: %w", err)
	}

	var sent, skipped, failed int
	for _, r := range results {
		switch r.Outcome {
		case generator.OutcomeSent:
			sent++
		case generator.OutcomeSkipped:
			skipped++
		case generator.OutcomeFailed:
			failed++
			s.logger.Warn("購読の生成に失敗しました",
				slog.String("subscription_id", r.SubscriptionID),
				slog.String("error", r.Error),
			)
		}
	}

	s.logger.Info("バッチ生成サイクルが完了しました",
		slog.Int("total", len(results)),
		slog.Int("sent", sent),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}
