package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/newspulse/internal/metrics"
	"github.com/hitoshi/newspulse/internal/middleware"
	"github.com/hitoshi/newspulse/internal/repository"
)

// HealthChecker はヘルスチェックのためのDB疎通確認インターフェース。
type HealthChecker interface {
	Ping() error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 監視
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer

	// 生成パイプライン
	GenerationService GenerationService
	BatchService      BatchService

	// リポジトリ
	UserRepo       repository.UserRepository
	SubRepo        repository.SubscriptionRepository
	NewsletterRepo repository.NewsletterRepository
	FeedbackRepo   repository.FeedbackRepository
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Recovery → Logging → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	generateHandler := NewGenerateHandler(deps.GenerationService, deps.BatchService)
	onboardHandler := NewOnboardHandler(deps.UserRepo, deps.SubRepo)
	newsletterHandler := NewNewsletterHandler(deps.NewsletterRepo)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackRepo, deps.NewsletterRepo)

	// --- 監視ルート（レート制限の外） ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.Ping(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// オンボーディング
		r.Post("/api/onboard", onboardHandler.Onboard)

		// ニュースレター
		r.Route("/api/newsletters", func(r chi.Router) {
			r.Get("/", newsletterHandler.List)

			// 生成トリガー（生成専用レート制限を追加）
			r.With(deps.RateLimiter.GenerateMiddleware()).Post("/generate", generateHandler.GenerateOne)
			r.With(deps.RateLimiter.GenerateMiddleware()).Get("/generate", generateHandler.GenerateAll)

			r.Get("/{id}", newsletterHandler.Get)
		})

		// フィードバック
		r.Post("/api/feedback", feedbackHandler.Create)
	})

	return r
}
