package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/newspulse/internal/config"
	"github.com/hitoshi/newspulse/internal/database"
	"github.com/hitoshi/newspulse/internal/extract"
	"github.com/hitoshi/newspulse/internal/generator"
	"github.com/hitoshi/newspulse/internal/handler"
	"github.com/hitoshi/newspulse/internal/logger"
	"github.com/hitoshi/newspulse/internal/mail"
	"github.com/hitoshi/newspulse/internal/metrics"
	"github.com/hitoshi/newspulse/internal/middleware"
	"github.com/hitoshi/newspulse/internal/repository"
	"github.com/hitoshi/newspulse/internal/search"
	"github.com/hitoshi/newspulse/internal/security"
	"github.com/hitoshi/newspulse/internal/summarizer"
	"github.com/hitoshi/newspulse/internal/worker/digest"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("search_provider", cfg.SearchProvider),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// pipeline は生成パイプラインの構成済み依存一式。
// serveモードとworkerモードの双方で同一のワイヤリングを使用する。
type pipeline struct {
	userRepo       repository.UserRepository
	subRepo        repository.SubscriptionRepository
	newsletterRepo repository.NewsletterRepository
	feedbackRepo   repository.FeedbackRepository
	generator      *generator.Generator
	batch          *generator.BatchRunner
	registry       *prometheus.Registry
}

// newSearchProvider は設定に応じた検索プロバイダを返す。
func newSearchProvider(cfg *config.Config) search.Provider {
	httpClient := &http.Client{Timeout: cfg.FetchTimeout}
	if cfg.SearchProvider == "rss" {
		return search.NewRSSProvider(httpClient, slog.Default(), cfg.SearchMaxResults)
	}
	return search.NewGoogleClient(
		httpClient, slog.Default(),
		cfg.GoogleAPIKey, cfg.GoogleSearchCX, cfg.SearchMaxResults,
	)
}

// buildPipeline はリポジトリから生成パイプラインまでの全依存をワイヤリングする。
func buildPipeline(cfg *config.Config, db *sql.DB) *pipeline {
	// 1. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	subRepo := repository.NewPostgresSubscriptionRepo(db)
	newsletterRepo := repository.NewPostgresNewsletterRepo(db)
	feedbackRepo := repository.NewPostgresFeedbackRepo(db)

	// 2. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	textPolicy := security.NewTextPolicy()

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. 収集・要約・配信コンポーネントの初期化
	searchProvider := newSearchProvider(cfg)
	extractor := extract.NewExtractor(
		ssrfGuard, textPolicy, slog.Default(),
		cfg.FetchTimeout, cfg.FetchMaxSize,
	)
	articleCollector := generator.NewCollector(
		searchProvider, extractor, collector, slog.Default(),
		cfg.SearchProvider, cfg.MinContentLength,
	)
	composer := generator.NewComposer(
		summarizer.NewOpenAISummarizer(cfg.OpenAIAPIKey),
		collector, slog.Default(), cfg.TopArticles,
	)
	mailer := mail.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
		cfg.MailFrom, slog.Default(),
	)

	// 5. オーケストレーターの初期化
	gen := generator.NewGenerator(
		subRepo, newsletterRepo, articleCollector, composer,
		mailer, collector, slog.Default(), cfg.SearchLookback,
	)
	batch := generator.NewBatchRunner(subRepo, gen, slog.Default())

	return &pipeline{
		userRepo:       userRepo,
		subRepo:        subRepo,
		newsletterRepo: newsletterRepo,
		feedbackRepo:   feedbackRepo,
		generator:      gen,
		batch:          batch,
		registry:       registry,
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 生成パイプラインのワイヤリング
	p := buildPipeline(cfg, db)

	// 3. レート制限の構成（configはreq/min単位、rate.Limitはreq/sec単位）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.GenerateRate = rate.Limit(float64(cfg.RateLimitGenerate) / 60.0)
	rateLimiterCfg.GenerateBurst = cfg.RateLimitGenerate

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 4. ルーターの構築
	deps := &handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		HealthChecker: db,
		Gatherer:      p.registry,

		GenerationService: p.generator,
		BatchService:      p.batch,

		UserRepo:       p.userRepo,
		SubRepo:        p.subRepo,
		NewsletterRepo: p.newsletterRepo,
		FeedbackRepo:   p.feedbackRepo,
	}

	router := handler.NewRouter(deps)

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、cronスケジュールに従うダイジェストスケジューラを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. 生成パイプラインのワイヤリング
	p := buildPipeline(cfg, db)

	// 3. ダイジェストスケジューラの起動
	scheduler := digest.NewScheduler(p.batch, slog.Default(), cfg.DigestCron)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start digest scheduler: %w", err)
	}

	slog.Info("worker starting",
		slog.String("digest_cron", cfg.DigestCron),
	)

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	slog.Info("shutting down worker...")
	cancel()
	scheduler.Stop()

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
