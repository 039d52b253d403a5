// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
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

	"github.com/hitoshi/classpulse/internal/ai"
	"github.com/hitoshi/classpulse/internal/auth"
	"github.com/hitoshi/classpulse/internal/config"
	"github.com/hitoshi/classpulse/internal/course"
	"github.com/hitoshi/classpulse/internal/feedback"
	"github.com/hitoshi/classpulse/internal/handler"
	"github.com/hitoshi/classpulse/internal/logger"
	"github.com/hitoshi/classpulse/internal/metrics"
	"github.com/hitoshi/classpulse/internal/middleware"
	"github.com/hitoshi/classpulse/internal/repository"
	"github.com/hitoshi/classpulse/internal/security"
	"github.com/hitoshi/classpulse/internal/user"
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
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. リポジトリの初期化（インメモリ）
	userRepo := repository.NewMemoryUserRepo()
	courseRepo := repository.NewMemoryCourseRepo()
	feedbackRepo := repository.NewMemoryFeedbackRepo()
	sessionRepo := repository.NewMemorySessionRepo()

	// 2. 初期データの投入
	if cfg.SeedDemoData {
		if err := repository.SeedDemoData(ctx, userRepo, courseRepo, feedbackRepo); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		slog.Info("demo data seeded")
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := repository.EnsureAdmin(ctx, userRepo, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to ensure admin account: %w", err)
		}
	}

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. セキュリティサービスの初期化
	urlValidator := security.NewURLValidator()
	sanitizer := security.NewMessageSanitizer()

	// 5. ドメインサービスの初期化
	authService := auth.NewService(
		userRepo, sessionRepo, collector,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge},
	)
	userService := user.NewService(userRepo, sessionRepo, feedbackRepo)
	courseService := course.NewService(courseRepo, urlValidator)
	feedbackService := feedback.NewService(feedbackRepo, userRepo, courseRepo, sanitizer, collector)

	// 6. AIサービスの初期化
	// APIキー未設定の場合はnilジェネレーターとなり、ソフトフェイル文言が返る
	var generator ai.TextGenerator
	if cfg.GeminiAPIKey != "" {
		generator = ai.NewGeminiClient(
			&http.Client{Timeout: cfg.GeminiTimeout},
			slog.Default(),
			cfg.GeminiAPIKey,
			cfg.GeminiModel,
		)
	} else {
		slog.Warn("GEMINI_API_KEY is not set; AI features are disabled")
	}
	aiService := ai.NewService(generator, collector)

	// 7. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rateLimitPerSecond(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AIRate = rateLimitPerSecond(cfg.RateLimitAI)
	rateLimiterCfg.AIBurst = cfg.RateLimitAI
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	}

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		HTTPMetrics:       collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig:        csrfConfig,
		RateLimiter:       rateLimiter,
		SessionResolver:   authService,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		UserService:     userService,
		CourseService:   courseService,
		FeedbackService: feedbackService,

		DescriptionGenerator: aiService,
		FeedbackSummarizer:   aiService,

		MetricsHandler: metrics.Handler(registry),
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
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

// rateLimitPerSecond はreq/min単位の設定値をreq/sec単位のrate.Limitへ変換する。
func rateLimitPerSecond(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}
