package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/classpulse/internal/guard"
	"github.com/hitoshi/classpulse/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	HTTPMetrics       middleware.HTTPMetricsRecorder // nil可
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	SessionResolver   middleware.CurrentUserResolver

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	UserService     UserServiceInterface
	CourseService   CourseServiceInterface
	FeedbackService FeedbackServiceInterface

	// AI生成
	DescriptionGenerator DescriptionGenerator
	FeedbackSummarizer   FeedbackSummarizer

	// Prometheusスクレイプ用ハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	SecurityHeaders → CORS → Recovery → Logging → (API) Session → CSRF → RateLimit
//
// 認証ルート（/auth/*）とページルートはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPMetrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	courseHandler := NewCourseHandler(deps.CourseService, deps.DescriptionGenerator)
	feedbackHandler := NewFeedbackHandler(deps.FeedbackService, deps.FeedbackSummarizer)
	pageHandler := NewPageHandler(deps.SessionResolver)

	requireAdmin := middleware.NewRequireAdminMiddleware()

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// 認証ルート（CSRF検証のみ適用）
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	// ページルート（アクセス判定はPageHandler内のguardが行う）
	r.Get(guard.PathLogin, pageHandler.ServeAuthPage)
	r.Get(guard.PathSignup, pageHandler.ServeAuthPage)
	r.Get(guard.PathRoot, pageHandler.ServeProtectedPage)
	r.Get(guard.PathDashboard, pageHandler.ServeProtectedPage)
	r.Get(guard.PathCourses, pageHandler.ServeProtectedPage)
	r.Get(guard.PathCourses+"/{id}", pageHandler.ServeProtectedPage)
	r.Get(guard.PathProfile, pageHandler.ServeProtectedPage)
	r.Get(guard.PathAdminDashboard, pageHandler.ServeProtectedPage)
	r.Get(guard.PathAdminFeedback, pageHandler.ServeProtectedPage)
	r.Get(guard.PathAdminUsers, pageHandler.ServeProtectedPage)
	r.Get(guard.PathAdminCourses, pageHandler.ServeProtectedPage)

	// --- 認証が必要なAPIルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionResolver))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// コース管理
		r.Route("/api/courses", func(r chi.Router) {
			r.Get("/", courseHandler.ListCourses)

			// 管理者のみ
			r.With(requireAdmin).Post("/", courseHandler.CreateCourse)
			r.With(requireAdmin, deps.RateLimiter.AIMiddleware()).
				Post("/description", courseHandler.GenerateDescription)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", courseHandler.GetCourse)
				r.With(requireAdmin).Patch("/", courseHandler.UpdateCourse)
				r.With(requireAdmin).Delete("/", courseHandler.DeleteCourse)
			})
		})

		// フィードバック管理
		r.Route("/api/feedback", func(r chi.Router) {
			r.Post("/", feedbackHandler.CreateFeedback)

			// 管理者のみ
			r.With(requireAdmin).Get("/", feedbackHandler.ListFeedback)
			r.With(requireAdmin).Get("/export", feedbackHandler.ExportFeedback)
			r.With(requireAdmin, deps.RateLimiter.AIMiddleware()).
				Post("/summary", feedbackHandler.SummarizeFeedback)

			// 投稿者本人または管理者（判定はサービス層）
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", feedbackHandler.UpdateFeedback)
				r.Delete("/", feedbackHandler.DeleteFeedback)
			})
		})

		// 自分のフィードバック一覧
		r.Get("/api/my/feedback", feedbackHandler.ListMyFeedback)

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			// 管理者のみ
			r.With(requireAdmin).Get("/", userHandler.ListUsers)

			r.Route("/{id}", func(r chi.Router) {
				// 本人または管理者（判定はハンドラー内）
				r.Get("/", userHandler.GetUser)
				r.Patch("/", userHandler.UpdateProfile)

				// 管理者のみ
				r.With(requireAdmin).Put("/blocked", userHandler.SetBlocked)
				r.With(requireAdmin).Delete("/", userHandler.DeleteUser)
			})
		})
	})

	return r
}
