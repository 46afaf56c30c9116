package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/earshelf/internal/metrics"
	"github.com/hitoshi/earshelf/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// CatalogReader はルーターが必要とするカタログサービス。
type CatalogReader interface {
	CatalogServiceInterface
	AudiobookFinder
}

// LibraryManager はルーターが必要とするライブラリサービス。
type LibraryManager interface {
	LibraryServiceInterface
	LibraryChecker
}

// ProgressTracker はルーターが必要とする再生位置サービス。
type ProgressTracker interface {
	ProgressSaver
	ResumeOffsetReader
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	HTTPSOnly         bool

	// 運用
	HealthChecker   HealthChecker
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
	MediaDir        string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメインサービス
	CatalogService  CatalogReader
	LibraryService  LibraryManager
	ProgressService ProgressTracker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestSize → Recovery → Logging → Metrics → SecurityHeaders → CORS
//	認証が必要なルート: Session → RateLimit(General) → CSRF
//	再生位置保存: Session(403) → RateLimit(Progress) → CSRF
//	ログイン・サインアップ: RateLimit(Auth, IP単位) → CSRF
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mc := deps.Metrics
	if mc == nil {
		mc = metrics.Nop{}
	}

	r.Use(chimw.RealIP)
	// CSRFミドルウェアがフォームを読む前にボディサイズを制限する
	r.Use(chimw.RequestSize(maxRequestBodySize))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(mc))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HTTPSOnly))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	libraryHandler := NewLibraryHandler(deps.LibraryService)
	playerHandler := NewPlayerHandler(deps.CatalogService, deps.ProgressService, deps.LibraryService)
	progressHandler := NewProgressHandler(deps.ProgressService)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Use(csrf)
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})
		r.With(csrf).Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Get("/api/audiobooks/featured", catalogHandler.ListFeatured)
	r.Get("/api/audiobooks", catalogHandler.ListAll)

	if deps.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(csrf)

		r.Route("/api/library", func(r chi.Router) {
			r.Get("/", libraryHandler.ListLibrary)
			r.Post("/", libraryHandler.AddToLibrary)
		})
		r.Get("/api/player/{id}", playerHandler.GetPlayer)
	})

	// プレイヤーからの再生位置保存は未認証時に403を返す。
	// timeupdateごとに送られるためAPI全般とは別のバケットで制限する
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddlewareWithStatus(deps.SessionFinder, http.StatusForbidden))
		r.Use(deps.RateLimiter.ProgressMiddleware())
		r.Use(csrf)

		r.Post("/progress", progressHandler.SaveProgress)
	})

	return r
}
