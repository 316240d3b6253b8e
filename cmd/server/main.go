package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/ai"
	"github.com/ignatzorin/appeals-backend/internal/config"
	"github.com/ignatzorin/appeals-backend/internal/db"
	"github.com/ignatzorin/appeals-backend/internal/domain/policy"
	"github.com/ignatzorin/appeals-backend/internal/domain/repository"
	"github.com/ignatzorin/appeals-backend/internal/feed"
	"github.com/ignatzorin/appeals-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/appeals-backend/internal/http/handlers"
	"github.com/ignatzorin/appeals-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/appeals-backend/internal/http/router"
	aiAdapter "github.com/ignatzorin/appeals-backend/internal/infrastructure/ai"
	"github.com/ignatzorin/appeals-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/appeals-backend/internal/infrastructure/notify"
	"github.com/ignatzorin/appeals-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/appeals-backend/internal/interface/http/handler"
	"github.com/ignatzorin/appeals-backend/internal/logger"
	"github.com/ignatzorin/appeals-backend/internal/service"
	"github.com/ignatzorin/appeals-backend/internal/usecase/appeal"
	"github.com/ignatzorin/appeals-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	appLog := logger.Get()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			appLog.WithField("error", err.Error()).Warn("main: sentry не инициализирован")
		} else {
			defer sentry.Flush(2 * time.Second)
			goroutine.SetReporter(func(recovered interface{}) {
				sentry.CurrentHub().Recover(recovered)
			})
		}
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		appLog.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		appLog.Fatalf("main: ошибка миграций: %v", err)
	}
	if err := db.SyncAdmins(ctx, dbConn, cfg.AdminEmail); err != nil {
		appLog.Fatalf("main: не удалось записать администратора: %v", err)
	}

	// Redis необязателен: без него нет кэша оценок, а лимиты считаются в памяти.
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			appLog.WithField("error", err.Error()).Warn("main: redis недоступен, продолжаем без него")
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	admins := policy.NewSingleAdmin(cfg.AdminEmail)
	appealRepo := persistence.NewAppealRepositoryAdapter(dbConn)

	// Живая лента.
	broker := feed.NewBroker(cfg.StoreTimeout)
	goroutine.SafeGoWithContext(ctx, "feed.broker", broker.Run)

	// В режиме postgres изменения приходят из триггера через LISTEN, usecases ничего не публикуют.
	var publisher repository.ChangePublisher = broker
	if cfg.FeedMode == config.FeedModePostgres {
		publisher = nil
		listener := persistence.NewAppealChangeListener(cfg.DatabaseURL, broker)
		goroutine.SafeGoWithContext(ctx, "feed.listener", func(ctx context.Context) {
			if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
				appLog.WithField("error", err.Error()).Error("main: слушатель изменений остановлен")
			}
		})
	}

	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, "ws.hub", hub.Run)

	// AI и уведомления подключаются, только если настроены.
	aiService := newAIService(cfg, redisClient)
	notifier := newNotifier(cfg, appLog)

	var classifier appeal.BackgroundClassifier
	if aiService != nil {
		classifier = appeal.NewClassifyAppealUseCase(appealRepo, aiService, publisher, cfg.StoreTimeout, cfg.AITimeout)
	}

	// Usecases.
	submitUC := appeal.NewSubmitAppealUseCase(appealRepo, publisher, notifier, classifier, appeal.NewMonotonicClock(time.Now), cfg.StoreTimeout)
	listUC := appeal.NewListAppealsUseCase(appealRepo, admins, cfg.StoreTimeout)
	getUC := appeal.NewGetAppealUseCase(appealRepo, admins, cfg.StoreTimeout)
	decideUC := appeal.NewDecideAppealUseCase(appealRepo, admins, publisher, time.Now, cfg.StoreTimeout)
	analyzeUC := appeal.NewAnalyzeAppealUseCase(appealRepo, aiService, admins, cfg.StoreTimeout)
	watchUC := appeal.NewWatchAppealsUseCase(appealRepo, admins, broker)

	// Аутентификация.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, cfg.GuestSessionTTL)
	var verifier service.IDTokenVerifier
	if cfg.GoogleClientID != "" {
		googleVerifier, err := service.NewGoogleVerifier(ctx, cfg.GoogleJWKSURL, cfg.GoogleClientID)
		if err != nil {
			appLog.WithField("error", err.Error()).Error("main: JWKS Google недоступен, вход через Google отключён")
		} else {
			defer googleVerifier.Close()
			verifier = googleVerifier
		}
	}
	authService := service.NewAuthService(verifier, tokenManager, admins)

	// HTTP хэндлеры.
	authHandler := handler.NewAuthHandler(authService)
	appealHandler := handler.NewAppealHandler(submitUC, listUC, getUC, decideUC, analyzeUC)
	wsHandler := httpHandlers.NewWSHandler(hub, authService, watchUC, cfg.AllowedOrigins)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, middleware.NewRateLimitStore(redisClient), authService, authHandler, appealHandler, wsHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.WithField("error", err.Error()).Error("main: ошибка остановки http сервера")
		}
	}()

	appLog.WithFields(logrus.Fields{
		"port":      cfg.HTTPPort,
		"feed_mode": cfg.FeedMode,
		"ai":        aiService != nil,
		"telegram":  notifier != nil,
	}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		appLog.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// newAIService возвращает nil-интерфейс, если модель не настроена.
func newAIService(cfg *config.Config, redisClient *goredis.Client) repository.AIService {
	if cfg.AIBaseURL == "" || cfg.AIAPIKey == "" {
		return nil
	}

	model := ai.NewClient(cfg.AIBaseURL, cfg.AIModel, cfg.AIAPIKey, cfg.AITimeout)
	if redisClient == nil {
		return aiAdapter.NewAIServiceAdapter(model, nil)
	}
	return aiAdapter.NewAIServiceAdapter(model, cache.NewInsightCache(redisClient, cfg.InsightCacheTTL))
}

// newNotifier возвращает nil-интерфейс, если Telegram не настроен.
func newNotifier(cfg *config.Config, appLog *logrus.Logger) repository.AdminNotifier {
	if !cfg.TelegramEnabled() {
		return nil
	}

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		appLog.WithField("error", err.Error()).Warn("main: telegram бот недоступен, уведомления отключены")
		return nil
	}
	return notifier
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
