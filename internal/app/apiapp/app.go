package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/avelichko/matchbook/internal/config"
	s3infra "github.com/avelichko/matchbook/internal/infra/s3"
	"github.com/avelichko/matchbook/internal/jobs/cleanup"
	pgrepo "github.com/avelichko/matchbook/internal/repo/postgres"
	redrepo "github.com/avelichko/matchbook/internal/repo/redis"
	authsvc "github.com/avelichko/matchbook/internal/services/auth"
	discoverysvc "github.com/avelichko/matchbook/internal/services/discovery"
	likessvc "github.com/avelichko/matchbook/internal/services/likes"
	matchessvc "github.com/avelichko/matchbook/internal/services/matches"
	mediasvc "github.com/avelichko/matchbook/internal/services/media"
	messagessvc "github.com/avelichko/matchbook/internal/services/messages"
	profilessvc "github.com/avelichko/matchbook/internal/services/profiles"
	ratesvc "github.com/avelichko/matchbook/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	notifyRepo := redrepo.NewNotifyRepo(redisClient)

	profileRepo := pgrepo.NewProfileRepo(pool)
	filterRepo := pgrepo.NewFilterRepo(pool)
	likeRepo := pgrepo.NewLikeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	discoveryRepo := pgrepo.NewDiscoveryRepo(pool)
	cleanupRepo := pgrepo.NewCleanupRepo(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	mediaService := mediasvc.NewService(mediaStorage)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	rateLimiter := ratesvc.NewLimiter(rateRepo, cfg.Limits.LikesPerMinute, cfg.Limits.LikesPer10Seconds)

	matchesService := matchessvc.NewService(matchRepo, mediaStorage)
	profilesService := profilessvc.NewService(profileRepo, filterRepo, matchRepo, mediaStorage, profilessvc.Config{
		DefaultAgeMin:   cfg.Discovery.DefaultAgeMin,
		DefaultAgeMax:   cfg.Discovery.DefaultAgeMax,
		DefaultDistance: cfg.Discovery.DefaultDistanceMiles,
	})
	discoveryService := discoverysvc.NewService(discoveryRepo, profileRepo, filterRepo, mediaStorage, discoverysvc.Config{
		PageSize:        cfg.Discovery.PageSize,
		DefaultAgeMin:   cfg.Discovery.DefaultAgeMin,
		DefaultAgeMax:   cfg.Discovery.DefaultAgeMax,
		DefaultDistance: cfg.Discovery.DefaultDistanceMiles,
	})
	likesService := likessvc.NewService(pool, likeRepo, matchRepo, profileRepo, rateLimiter, mediaStorage)
	messagesService := messagessvc.NewService(messageRepo, matchesService, notifyRepo, messagessvc.Config{
		HistoryLimit: cfg.Messages.HistoryLimit,
	})

	cleanupJob := cleanup.New(cleanupRepo, messageRepo, cfg.Cleanup.Grace, cfg.Cleanup.MessageRetention, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		JWTManager:       jwtManager,
		DiscoveryService: discoveryService,
		ProfilesService:  profilesService,
		LikesService:     likesService,
		MatchesService:   matchesService,
		MessagesService:  messagesService,
		MediaService:     mediaService,
		Logger:           log,
		Config:           cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartCleanup runs the background sweeper until ctx is cancelled.
func (a *App) StartCleanup(ctx context.Context) {
	if a.cleanupJob == nil {
		return
	}
	a.cleanupJob.Start(ctx, a.cfg.Cleanup.Interval)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
