package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"puzzle_arena_backend/internal/config"
	"puzzle_arena_backend/internal/controller"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/pkg/configwatcher"
	"puzzle_arena_backend/pkg/database"
	"puzzle_arena_backend/pkg/logger"
	"puzzle_arena_backend/pkg/monitoring"
	"puzzle_arena_backend/pkg/security"
	"puzzle_arena_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	stats       *repository.StatsRepository
	room        *repository.RoomRepository
	gameRecord  *repository.GameRecordRepository
	game        *repository.SinglePlayerGameRepository
	achievement *repository.AchievementRepository
	leaderboard *repository.LeaderboardRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	economy     *service.EconomyService
	achievement *service.AchievementService
	leaderboard *service.LeaderboardService
	game        *service.GameService
	room        *service.RoomService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	room        *controller.RoomController
	game        *controller.GameController
	achievement *controller.AchievementController
	leaderboard *controller.LeaderboardController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		stats:       repository.NewStatsRepository(db),
		room:        repository.NewRoomRepository(db),
		gameRecord:  repository.NewGameRecordRepository(db),
		game:        repository.NewSinglePlayerGameRepository(db),
		achievement: repository.NewAchievementRepository(db),
		leaderboard: repository.NewLeaderboardRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, db, cfg)
	s.user = service.NewUserService(repos.user, repos.stats)
	s.economy = service.NewEconomyService()
	s.achievement = service.NewAchievementService(repos.achievement, s.economy, db)
	s.leaderboard = service.NewLeaderboardService(repos.leaderboard, rdb)
	s.game = service.NewGameService(repos.game, s.economy, s.achievement, s.leaderboard, db)

	s.room = service.NewRoomService(repos.room, repos.gameRecord, s.economy, s.achievement, db)
	s.room.CodeAttempts = cfg.Room.CodeAttempts
	s.room.MinPlayers = cfg.Room.MinPlayers
	s.room.MaxPlayers = cfg.Room.MaxPlayersCap

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		room:        controller.NewRoomController(s.room),
		game:        controller.NewGameController(s.game, s.storage),
		achievement: controller.NewAchievementController(s.achievement),
		leaderboard: controller.NewLeaderboardController(s.leaderboard),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migration completed")
		if cfg.MigrateOnly {
			os.Exit(0)
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 排行榜缓存降级为直查，不阻塞启动
		logger.Log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("puzzle-arena", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 房间参数支持热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.room.CodeAttempts = newCfg.Room.CodeAttempts
		app.services.room.MinPlayers = newCfg.Room.MinPlayers
		app.services.room.MaxPlayers = newCfg.Room.MaxPlayersCap
	})
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		for _, cb := range app.configCallbacks {
			cb(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
