package app

import (
	"puzzle_arena_backend/internal/config"
	"puzzle_arena_backend/internal/middleware"
	"puzzle_arena_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.GET("/user/stats", c.user.GetStats)
		authGroup.PUT("/user/avatar", c.user.UpdateAvatar)
		authGroup.GET("/players/top", c.user.GetTopPlayers)

		// 单人对局
		authGroup.POST("/games/complete", c.game.CompleteGame)
		authGroup.GET("/games/history", c.game.GetHistory)
		authGroup.GET("/games/best", c.game.GetBest)
		authGroup.POST("/puzzles/image", c.game.UploadPuzzleImage)

		// 多人房间
		rooms := authGroup.Group("/rooms")
		{
			rooms.POST("", c.room.CreateRoom)
			rooms.POST("/join", c.room.JoinRoom)
			rooms.GET("/history", c.room.GetHistory)
			rooms.GET("/:code", c.room.GetRoom)
			rooms.POST("/:code/leave", c.room.LeaveRoom)
			rooms.POST("/:code/ready", c.room.SetReady)
			rooms.POST("/:code/start", c.room.StartGame)
			rooms.POST("/:code/finish", c.room.RecordFinish)
			rooms.POST("/:code/reset", c.room.ResetRoom)
		}

		// 成就
		authGroup.GET("/achievements", c.achievement.GetUserAchievements)

		// 排行榜
		authGroup.GET("/leaderboard", c.leaderboard.GetLeaderboard)
		authGroup.GET("/leaderboard/me", c.leaderboard.GetMyRank)
	}
}
