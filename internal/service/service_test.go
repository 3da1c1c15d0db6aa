package service

import (
	"fmt"
	"testing"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立内存库，单连接避免 :memory: 按连接隔离
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testEnv 一套按生产方式接好线的服务
type testEnv struct {
	db           *gorm.DB
	economy      *EconomyService
	achievements *AchievementService
	leaderboard  *LeaderboardService
	game         *GameService
	room         *RoomService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	economy := NewEconomyService()
	achievements := NewAchievementService(repository.NewAchievementRepository(db), economy, db)
	leaderboard := NewLeaderboardService(repository.NewLeaderboardRepository(db), nil)
	game := NewGameService(repository.NewSinglePlayerGameRepository(db), economy, achievements, leaderboard, db)
	room := NewRoomService(
		repository.NewRoomRepository(db),
		repository.NewGameRecordRepository(db),
		economy,
		achievements,
		db,
	)

	return &testEnv{
		db:           db,
		economy:      economy,
		achievements: achievements,
		leaderboard:  leaderboard,
		game:         game,
		room:         room,
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{
		Username: name,
		Email:    fmt.Sprintf("%s@test.local", name),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	if err := db.Create(&model.UserStats{UserID: user.ID, Level: 1}).Error; err != nil {
		t.Fatalf("create stats for %s: %v", name, err)
	}
	return user
}

func statsOf(t *testing.T, db *gorm.DB, userID uint) *model.UserStats {
	t.Helper()
	var stats model.UserStats
	if err := db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		t.Fatalf("load stats for user %d: %v", userID, err)
	}
	return &stats
}

func easyConfig() model.PuzzleConfig {
	return model.PuzzleConfig{
		Difficulty: model.DifficultyEasy,
		GridSize:   3,
		PieceShape: "square",
	}
}
