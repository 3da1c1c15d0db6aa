package database

import (
	"fmt"
	"log"

	"puzzle_arena_backend/internal/config"
	"puzzle_arena_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// Migrate 建表并播种成就目录。测试里也用它初始化内存库。
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.UserStats{},
		&model.Room{},
		&model.RoomPlayer{},
		&model.GameRecord{},
		&model.GameRecordPlayer{},
		&model.SinglePlayerGame{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.LeaderboardEntry{},
	)
	if err != nil {
		return err
	}

	return seedAchievements(db)
}

// seedAchievements 成就目录为空时写入默认目录
func seedAchievements(db *gorm.DB) error {
	var count int64
	db.Model(&model.Achievement{}).Count(&count)
	if count > 0 {
		return nil
	}

	defaults := []model.Achievement{
		{Code: "first_puzzle", Name: "初次拼图", Description: "完成第一局拼图", Category: "progress", MaxProgress: 1, RewardCoins: 20, RewardExperience: 30},
		{Code: "puzzles_10", Name: "小有所成", Description: "累计完成10局拼图", Category: "progress", MaxProgress: 10, RewardCoins: 50, RewardExperience: 80},
		{Code: "puzzles_50", Name: "拼图老手", Description: "累计完成50局拼图", Category: "progress", MaxProgress: 50, RewardCoins: 150, RewardExperience: 250},
		{Code: "puzzles_100", Name: "拼图大师", Description: "累计完成100局拼图", Category: "progress", MaxProgress: 100, RewardCoins: 400, RewardExperience: 600},
		{Code: "speed_runner", Name: "快手", Description: "在限时内完成10局拼图", Category: "speed", MaxProgress: 10, RewardCoins: 100, RewardExperience: 150},
		{Code: "efficient_solver", Name: "步步为营", Description: "以高效步数完成20局拼图", Category: "efficiency", MaxProgress: 20, RewardCoins: 120, RewardExperience: 180},
		{Code: "expert_finisher", Name: "专家之路", Description: "完成5局专家难度拼图", Category: "progress", MaxProgress: 5, RewardCoins: 200, RewardExperience: 300},
		{Code: "first_victory", Name: "首胜", Description: "赢得第一场多人竞速", Category: "multiplayer", MaxProgress: 1, RewardCoins: 50, RewardExperience: 80},
		{Code: "race_winner_10", Name: "竞速王者", Description: "赢得10场多人竞速", Category: "multiplayer", MaxProgress: 10, RewardCoins: 300, RewardExperience: 450},
		{Code: "social_player", Name: "以图会友", Description: "参与10场多人竞速", Category: "multiplayer", MaxProgress: 10, RewardCoins: 80, RewardExperience: 120},
	}

	for _, a := range defaults {
		if err := db.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
