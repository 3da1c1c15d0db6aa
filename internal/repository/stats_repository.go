package repository

import (
	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) FindByUserID(userID uint) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.DB.Where("user_id = ?", userID).First(&stats).Error
	return &stats, err
}

func (r *StatsRepository) Create(stats *model.UserStats) error {
	return r.DB.Create(stats).Error
}

// FindTopByExperience 经验榜，用于总览页
func (r *StatsRepository) FindTopByExperience(limit int) ([]model.UserStats, error) {
	var stats []model.UserStats
	err := r.DB.Order("experience DESC").Limit(limit).Find(&stats).Error
	return stats, err
}
