package repository

import (
	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindByCode(db *gorm.DB, code string) (*model.Achievement, error) {
	var achievement model.Achievement
	err := db.Where("code = ?", code).First(&achievement).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

// FindProgress 用户在某个成就上的进度行，不存在时返回 gorm.ErrRecordNotFound
func (r *AchievementRepository) FindProgress(db *gorm.DB, userID, achievementID uint) (*model.UserAchievement, error) {
	var progress model.UserAchievement
	err := db.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindAllProgress 用户全部成就进度
func (r *AchievementRepository) FindAllProgress(userID uint) ([]model.UserAchievement, error) {
	var progress []model.UserAchievement
	err := r.DB.Where("user_id = ?", userID).Find(&progress).Error
	return progress, err
}
