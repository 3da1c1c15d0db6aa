package repository

import (
	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

type GameRecordRepository struct {
	DB *gorm.DB
}

func NewGameRecordRepository(db *gorm.DB) *GameRecordRepository {
	return &GameRecordRepository{DB: db}
}

// FindByUser 用户参与过的多人对局，按结束时间倒序分页
func (r *GameRecordRepository) FindByUser(userID uint, page, limit int) ([]model.GameRecord, int64, error) {
	var total int64
	sub := r.DB.Model(&model.GameRecordPlayer{}).
		Select("game_record_id").
		Where("user_id = ?", userID)

	query := r.DB.Model(&model.GameRecord{}).Where("id IN (?)", sub)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []model.GameRecord
	err := query.
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("game_record_players.`rank` ASC")
		}).
		Order("finished_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}
