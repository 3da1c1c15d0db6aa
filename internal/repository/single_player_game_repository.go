package repository

import (
	"errors"

	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

type SinglePlayerGameRepository struct {
	DB *gorm.DB
}

func NewSinglePlayerGameRepository(db *gorm.DB) *SinglePlayerGameRepository {
	return &SinglePlayerGameRepository{DB: db}
}

// FindBest 用户在某难度/块形下的最好成绩：用时最短，平手比步数
func (r *SinglePlayerGameRepository) FindBest(db *gorm.DB, userID uint, difficulty model.Difficulty, pieceShape string) (*model.SinglePlayerGame, error) {
	var best model.SinglePlayerGame
	err := db.Where("user_id = ? AND difficulty = ? AND piece_shape = ?", userID, difficulty, pieceShape).
		Order("completion_time ASC, moves_count ASC, id ASC").
		First(&best).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &best, nil
}

// FindByUser 用户的单人历史，倒序分页
func (r *SinglePlayerGameRepository) FindByUser(userID uint, page, limit int) ([]model.SinglePlayerGame, int64, error) {
	var total int64
	query := r.DB.Model(&model.SinglePlayerGame{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var games []model.SinglePlayerGame
	err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&games).Error
	return games, total, err
}
