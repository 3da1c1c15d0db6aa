package service

import (
	"errors"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo  *repository.UserRepository
	StatsRepo *repository.StatsRepository
}

func NewUserService(userRepo *repository.UserRepository, statsRepo *repository.StatsRepository) *UserService {
	return &UserService{UserRepo: userRepo, StatsRepo: statsRepo}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// StatsView 累计数据加上当前等级内的经验进度
type StatsView struct {
	model.UserStats
	LevelProgress LevelProgress `json:"levelProgress"`
}

// GetStats 用户存在但 stats 行缺失视为数据完整性破坏
func (s *UserService) GetStats(userID uint) (*StatsView, error) {
	if _, err := s.GetByID(userID); err != nil {
		return nil, err
	}

	stats, err := s.StatsRepo.FindByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStatsMissing
	}
	if err != nil {
		return nil, err
	}

	return &StatsView{
		UserStats:     *stats,
		LevelProgress: ComputeLevelProgress(stats.Level, stats.Experience),
	}, nil
}

// GetTopPlayers 经验榜前N名，总览页用
func (s *UserService) GetTopPlayers(limit int) ([]model.UserStats, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.StatsRepo.FindTopByExperience(limit)
}

// UpdateAvatar 更新头像引用
func (s *UserService) UpdateAvatar(userID uint, avatarURL string) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}
	user.Avatar = avatarURL
	return s.UserRepo.Update(user)
}
