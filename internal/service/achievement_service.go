package service

import (
	"errors"
	"time"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/util"
	"puzzle_arena_backend/pkg/logger"
	"puzzle_arena_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AchievementService 成就进度的幂等推进与解锁发奖
type AchievementService struct {
	Repo    *repository.AchievementRepository
	Economy *EconomyService
	DB      *gorm.DB
}

func NewAchievementService(repo *repository.AchievementRepository, economy *EconomyService, db *gorm.DB) *AchievementService {
	return &AchievementService{Repo: repo, Economy: economy, DB: db}
}

// ProgressDelta 一次成就进度推进
type ProgressDelta struct {
	Code  string `json:"code"`
	Delta int    `json:"delta"`
}

// ProgressOutcome 单个成就推进的结果
type ProgressOutcome struct {
	Achievement     model.Achievement     `json:"achievement"`
	Progress        model.UserAchievement `json:"progress"`
	Unlocked        bool                  `json:"unlocked"`        // 本次调用新解锁
	AlreadyUnlocked bool                  `json:"alreadyUnlocked"` // 早已解锁，本次为无操作
}

// ApplyProgress 推进单个成就，独立事务
func (s *AchievementService) ApplyProgress(userID uint, code string, delta int) (*ProgressOutcome, error) {
	var outcome *ProgressOutcome
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		outcome, err = s.applyProgressTx(tx, userID, code, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyProgressTx 进度单调不减、封顶 MaxProgress。已解锁的成就再推进
// 是无操作——奖励绝不会发第二次。达到上限的那一次翻转 IsUnlocked 并发奖。
func (s *AchievementService) applyProgressTx(tx *gorm.DB, userID uint, code string, delta int) (*ProgressOutcome, error) {
	if delta <= 0 {
		delta = 1
	}

	achievement, err := s.Repo.FindByCode(tx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}

	progress, err := s.Repo.FindProgress(tx, userID, achievement.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = &model.UserAchievement{
			UserID:        userID,
			AchievementID: achievement.ID,
		}
	} else if err != nil {
		return nil, err
	} else if progress.IsUnlocked {
		return &ProgressOutcome{
			Achievement:     *achievement,
			Progress:        *progress,
			AlreadyUnlocked: true,
		}, nil
	}

	progress.Progress += delta
	if progress.Progress > achievement.MaxProgress {
		progress.Progress = achievement.MaxProgress
	}

	unlocked := false
	if progress.Progress >= achievement.MaxProgress {
		now := time.Now()
		progress.IsUnlocked = true
		progress.UnlockedAt = &now
		unlocked = true
	}

	if err := tx.Save(progress).Error; err != nil {
		return nil, err
	}

	if unlocked {
		if _, err := s.Economy.ApplyAchievementReward(tx, userID, achievement.RewardCoins, achievement.RewardExperience); err != nil {
			return nil, err
		}
		monitoring.AchievementsUnlocked.Inc()
		logger.Log.Info("achievement unlocked",
			zap.Uint("user", userID), zap.String("code", code))
	}

	return &ProgressOutcome{
		Achievement: *achievement,
		Progress:    *progress,
		Unlocked:    unlocked,
	}, nil
}

// ApplyBatch 在一个事务里推进一组成就，返回新解锁与仅更新两部分。
// 未知的成就码和已解锁的成就会被跳过，不会让整批失败。
func (s *AchievementService) ApplyBatch(userID uint, deltas []ProgressDelta) (unlocked, updated []ProgressOutcome, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		unlocked, updated, txErr = s.applyBatchTx(tx, userID, deltas)
		return txErr
	})
	if err != nil {
		return nil, nil, err
	}
	return unlocked, updated, nil
}

func (s *AchievementService) applyBatchTx(tx *gorm.DB, userID uint, deltas []ProgressDelta) (unlocked, updated []ProgressOutcome, err error) {
	for _, d := range deltas {
		outcome, err := s.applyProgressTx(tx, userID, d.Code, d.Delta)
		if errors.Is(err, util.ErrAchievementNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if outcome.AlreadyUnlocked {
			continue
		}
		if outcome.Unlocked {
			unlocked = append(unlocked, *outcome)
		} else {
			updated = append(updated, *outcome)
		}
	}
	return unlocked, updated, nil
}

// AchievementView 目录条目与调用者自己的进度合并后的视图
type AchievementView struct {
	model.Achievement
	Progress   int        `json:"progress"`
	IsUnlocked bool       `json:"isUnlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"`
}

// GetUserAchievements 成就目录与用户进度的合并列表
func (s *AchievementService) GetUserAchievements(userID uint) ([]AchievementView, error) {
	catalog, err := s.Repo.FindAll()
	if err != nil {
		return nil, err
	}

	progress, err := s.Repo.FindAllProgress(userID)
	if err != nil {
		return nil, err
	}
	byAchievement := make(map[uint]model.UserAchievement, len(progress))
	for _, p := range progress {
		byAchievement[p.AchievementID] = p
	}

	views := make([]AchievementView, 0, len(catalog))
	for _, a := range catalog {
		view := AchievementView{Achievement: a}
		if p, ok := byAchievement[a.ID]; ok {
			view.Progress = p.Progress
			view.IsUnlocked = p.IsUnlocked
			view.UnlockedAt = p.UnlockedAt
		}
		views = append(views, view)
	}
	return views, nil
}
