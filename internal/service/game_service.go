package service

import (
	"context"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GameService 单人对局的完成流水线：落档、算分发奖、
// 刷新纪录、写榜、推进成就，全部在一个事务里。
type GameService struct {
	GameRepo     *repository.SinglePlayerGameRepository
	Economy      *EconomyService
	Achievements *AchievementService
	Leaderboard  *LeaderboardService
	DB           *gorm.DB
}

func NewGameService(
	gameRepo *repository.SinglePlayerGameRepository,
	economy *EconomyService,
	achievements *AchievementService,
	leaderboard *LeaderboardService,
	db *gorm.DB,
) *GameService {
	return &GameService{
		GameRepo:     gameRepo,
		Economy:      economy,
		Achievements: achievements,
		Leaderboard:  leaderboard,
		DB:           db,
	}
}

// GameSettlement CompleteGame 的结算汇总
type GameSettlement struct {
	Game          *model.SinglePlayerGame `json:"game"`
	Score         int                     `json:"score"`
	Reward        Reward                  `json:"reward"`
	LevelUp       *LevelUpResult          `json:"levelUp"`
	NewRecord     bool                    `json:"newRecord"`
	OnLeaderboard bool                    `json:"onLeaderboard"`
	Unlocked      []ProgressOutcome       `json:"unlockedAchievements"`
}

// CompleteGame 记录一局完成的单人拼图并结算
func (s *GameService) CompleteGame(userID uint, username string, cfg model.PuzzleConfig, completionTime, moves int) (*GameSettlement, error) {
	settlement := &GameSettlement{}
	pieces := cfg.TotalPieces()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		best, err := s.GameRepo.FindBest(tx, userID, cfg.Difficulty, cfg.PieceShape)
		if err != nil {
			return err
		}

		game := &model.SinglePlayerGame{
			UserID:         userID,
			Difficulty:     cfg.Difficulty,
			GridSize:       cfg.GridSize,
			TotalPieces:    pieces,
			PieceShape:     cfg.PieceShape,
			ImageReference: cfg.ImageReference,
			CompletionTime: completionTime,
			MovesCount:     moves,
		}

		newRecord := IsNewRecord(game, best)
		reward := ComputeRewards(cfg.Difficulty, pieces, completionTime, moves)
		score := ComputeScore(cfg.Difficulty, pieces, completionTime, moves)

		game.Score = score
		game.CoinsEarned = reward.Coins
		game.ExpEarned = reward.Experience
		game.IsNewRecord = newRecord
		if err := tx.Create(game).Error; err != nil {
			return err
		}

		levelUp, err := s.Economy.ApplyToStats(tx, userID, StatsDelta{
			Coins:      reward.Coins,
			Experience: reward.Experience,
			Score:      score,
			PlayTime:   int64(completionTime),
			CountGame:  true,
		})
		if err != nil {
			return err
		}

		unlocked, _, err := s.Achievements.applyBatchTx(tx, userID, s.progressFor(cfg, completionTime, moves))
		if err != nil {
			return err
		}

		if Qualifies(newRecord, score) {
			entry := &model.LeaderboardEntry{
				UserID:         userID,
				Username:       username,
				Difficulty:     cfg.Difficulty,
				PieceShape:     cfg.PieceShape,
				TotalPieces:    pieces,
				CompletionTime: completionTime,
				MovesCount:     moves,
				Score:          score,
			}
			if err := s.Leaderboard.Append(tx, entry); err != nil {
				return err
			}
			settlement.OnLeaderboard = true
		}

		settlement.Game = game
		settlement.Score = score
		settlement.Reward = reward
		settlement.LevelUp = levelUp
		settlement.NewRecord = newRecord
		settlement.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settlement.OnLeaderboard {
		s.Leaderboard.InvalidateCache(context.Background())
	}

	logger.Log.Info("single-player game completed",
		zap.Uint("user", userID),
		zap.String("difficulty", string(cfg.Difficulty)),
		zap.Int("score", settlement.Score),
		zap.Bool("newRecord", settlement.NewRecord))
	return settlement, nil
}

// progressFor 这一局能推进哪些成就
func (s *GameService) progressFor(cfg model.PuzzleConfig, completionTime, moves int) []ProgressDelta {
	deltas := []ProgressDelta{
		{Code: "first_puzzle", Delta: 1},
		{Code: "puzzles_10", Delta: 1},
		{Code: "puzzles_50", Delta: 1},
		{Code: "puzzles_100", Delta: 1},
	}
	if threshold, ok := speedThresholds[cfg.Difficulty]; ok && completionTime <= threshold {
		deltas = append(deltas, ProgressDelta{Code: "speed_runner", Delta: 1})
	}
	if float64(moves) <= float64(cfg.TotalPieces())*1.5 {
		deltas = append(deltas, ProgressDelta{Code: "efficient_solver", Delta: 1})
	}
	if cfg.Difficulty == model.DifficultyExpert {
		deltas = append(deltas, ProgressDelta{Code: "expert_finisher", Delta: 1})
	}
	return deltas
}

// GetHistory 单人对局历史
func (s *GameService) GetHistory(userID uint, page, limit int) ([]model.SinglePlayerGame, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.GameRepo.FindByUser(userID, page, limit)
}

// GetBest 用户在某难度/块形下的最好成绩，可能为 nil
func (s *GameService) GetBest(userID uint, difficulty model.Difficulty, pieceShape string) (*model.SinglePlayerGame, error) {
	return s.GameRepo.FindBest(s.DB, userID, difficulty, pieceShape)
}
