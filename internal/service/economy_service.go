package service

import (
	"errors"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/util"

	"gorm.io/gorm"
)

// Reward 一局结算出的金币/经验
type Reward struct {
	Coins      int `json:"coins"`
	Experience int `json:"experience"`
}

// 每难度的基础奖励，easy < medium < hard < expert
var baseRewards = map[model.Difficulty]Reward{
	model.DifficultyEasy:   {Coins: 10, Experience: 15},
	model.DifficultyMedium: {Coins: 20, Experience: 30},
	model.DifficultyHard:   {Coins: 35, Experience: 55},
	model.DifficultyExpert: {Coins: 50, Experience: 80},
}

var baseScores = map[model.Difficulty]int{
	model.DifficultyEasy:   100,
	model.DifficultyMedium: 200,
	model.DifficultyHard:   400,
	model.DifficultyExpert: 600,
}

// speedThresholds 限速奖励的每难度阈值（秒）
var speedThresholds = map[model.Difficulty]int{
	model.DifficultyEasy:   180,
	model.DifficultyMedium: 300,
	model.DifficultyHard:   600,
	model.DifficultyExpert: 900,
}

// RequiredExp 升到 level 级需要的累计经验：L=1 为 0，L>=2 为 200L-100
func RequiredExp(level int) int {
	if level <= 1 {
		return 0
	}
	return 200*level - 100
}

// LevelFromExp 经验对应的等级：满足 RequiredExp(L) <= exp 的最大 L
func LevelFromExp(exp int) int {
	level := 1
	for RequiredExp(level+1) <= exp {
		level++
	}
	return level
}

// LevelProgress 当前等级内的经验进度
type LevelProgress struct {
	Level           int `json:"level"`
	CurrentLevelExp int `json:"currentLevelExp"` // 本级起点累计经验
	NextLevelExp    int `json:"nextLevelExp"`    // 下一级起点累计经验
	EarnedInLevel   int `json:"earnedInLevel"`
	NeededForLevel  int `json:"neededForLevel"`
	Percent         int `json:"percent"` // 0-100
}

func ComputeLevelProgress(level, exp int) LevelProgress {
	current := RequiredExp(level)
	next := RequiredExp(level + 1)
	earned := exp - current
	needed := next - current

	percent := 0
	if needed > 0 {
		percent = earned * 100 / needed
		if percent > 100 {
			percent = 100
		}
	}

	return LevelProgress{
		Level:           level,
		CurrentLevelExp: current,
		NextLevelExp:    next,
		EarnedInLevel:   earned,
		NeededForLevel:  needed,
		Percent:         percent,
	}
}

// ComputeRewards 基础奖励加三类独立加成：
// 步数效率 +50%金币/+30%经验，限时 +30%金币/+20%经验（都向下取整），
// 大图加成为固定值。
func ComputeRewards(difficulty model.Difficulty, totalPieces, completionTime, moves int) Reward {
	base := baseRewards[difficulty]
	reward := base

	// 效率加成：步数不超过块数的1.5倍
	if float64(moves) <= float64(totalPieces)*1.5 {
		reward.Coins += base.Coins * 50 / 100
		reward.Experience += base.Experience * 30 / 100
	}

	// 限时加成
	if threshold, ok := speedThresholds[difficulty]; ok && completionTime <= threshold {
		reward.Coins += base.Coins * 30 / 100
		reward.Experience += base.Experience * 20 / 100
	}

	// 大图加成
	switch {
	case totalPieces >= 25:
		reward.Coins += 10
		reward.Experience += 15
	case totalPieces >= 16:
		reward.Coins += 5
		reward.Experience += 8
	}

	return reward
}

// ComputeScore 难度基础分 + 块数分 + 递减的时间分 - 步数惩罚，不为负
func ComputeScore(difficulty model.Difficulty, totalPieces, completionTime, moves int) int {
	score := baseScores[difficulty]
	score += totalPieces * 5

	timeBonus := 1000 - completionTime
	if timeBonus < 0 {
		timeBonus = 0
	}
	score += timeBonus / 10

	penalty := moves - totalPieces
	if penalty < 0 {
		penalty = 0
	}
	score -= penalty * 2

	if score < 0 {
		score = 0
	}
	return score
}

// IsNewRecord 没有历史纪录，或用时更短，或用时相同步数更少
func IsNewRecord(game *model.SinglePlayerGame, best *model.SinglePlayerGame) bool {
	if best == nil {
		return true
	}
	if game.CompletionTime < best.CompletionTime {
		return true
	}
	return game.CompletionTime == best.CompletionTime && game.MovesCount < best.MovesCount
}

// StatsDelta 要落到 UserStats 上的一次变更
type StatsDelta struct {
	Coins      int
	Experience int
	Score      int
	PlayTime   int64 // 秒
	CountGame  bool  // 是否计入完成局数
}

// LevelUpResult 变更后的等级信息
type LevelUpResult struct {
	LeveledUp bool             `json:"leveledUp"`
	Levels    int              `json:"levels"`
	NewLevel  int              `json:"newLevel"`
	Stats     *model.UserStats `json:"stats"`
}

// EconomyService 把奖励原子地记到 UserStats 上
type EconomyService struct{}

func NewEconomyService() *EconomyService {
	return &EconomyService{}
}

// ApplyToStats 在给定事务里更新用户累计数据。level 永远由 experience 推导。
// 已存在的用户缺 stats 行属于数据完整性破坏，直接报 InvariantViolation。
func (s *EconomyService) ApplyToStats(tx *gorm.DB, userID uint, delta StatsDelta) (*LevelUpResult, error) {
	var stats model.UserStats
	if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStatsMissing
		}
		return nil, err
	}

	oldLevel := stats.Level

	stats.Coins += delta.Coins
	stats.Experience += delta.Experience
	stats.Level = LevelFromExp(stats.Experience)
	stats.TotalScore += delta.Score
	stats.TotalPlayTime += delta.PlayTime
	if delta.CountGame {
		stats.GamesCompleted++
	}

	if err := tx.Save(&stats).Error; err != nil {
		return nil, err
	}

	return &LevelUpResult{
		LeveledUp: stats.Level > oldLevel,
		Levels:    stats.Level - oldLevel,
		NewLevel:  stats.Level,
		Stats:     &stats,
	}, nil
}

// ApplyAchievementReward 成就解锁时发奖：只加金币和经验，
// 不动 totalScore / gamesCompleted。
func (s *EconomyService) ApplyAchievementReward(tx *gorm.DB, userID uint, coins, experience int) (*LevelUpResult, error) {
	return s.ApplyToStats(tx, userID, StatsDelta{Coins: coins, Experience: experience})
}
