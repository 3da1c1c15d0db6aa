package repository

import (
	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

// LeaderboardSort 榜单排序键
type LeaderboardSort string

const (
	SortByTime  LeaderboardSort = "time"  // 用时升序
	SortByMoves LeaderboardSort = "moves" // 步数升序
	SortByScore LeaderboardSort = "score" // 得分降序
)

func (s LeaderboardSort) Valid() bool {
	return s == SortByTime || s == SortByMoves || s == SortByScore
}

// orderClause 平手按自然行序（id升序）打破
func (s LeaderboardSort) orderClause() string {
	switch s {
	case SortByMoves:
		return "moves_count ASC, id ASC"
	case SortByScore:
		return "score DESC, id ASC"
	default:
		return "completion_time ASC, id ASC"
	}
}

// LeaderboardFilter 榜单筛选条件
type LeaderboardFilter struct {
	Difficulty model.Difficulty
	PieceShape string
}

type LeaderboardRepository struct {
	DB *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{DB: db}
}

func (r *LeaderboardRepository) Create(db *gorm.DB, entry *model.LeaderboardEntry) error {
	return db.Create(entry).Error
}

func (r *LeaderboardRepository) filtered(filter LeaderboardFilter) *gorm.DB {
	query := r.DB.Model(&model.LeaderboardEntry{})
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.PieceShape != "" {
		query = query.Where("piece_shape = ?", filter.PieceShape)
	}
	return query
}

// FindRanked 按排序键取一页
func (r *LeaderboardRepository) FindRanked(sort LeaderboardSort, filter LeaderboardFilter, page, limit int) ([]model.LeaderboardEntry, int64, error) {
	query := r.filtered(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.LeaderboardEntry
	err := query.Order(sort.orderClause()).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

// FindBestForUser 同一排序键下该用户的最好条目
func (r *LeaderboardRepository) FindBestForUser(sort LeaderboardSort, filter LeaderboardFilter, userID uint) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.filtered(filter).
		Where("user_id = ?", userID).
		Order(sort.orderClause()).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RankOf 某个条目在同一排序键+筛选下的名次：严格领先者数+1，
// 平手按id先后（自然行序）判定先后。
func (r *LeaderboardRepository) RankOf(sort LeaderboardSort, filter LeaderboardFilter, entry *model.LeaderboardEntry) (int64, error) {
	query := r.filtered(filter)

	switch sort {
	case SortByMoves:
		query = query.Where(
			"moves_count < ? OR (moves_count = ? AND id < ?)",
			entry.MovesCount, entry.MovesCount, entry.ID,
		)
	case SortByScore:
		query = query.Where(
			"score > ? OR (score = ? AND id < ?)",
			entry.Score, entry.Score, entry.ID,
		)
	default:
		query = query.Where(
			"completion_time < ? OR (completion_time = ? AND id < ?)",
			entry.CompletionTime, entry.CompletionTime, entry.ID,
		)
	}

	var ahead int64
	if err := query.Count(&ahead).Error; err != nil {
		return 0, err
	}
	return ahead + 1, nil
}
