package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QualifyingScore 入榜分数线。榜单只收破纪录或高分局，刻意保持稀疏。
const QualifyingScore = 1000

const leaderboardCacheTTL = 30 * time.Second

// LeaderboardService 榜单的条件写入与带缓存的排名读取
type LeaderboardService struct {
	Repo *repository.LeaderboardRepository
	RDB  *redis.Client // 可为 nil，此时直接落库查询
}

func NewLeaderboardService(repo *repository.LeaderboardRepository, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{Repo: repo, RDB: rdb}
}

// Qualifies 只有新纪录或超过分数线的局才入榜
func Qualifies(newRecord bool, score int) bool {
	return newRecord || score > QualifyingScore
}

// Append 追加一条榜单记录（调用方保证已通过 Qualifies）
func (s *LeaderboardService) Append(tx *gorm.DB, entry *model.LeaderboardEntry) error {
	return s.Repo.Create(tx, entry)
}

// LeaderboardPage 一页榜单
type LeaderboardPage struct {
	Entries []model.LeaderboardEntry `json:"entries"`
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
}

// UserRank 调用者自己的名次
type UserRank struct {
	Rank  int64                   `json:"rank"`
	Entry *model.LeaderboardEntry `json:"entry"`
}

// cacheVersion 用版本号让整套缓存失效，省掉按模式删键
func (s *LeaderboardService) cacheVersion(ctx context.Context) int64 {
	if s.RDB == nil {
		return 0
	}
	version, err := s.RDB.Get(ctx, "leaderboard:version").Int64()
	if err != nil {
		return 0
	}
	return version
}

// InvalidateCache 写入合格条目后让缓存页过期
func (s *LeaderboardService) InvalidateCache(ctx context.Context) {
	if s.RDB == nil {
		return
	}
	if err := s.RDB.Incr(ctx, "leaderboard:version").Err(); err != nil {
		logger.Log.Warn("leaderboard cache invalidation failed", zap.Error(err))
	}
}

// GetLeaderboard 排名读取，热门页走Redis缓存
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, sort repository.LeaderboardSort, filter repository.LeaderboardFilter, page, limit int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if !sort.Valid() {
		sort = repository.SortByTime
	}

	cacheKey := ""
	if s.RDB != nil {
		cacheKey = fmt.Sprintf("leaderboard:%d:%s:%s:%s:%d:%d",
			s.cacheVersion(ctx), sort, filter.Difficulty, filter.PieceShape, page, limit)
		if raw, err := s.RDB.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached LeaderboardPage
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}

	entries, total, err := s.Repo.FindRanked(sort, filter, page, limit)
	if err != nil {
		return nil, err
	}

	result := &LeaderboardPage{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}

	if cacheKey != "" {
		if raw, err := json.Marshal(result); err == nil {
			s.RDB.Set(ctx, cacheKey, raw, leaderboardCacheTTL)
		}
	}
	return result, nil
}

// GetUserRank 按同样的排序和筛选算出调用者最好条目的名次
func (s *LeaderboardService) GetUserRank(sort repository.LeaderboardSort, filter repository.LeaderboardFilter, userID uint) (*UserRank, error) {
	if !sort.Valid() {
		sort = repository.SortByTime
	}

	entry, err := s.Repo.FindBestForUser(sort, filter, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &UserRank{Rank: 0, Entry: nil}, nil
	}
	if err != nil {
		return nil, err
	}

	rank, err := s.Repo.RankOf(sort, filter, entry)
	if err != nil {
		return nil, err
	}
	return &UserRank{Rank: rank, Entry: entry}, nil
}
