package service

import (
	"testing"

	"puzzle_arena_backend/internal/model"
)

func TestCompleteGame(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "dora")
	cfg := easyConfig() // 3x3 = 9块

	settlement, err := env.game.CompleteGame(user.ID, user.Username, cfg, 170, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// easy 基础 10/15，效率 +5/+4，限时 +3/+3
	if settlement.Reward.Coins != 18 || settlement.Reward.Experience != 22 {
		t.Errorf("reward = %+v, want 18/22", settlement.Reward)
	}
	// 100 + 9*5 + (1000-170)/10 - (10-9)*2 = 226
	if settlement.Score != 226 {
		t.Errorf("score = %d, want 226", settlement.Score)
	}
	if !settlement.NewRecord {
		t.Error("first game should be a new record")
	}
	if !settlement.OnLeaderboard {
		t.Error("new record should reach the leaderboard")
	}

	// 这一局同时解锁 first_puzzle（+20金币 +30经验）
	var unlockedFirst bool
	for _, u := range settlement.Unlocked {
		if u.Achievement.Code == "first_puzzle" {
			unlockedFirst = true
		}
	}
	if !unlockedFirst {
		t.Error("first_puzzle should unlock on the first game")
	}

	stats := statsOf(t, env.db, user.ID)
	if stats.Coins != 38 || stats.Experience != 52 {
		t.Errorf("stats after game: coins=%d exp=%d, want 38/52", stats.Coins, stats.Experience)
	}
	if stats.GamesCompleted != 1 || stats.TotalScore != 226 || stats.TotalPlayTime != 170 {
		t.Errorf("aggregates wrong: %+v", stats)
	}

	t.Run("slower rerun is not a record", func(t *testing.T) {
		settlement, err := env.game.CompleteGame(user.ID, user.Username, cfg, 500, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if settlement.NewRecord {
			t.Error("slower game must not be a record")
		}
		// 低分且非纪录：榜单保持稀疏
		if settlement.OnLeaderboard {
			t.Error("low-score non-record should stay off the leaderboard")
		}
		if len(settlement.Unlocked) != 0 {
			t.Errorf("nothing should unlock: %+v", settlement.Unlocked)
		}

		var entries int64
		env.db.Model(&model.LeaderboardEntry{}).Count(&entries)
		if entries != 1 {
			t.Errorf("expected 1 leaderboard entry, got %d", entries)
		}
	})
}

func TestCompleteGameLevelUp(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "erin")

	// 差10经验升2级（门槛300）
	if err := env.db.Model(&model.UserStats{}).
		Where("user_id = ?", user.ID).
		Update("experience", 290).Error; err != nil {
		t.Fatalf("seed experience: %v", err)
	}

	settlement, err := env.game.CompleteGame(user.ID, user.Username, easyConfig(), 170, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settlement.LevelUp == nil || !settlement.LevelUp.LeveledUp {
		t.Fatalf("expected a level up, got %+v", settlement.LevelUp)
	}
	if settlement.LevelUp.NewLevel != 2 {
		t.Errorf("new level = %d, want 2", settlement.LevelUp.NewLevel)
	}

	// level 永远由 experience 推导
	stats := statsOf(t, env.db, user.ID)
	if stats.Level != LevelFromExp(stats.Experience) {
		t.Errorf("level %d inconsistent with experience %d", stats.Level, stats.Experience)
	}
}

func TestGetBest(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "finn")
	cfg := easyConfig()

	best, err := env.game.GetBest(user.ID, cfg.Difficulty, cfg.PieceShape)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best != nil {
		t.Fatalf("expected no best before any game, got %+v", best)
	}

	if _, err := env.game.CompleteGame(user.ID, user.Username, cfg, 300, 20); err != nil {
		t.Fatalf("first game: %v", err)
	}
	if _, err := env.game.CompleteGame(user.ID, user.Username, cfg, 200, 30); err != nil {
		t.Fatalf("second game: %v", err)
	}

	best, err = env.game.GetBest(user.ID, cfg.Difficulty, cfg.PieceShape)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best == nil || best.CompletionTime != 200 {
		t.Fatalf("expected 200s best, got %+v", best)
	}

	// 历史按时间倒序
	games, total, err := env.game.GetHistory(user.ID, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 || len(games) != 2 {
		t.Fatalf("expected 2 games, got total=%d len=%d", total, len(games))
	}
}
