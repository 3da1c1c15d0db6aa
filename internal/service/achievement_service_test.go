package service

import (
	"errors"
	"testing"

	"puzzle_arena_backend/internal/util"
)

func TestApplyProgress(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "alice")

	t.Run("accumulates below max", func(t *testing.T) {
		outcome, err := env.achievements.ApplyProgress(user.ID, "puzzles_10", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Progress.Progress != 3 || outcome.Unlocked {
			t.Fatalf("expected progress 3 locked, got %+v", outcome)
		}
	})

	t.Run("caps at max and unlocks once", func(t *testing.T) {
		outcome, err := env.achievements.ApplyProgress(user.ID, "puzzles_10", 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Progress.Progress != 10 {
			t.Errorf("progress should cap at 10, got %d", outcome.Progress.Progress)
		}
		if !outcome.Unlocked {
			t.Error("reaching max should unlock")
		}
		if outcome.Progress.UnlockedAt == nil {
			t.Error("unlock timestamp missing")
		}

		// 解锁发奖：puzzles_10 奖励 50金币 80经验
		stats := statsOf(t, env.db, user.ID)
		if stats.Coins != 50 || stats.Experience != 80 {
			t.Errorf("reward not credited: coins=%d exp=%d", stats.Coins, stats.Experience)
		}
	})

	t.Run("repeat after unlock is a no-op", func(t *testing.T) {
		outcome, err := env.achievements.ApplyProgress(user.ID, "puzzles_10", 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.AlreadyUnlocked || outcome.Unlocked {
			t.Fatalf("expected already-unlocked no-op, got %+v", outcome)
		}

		// 奖励绝不发第二次
		stats := statsOf(t, env.db, user.ID)
		if stats.Coins != 50 || stats.Experience != 80 {
			t.Errorf("reward credited twice: coins=%d exp=%d", stats.Coins, stats.Experience)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := env.achievements.ApplyProgress(user.ID, "no_such_badge", 1)
		if !errors.Is(err, util.ErrAchievementNotFound) {
			t.Fatalf("expected ErrAchievementNotFound, got %v", err)
		}
	})

	t.Run("non-positive delta counts as one", func(t *testing.T) {
		outcome, err := env.achievements.ApplyProgress(user.ID, "puzzles_50", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Progress.Progress != 1 {
			t.Fatalf("expected progress 1, got %d", outcome.Progress.Progress)
		}
	})
}

func TestApplyBatch(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "bob")

	// first_puzzle 上限1会直接解锁；puzzles_10 只是推进；未知码被跳过
	unlocked, updated, err := env.achievements.ApplyBatch(user.ID, []ProgressDelta{
		{Code: "first_puzzle", Delta: 1},
		{Code: "puzzles_10", Delta: 1},
		{Code: "bogus_code", Delta: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(unlocked) != 1 || unlocked[0].Achievement.Code != "first_puzzle" {
		t.Fatalf("expected first_puzzle unlocked, got %+v", unlocked)
	}
	if len(updated) != 1 || updated[0].Achievement.Code != "puzzles_10" {
		t.Fatalf("expected puzzles_10 updated, got %+v", updated)
	}

	// 已解锁的成就在后续批次里被静默跳过
	unlocked, updated, err = env.achievements.ApplyBatch(user.ID, []ProgressDelta{
		{Code: "first_puzzle", Delta: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(unlocked) != 0 || len(updated) != 0 {
		t.Fatalf("already-unlocked should be skipped, got %d/%d", len(unlocked), len(updated))
	}
}

func TestGetUserAchievements(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env.db, "carol")

	if _, err := env.achievements.ApplyProgress(user.ID, "puzzles_10", 4); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	views, err := env.achievements.GetUserAchievements(user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 目录播种了10个成就，没进度的也要出现在列表里
	if len(views) != 10 {
		t.Fatalf("expected full catalog of 10, got %d", len(views))
	}

	var found bool
	for _, v := range views {
		switch v.Code {
		case "puzzles_10":
			found = true
			if v.Progress != 4 || v.IsUnlocked {
				t.Errorf("puzzles_10 progress wrong: %+v", v)
			}
		case "first_puzzle":
			if v.Progress != 0 || v.IsUnlocked {
				t.Errorf("untouched achievement should be zero: %+v", v)
			}
		}
	}
	if !found {
		t.Fatal("puzzles_10 missing from catalog view")
	}
}
