package service

import (
	"context"
	"testing"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
)

func TestQualifies(t *testing.T) {
	if !Qualifies(true, 0) {
		t.Error("new record always qualifies")
	}
	if !Qualifies(false, QualifyingScore+1) {
		t.Error("score above the bar qualifies")
	}
	if Qualifies(false, QualifyingScore) {
		t.Error("score at the bar does not qualify")
	}
}

func seedLeaderboard(t *testing.T, env *testEnv) {
	t.Helper()
	entries := []model.LeaderboardEntry{
		{UserID: 1, Username: "alice", Difficulty: model.DifficultyEasy, PieceShape: "square", CompletionTime: 100, MovesCount: 50, Score: 500},
		{UserID: 2, Username: "bob", Difficulty: model.DifficultyEasy, PieceShape: "square", CompletionTime: 120, MovesCount: 40, Score: 800},
		{UserID: 3, Username: "carol", Difficulty: model.DifficultyMedium, PieceShape: "square", CompletionTime: 90, MovesCount: 60, Score: 1200},
		{UserID: 4, Username: "dave", Difficulty: model.DifficultyEasy, PieceShape: "jigsaw", CompletionTime: 80, MovesCount: 45, Score: 300},
	}
	for i := range entries {
		if err := env.leaderboard.Append(env.db, &entries[i]); err != nil {
			t.Fatalf("seed entry %d: %v", i, err)
		}
	}
}

func TestGetLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	seedLeaderboard(t, env)
	ctx := context.Background()

	t.Run("sorted by time", func(t *testing.T) {
		page, err := env.leaderboard.GetLeaderboard(ctx, repository.SortByTime, repository.LeaderboardFilter{}, 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Total != 4 {
			t.Fatalf("total = %d, want 4", page.Total)
		}
		times := []int{80, 90, 100, 120}
		for i, e := range page.Entries {
			if e.CompletionTime != times[i] {
				t.Fatalf("position %d has time %d, want %d", i, e.CompletionTime, times[i])
			}
		}
	})

	t.Run("sorted by score descending", func(t *testing.T) {
		page, err := env.leaderboard.GetLeaderboard(ctx, repository.SortByScore, repository.LeaderboardFilter{}, 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Entries[0].Score != 1200 || page.Entries[3].Score != 300 {
			t.Fatalf("score order wrong: %+v", page.Entries)
		}
	})

	t.Run("filters compose", func(t *testing.T) {
		filter := repository.LeaderboardFilter{Difficulty: model.DifficultyEasy, PieceShape: "square"}
		page, err := env.leaderboard.GetLeaderboard(ctx, repository.SortByTime, filter, 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Total != 2 {
			t.Fatalf("total = %d, want 2", page.Total)
		}
		for _, e := range page.Entries {
			if e.Difficulty != model.DifficultyEasy || e.PieceShape != "square" {
				t.Fatalf("filter leaked: %+v", e)
			}
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := env.leaderboard.GetLeaderboard(ctx, repository.SortByTime, repository.LeaderboardFilter{}, 2, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Entries) != 2 || page.Entries[0].CompletionTime != 100 {
			t.Fatalf("second page wrong: %+v", page.Entries)
		}
	})

	t.Run("invalid sort falls back to time", func(t *testing.T) {
		page, err := env.leaderboard.GetLeaderboard(ctx, "bogus", repository.LeaderboardFilter{}, 1, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Entries[0].CompletionTime != 80 {
			t.Fatalf("fallback sort wrong: %+v", page.Entries[0])
		}
	})
}

func TestGetUserRank(t *testing.T) {
	env := newTestEnv(t)
	seedLeaderboard(t, env)
	filter := repository.LeaderboardFilter{Difficulty: model.DifficultyEasy, PieceShape: "square"}

	rank, err := env.leaderboard.GetUserRank(repository.SortByTime, filter, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// easy/square 下只有 alice(100s) 领先 bob(120s)
	if rank.Rank != 2 || rank.Entry == nil || rank.Entry.UserID != 2 {
		t.Fatalf("rank wrong: %+v", rank)
	}

	t.Run("ties break by insertion order", func(t *testing.T) {
		// 与 alice 完全同成绩但后写入，排在她后面
		dup := model.LeaderboardEntry{UserID: 9, Username: "zed", Difficulty: model.DifficultyEasy, PieceShape: "square", CompletionTime: 100, MovesCount: 50, Score: 500}
		if err := env.leaderboard.Append(env.db, &dup); err != nil {
			t.Fatalf("append: %v", err)
		}

		rank, err := env.leaderboard.GetUserRank(repository.SortByTime, filter, 9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rank.Rank != 2 {
			t.Fatalf("tied later entry should rank 2, got %d", rank.Rank)
		}

		rank, err = env.leaderboard.GetUserRank(repository.SortByTime, filter, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rank.Rank != 1 {
			t.Fatalf("earlier tied entry should keep rank 1, got %d", rank.Rank)
		}
	})

	t.Run("user without entries", func(t *testing.T) {
		rank, err := env.leaderboard.GetUserRank(repository.SortByTime, filter, 777)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rank.Rank != 0 || rank.Entry != nil {
			t.Fatalf("expected empty rank, got %+v", rank)
		}
	})
}
