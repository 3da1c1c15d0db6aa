package util

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateRoomCode()
		if len(code) != RoomCodeLength {
			t.Fatalf("expected %d chars, got %q", RoomCodeLength, code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(roomCodeAlphabet, ch) {
				t.Fatalf("unexpected character %q in code %q", ch, code)
			}
		}
		seen[code] = true
	}
	// 100次里全部碰撞的概率可以忽略
	if len(seen) < 2 {
		t.Fatal("generator produced a single code 100 times")
	}
}

func TestAllocateRoomCode(t *testing.T) {
	t.Run("first free code wins", func(t *testing.T) {
		codes := []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC"}
		i := 0
		generate := func() string {
			code := codes[i]
			i++
			return code
		}
		taken := func(code string) (bool, error) {
			return code != "CCCCCCCC", nil
		}

		code, err := AllocateRoomCode(generate, taken, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != "CCCCCCCC" {
			t.Fatalf("expected CCCCCCCC, got %q", code)
		}
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		generate := func() string { return "TAKEN000" }
		taken := func(string) (bool, error) { return true, nil }

		_, err := AllocateRoomCode(generate, taken, 3)
		if !errors.Is(err, ErrRoomCodeExhausted) {
			t.Fatalf("expected ErrRoomCodeExhausted, got %v", err)
		}
	})

	t.Run("storage error propagates", func(t *testing.T) {
		boom := errors.New("boom")
		generate := func() string { return "AAAAAAAA" }
		taken := func(string) (bool, error) { return false, boom }

		_, err := AllocateRoomCode(generate, taken, 3)
		if !errors.Is(err, boom) {
			t.Fatalf("expected storage error, got %v", err)
		}
	})

	t.Run("non-positive attempts fall back to default", func(t *testing.T) {
		calls := 0
		generate := func() string {
			calls++
			return "TAKEN000"
		}
		taken := func(string) (bool, error) { return true, nil }

		_, err := AllocateRoomCode(generate, taken, 0)
		if !errors.Is(err, ErrRoomCodeExhausted) {
			t.Fatalf("expected ErrRoomCodeExhausted, got %v", err)
		}
		if calls != DefaultCodeAttempts {
			t.Fatalf("expected %d attempts, got %d", DefaultCodeAttempts, calls)
		}
	})
}
