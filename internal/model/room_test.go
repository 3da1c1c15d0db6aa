package model

import "testing"

func TestRoomStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to RoomStatus
	}{
		{RoomWaiting, RoomReady},
		{RoomWaiting, RoomPlaying},
		{RoomWaiting, RoomClosed},
		{RoomReady, RoomWaiting},
		{RoomReady, RoomPlaying},
		{RoomPlaying, RoomFinished},
		{RoomFinished, RoomWaiting}, // reset 重开一局
		{RoomFinished, RoomClosed},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	forbidden := []struct {
		from, to RoomStatus
	}{
		{RoomWaiting, RoomFinished},
		{RoomPlaying, RoomWaiting},
		{RoomPlaying, RoomClosed},
		{RoomClosed, RoomWaiting},
		{RoomClosed, RoomPlaying},
		{RoomFinished, RoomPlaying},
	}
	for _, c := range forbidden {
		if c.from.CanTransition(c.to) {
			t.Errorf("%s -> %s must be forbidden", c.from, c.to)
		}
	}
}

func TestRoomStatusClassification(t *testing.T) {
	for _, s := range []RoomStatus{RoomWaiting, RoomReady, RoomPlaying} {
		if !s.IsActive() || s.IsTerminal() {
			t.Errorf("%s should be active and non-terminal", s)
		}
	}
	for _, s := range []RoomStatus{RoomFinished, RoomClosed} {
		if s.IsActive() || !s.IsTerminal() {
			t.Errorf("%s should be terminal and inactive", s)
		}
	}
}

func TestTotalPieces(t *testing.T) {
	cfg := PuzzleConfig{GridSize: 4}
	if cfg.TotalPieces() != 16 {
		t.Fatalf("4x4 = %d, want 16", cfg.TotalPieces())
	}
}
