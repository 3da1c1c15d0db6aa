package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{ErrRoomNotFound, KindNotFound},
		{ErrUserNotFound, KindNotFound},
		{ErrRoomFull, KindConflict},
		{ErrAlreadyJoined, KindConflict},
		{ErrRoomCodeTaken, KindConflict},
		{ErrNotHost, KindPreconditionFailed},
		{ErrAlreadyFinished, KindPreconditionFailed},
		{ErrStatsMissing, KindInvariantViolation},
		{ErrStorageUnavailable, KindStorageUnavailable},
		{errors.New("anything else"), KindInternal},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.kind {
			t.Errorf("KindOf(%v) = %d, want %d", c.err, got, c.kind)
		}
	}

	// 包装过的错误也能判别
	wrapped := fmt.Errorf("join failed: %w", ErrRoomFull)
	if KindOf(wrapped) != KindConflict {
		t.Error("wrapped sentinel should keep its kind")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{ErrRoomNotFound, http.StatusNotFound},
		{ErrRoomFull, http.StatusConflict},
		{ErrPlayersNotReady, http.StatusUnprocessableEntity},
		{ErrStatsMissing, http.StatusInternalServerError},
		{ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
	}
}
