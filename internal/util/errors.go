package util

import (
	"errors"
	"net/http"
)

// ErrorKind 错误类别，稳定判别值，贯穿 service -> controller
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindInvariantViolation
	KindStorageUnavailable
)

var (
	// NotFound
	ErrUserNotFound        = errors.New("用户不存在")
	ErrRoomNotFound        = errors.New("room not found")
	ErrPlayerNotInRoom     = errors.New("player is not a member of this room")
	ErrAchievementNotFound = errors.New("achievement not found")

	// Conflict
	ErrUsernameTaken      = errors.New("该用户名已被注册")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrRoomCodeExhausted  = errors.New("room code allocation exhausted")
	ErrRoomCodeTaken      = errors.New("room code is held by another active room")
	ErrAlreadyInRoom      = errors.New("user already in an active room")
	ErrAlreadyJoined      = errors.New("user already joined this room")
	ErrRoomFull           = errors.New("room is full")
	ErrRoomNotJoinable    = errors.New("room is not accepting players")
	ErrInvalidCredentials = errors.New("用户名或密码错误")

	// PreconditionFailed
	ErrNotHost          = errors.New("only the host can do this")
	ErrNotEnoughPlayers = errors.New("at least 2 players required")
	ErrPlayersNotReady  = errors.New("not all players are ready")
	ErrRoomNotWaiting   = errors.New("room is not in a waiting state")
	ErrRoomNotPlaying   = errors.New("room is not playing")
	ErrRoomNotFinished  = errors.New("room is not finished")
	ErrAlreadyFinished  = errors.New("player already finished")

	// InvariantViolation 数据完整性破坏，不重试
	ErrStatsMissing = errors.New("user stats row missing for existing user")

	// StorageUnavailable 存储层瞬时故障，由调用方决定是否重试
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var errorKinds = map[error]ErrorKind{
	ErrUserNotFound:        KindNotFound,
	ErrRoomNotFound:        KindNotFound,
	ErrPlayerNotInRoom:     KindNotFound,
	ErrAchievementNotFound: KindNotFound,

	ErrUsernameTaken:      KindConflict,
	ErrEmailRegistered:    KindConflict,
	ErrRoomCodeExhausted:  KindConflict,
	ErrRoomCodeTaken:      KindConflict,
	ErrAlreadyInRoom:      KindConflict,
	ErrAlreadyJoined:      KindConflict,
	ErrRoomFull:           KindConflict,
	ErrRoomNotJoinable:    KindConflict,
	ErrInvalidCredentials: KindConflict,

	ErrNotHost:          KindPreconditionFailed,
	ErrNotEnoughPlayers: KindPreconditionFailed,
	ErrPlayersNotReady:  KindPreconditionFailed,
	ErrRoomNotWaiting:   KindPreconditionFailed,
	ErrRoomNotPlaying:   KindPreconditionFailed,
	ErrRoomNotFinished:  KindPreconditionFailed,
	ErrAlreadyFinished:  KindPreconditionFailed,

	ErrStatsMissing:       KindInvariantViolation,
	ErrStorageUnavailable: KindStorageUnavailable,
}

// KindOf 返回错误的类别，未知错误按 Internal 处理
func KindOf(err error) ErrorKind {
	for sentinel, kind := range errorKinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// HTTPStatus 类别到HTTP状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case KindInvariantViolation:
		return http.StatusInternalServerError
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
