package util

import (
	"crypto/rand"
	"math/big"
)

const (
	RoomCodeLength   = 8
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultCodeAttempts 房间码分配的重试上限。真正的唯一性要靠
	// 存储层对非终态房间的部分唯一约束兜底，这里只是缓解碰撞。
	DefaultCodeAttempts = 10
)

// GenerateRoomCode 生成一个 [A-Z0-9] 的8位房间码
func GenerateRoomCode() string {
	buf := make([]byte, RoomCodeLength)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 不可用基本意味着进程环境坏了
			panic(err)
		}
		buf[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(buf)
}

// AllocateRoomCode 反复生成直到拿到一个未被占用的码。
// taken 由存储层提供，在同一事务里检查非终态房间。
func AllocateRoomCode(generate func() string, taken func(code string) (bool, error), attempts int) (string, error) {
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}
	for i := 0; i < attempts; i++ {
		code := generate()
		inUse, err := taken(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrRoomCodeExhausted
}
