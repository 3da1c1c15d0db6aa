package model

import (
	"time"
)

// RoomStatus 房间状态机
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "waiting"
	RoomReady    RoomStatus = "ready"
	RoomPlaying  RoomStatus = "playing"
	RoomFinished RoomStatus = "finished"
	RoomClosed   RoomStatus = "closed"
)

// roomTransitions 房间状态迁移表。finished -> waiting 对应 reset 重开一局。
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomWaiting:  {RoomReady, RoomPlaying, RoomClosed},
	RoomReady:    {RoomWaiting, RoomPlaying, RoomClosed},
	RoomPlaying:  {RoomFinished},
	RoomFinished: {RoomWaiting, RoomClosed},
	RoomClosed:   {},
}

func (s RoomStatus) CanTransition(to RoomStatus) bool {
	for _, next := range roomTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal 终态房间不再占用房间码，码可被复用
func (s RoomStatus) IsTerminal() bool {
	return s == RoomFinished || s == RoomClosed
}

// IsActive waiting/ready/playing 算作活跃：一个用户同时只能在一个活跃房间里
func (s RoomStatus) IsActive() bool {
	return s == RoomWaiting || s == RoomReady || s == RoomPlaying
}

// PlayerStatus 房间内玩家状态
type PlayerStatus string

const (
	PlayerJoined       PlayerStatus = "joined"
	PlayerReady        PlayerStatus = "ready"
	PlayerPlaying      PlayerStatus = "playing"
	PlayerFinished     PlayerStatus = "finished"
	PlayerDisconnected PlayerStatus = "disconnected" // 预留：断线检测上线后由心跳超时写入
)

// PuzzleConfig 拼图参数，入口处解析一次，核心内部不再传未定型的JSON
type PuzzleConfig struct {
	Difficulty     Difficulty `gorm:"size:20;column:difficulty" json:"difficulty" binding:"required,oneof=easy medium hard expert"`
	GridSize       int        `gorm:"column:grid_size" json:"gridSize" binding:"required,min=2,max=10"`
	PieceShape     string     `gorm:"size:20;column:piece_shape" json:"pieceShape" binding:"required,oneof=square jigsaw triangle"`
	ImageReference string     `gorm:"size:255;column:image_reference" json:"imageReference"`
}

// TotalPieces 网格边长换算成总块数
func (c PuzzleConfig) TotalPieces() int {
	return c.GridSize * c.GridSize
}

// Room 一局多人会话。code 在非终态房间中唯一，终态后可复用。
type Room struct {
	UUIDBase
	Code           string       `gorm:"size:8;index;not null" json:"code"`
	Name           string       `gorm:"size:100;not null" json:"name"`
	HostUserID     uint         `gorm:"index;not null" json:"hostUserId"`
	MaxPlayers     int          `gorm:"default:2" json:"maxPlayers"`
	CurrentPlayers int          `gorm:"default:0" json:"currentPlayers"`
	Status         RoomStatus   `gorm:"size:20;default:'waiting';index" json:"status"`
	PuzzleConfig   PuzzleConfig `gorm:"embedded" json:"puzzleConfig"`
	GameStartedAt  *time.Time   `json:"gameStartedAt"`
	GameFinishedAt *time.Time   `json:"gameFinishedAt"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomPlayer 玩家在某个房间里的成员关系，随房间删除级联清理
type RoomPlayer struct {
	BaseModel
	RoomID         string       `gorm:"type:varchar(36);index;not null;uniqueIndex:idx_room_user" json:"-"`
	UserID         uint         `gorm:"not null;index;uniqueIndex:idx_room_user" json:"userId"`
	Username       string       `gorm:"size:100;not null" json:"username"` // 加入时的快照
	Status         PlayerStatus `gorm:"size:20;default:'joined'" json:"status"`
	IsHost         bool         `gorm:"default:false" json:"isHost"`
	CompletionTime *int         `json:"completionTime"` // 秒
	MovesCount     *int         `json:"movesCount"`
	Rank           *int         `json:"rank"`
	JoinedAt       time.Time    `json:"joinedAt"`
	ReadyAt        *time.Time   `json:"readyAt"`
	FinishedAt     *time.Time   `json:"finishedAt"`
}

func (RoomPlayer) TableName() string {
	return "room_players"
}
