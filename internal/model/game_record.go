package model

import (
	"time"
)

// GameRecord 一局已结束多人对局的不可变存档，在最后一名玩家完成时创建一次
type GameRecord struct {
	BaseModel
	RoomID              string       `gorm:"type:varchar(36);index;not null" json:"roomId"`
	RoomCode            string       `gorm:"size:8;index" json:"roomCode"`
	TotalPlayers        int          `gorm:"not null" json:"totalPlayers"`
	WinnerUserID        uint         `gorm:"index" json:"winnerUserId"`
	GameDurationSeconds int          `json:"gameDurationSeconds"`
	PuzzleConfig        PuzzleConfig `gorm:"embedded" json:"puzzleConfig"`
	StartedAt           time.Time    `json:"startedAt"`
	FinishedAt          time.Time    `json:"finishedAt"`

	Players []GameRecordPlayer `gorm:"foreignKey:GameRecordID" json:"players,omitempty"`
}

func (GameRecord) TableName() string {
	return "game_records"
}

// GameRecordPlayer 存档里每名玩家的战绩快照。房间 reset 后会清空
// RoomPlayer 上的单局字段，历史查询只依赖这里。
type GameRecordPlayer struct {
	BaseModel
	GameRecordID   uint   `gorm:"index;not null" json:"-"`
	UserID         uint   `gorm:"index;not null" json:"userId"`
	Username       string `gorm:"size:100" json:"username"`
	Rank           int    `json:"rank"`
	CompletionTime int    `json:"completionTime"`
	MovesCount     int    `json:"movesCount"`
}

func (GameRecordPlayer) TableName() string {
	return "game_record_players"
}
