package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"Username"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"Email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"Disabled"`
	LastLogin time.Time `json:"LastLogin"`
}

func (User) TableName() string {
	return "users"
}

// UserStats 用户累计数据，每个用户一行。level 始终由 experience 推导。
type UserStats struct {
	BaseModel
	UserID         uint  `gorm:"uniqueIndex;not null" json:"userId"`
	Level          int   `gorm:"default:1" json:"level"`
	Experience     int   `gorm:"default:0" json:"experience"`
	Coins          int   `gorm:"default:0" json:"coins"`
	TotalScore     int   `gorm:"default:0" json:"totalScore"`
	GamesCompleted int   `gorm:"default:0" json:"gamesCompleted"`
	TotalPlayTime  int64 `gorm:"default:0" json:"totalPlayTime"` // 秒
}

func (UserStats) TableName() string {
	return "user_stats"
}
