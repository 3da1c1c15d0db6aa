package model

import (
	"time"
)

// Achievement 成就定义，不可变目录，迁移时播种
type Achievement struct {
	BaseModel
	Code             string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name             string `gorm:"size:100;not null" json:"name"`
	Description      string `gorm:"size:255" json:"description"`
	Category         string `gorm:"size:30;index" json:"category"` // progress, speed, efficiency, multiplayer
	Icon             string `gorm:"size:255" json:"icon"`
	MaxProgress      int    `gorm:"default:1" json:"maxProgress"`
	RewardCoins      int    `gorm:"default:0" json:"rewardCoins"`
	RewardExperience int    `gorm:"default:0" json:"rewardExperience"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement 用户的成就进度。progress 单调不减，封顶 MaxProgress；
// 解锁奖励只在 IsUnlocked 翻转为 true 的那一次发放。
type UserAchievement struct {
	BaseModel
	UserID        uint       `gorm:"not null;index;uniqueIndex:idx_user_achievement" json:"userId"`
	AchievementID uint       `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievementId"`
	Progress      int        `gorm:"default:0" json:"progress"`
	IsUnlocked    bool       `gorm:"default:false" json:"isUnlocked"`
	UnlockedAt    *time.Time `json:"unlockedAt"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
