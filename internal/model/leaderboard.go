package model

// LeaderboardEntry 榜单条目，只追加不修改。只有打破个人纪录或
// 得分超过阈值的单人对局才会入榜，所以榜单是稀疏的。
type LeaderboardEntry struct {
	BaseModel
	UserID         uint       `gorm:"index;not null" json:"userId"`
	Username       string     `gorm:"size:100" json:"username"`
	Difficulty     Difficulty `gorm:"size:20;index" json:"difficulty"`
	PieceShape     string     `gorm:"size:20;index" json:"pieceShape"`
	TotalPieces    int        `json:"totalPieces"`
	CompletionTime int        `gorm:"index" json:"completionTime"`
	MovesCount     int        `json:"movesCount"`
	Score          int        `gorm:"index" json:"score"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
