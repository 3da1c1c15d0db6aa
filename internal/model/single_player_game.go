package model

// Difficulty 拼图难度档位
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// SinglePlayerGame 单人完成的一局
type SinglePlayerGame struct {
	BaseModel
	UserID         uint       `gorm:"index;not null" json:"userId"`
	Difficulty     Difficulty `gorm:"size:20;index" json:"difficulty"`
	GridSize       int        `json:"gridSize"`
	TotalPieces    int        `json:"totalPieces"`
	PieceShape     string     `gorm:"size:20;index" json:"pieceShape"`
	ImageReference string     `gorm:"size:255" json:"imageReference"`
	CompletionTime int        `gorm:"not null" json:"completionTime"` // 秒
	MovesCount     int        `gorm:"not null" json:"movesCount"`
	Score          int        `json:"score"`
	CoinsEarned    int        `json:"coinsEarned"`
	ExpEarned      int        `json:"expEarned"`
	IsNewRecord    bool       `gorm:"default:false" json:"isNewRecord"`
}

func (SinglePlayerGame) TableName() string {
	return "single_player_games"
}
