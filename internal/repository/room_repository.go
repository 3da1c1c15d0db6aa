package repository

import (
	"puzzle_arena_backend/internal/model"

	"gorm.io/gorm"
)

type RoomRepository struct {
	DB *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{DB: db}
}

// FindActiveByCode 按房间码查非终态房间。码只在非终态房间中唯一。
func (r *RoomRepository) FindActiveByCode(db *gorm.DB, code string) (*model.Room, error) {
	var room model.Room
	err := db.Where("code = ? AND status NOT IN ?", code,
		[]model.RoomStatus{model.RoomFinished, model.RoomClosed}).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CodeTaken 检查房间码是否被某个非终态房间占用
func (r *RoomRepository) CodeTaken(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&model.Room{}).
		Where("code = ? AND status NOT IN ?", code,
			[]model.RoomStatus{model.RoomFinished, model.RoomClosed}).
		Count(&count).Error
	return count > 0, err
}

// FindPlayers 房间成员，按加入时间排序
func (r *RoomRepository) FindPlayers(db *gorm.DB, roomID string) ([]model.RoomPlayer, error) {
	var players []model.RoomPlayer
	err := db.Where("room_id = ?", roomID).
		Order("joined_at ASC, id ASC").
		Find(&players).Error
	return players, err
}

// FindPlayer 房间里的某个成员
func (r *RoomRepository) FindPlayer(db *gorm.DB, roomID string, userID uint) (*model.RoomPlayer, error) {
	var player model.RoomPlayer
	err := db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// UserInActiveRoom 用户是否已经在某个活跃房间里（一人同时只能在一个活跃房间）
func (r *RoomRepository) UserInActiveRoom(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.Model(&model.RoomPlayer{}).
		Joins("JOIN rooms ON rooms.id = room_players.room_id").
		Where("room_players.user_id = ? AND room_players.deleted_at IS NULL", userID).
		Where("rooms.status IN ?",
			[]model.RoomStatus{model.RoomWaiting, model.RoomReady, model.RoomPlaying}).
		Count(&count).Error
	return count > 0, err
}
