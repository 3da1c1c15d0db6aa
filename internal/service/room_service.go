package service

import (
	"errors"
	"sort"
	"time"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/util"
	"puzzle_arena_backend/pkg/logger"
	"puzzle_arena_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomService 多人房间的注册、就绪协调与结算
type RoomService struct {
	RoomRepo     *repository.RoomRepository
	RecordRepo   *repository.GameRecordRepository
	Economy      *EconomyService
	Achievements *AchievementService
	DB           *gorm.DB

	CodeAttempts int // 房间码分配重试上限
	MinPlayers   int
	MaxPlayers   int
}

func NewRoomService(
	roomRepo *repository.RoomRepository,
	recordRepo *repository.GameRecordRepository,
	economy *EconomyService,
	achievements *AchievementService,
	db *gorm.DB,
) *RoomService {
	return &RoomService{
		RoomRepo:     roomRepo,
		RecordRepo:   recordRepo,
		Economy:      economy,
		Achievements: achievements,
		DB:           db,
		CodeAttempts: util.DefaultCodeAttempts,
		MinPlayers:   2,
		MaxPlayers:   4,
	}
}

// PlayerView 房间视图里的一名玩家
type PlayerView struct {
	UserID         uint               `json:"userId"`
	Username       string             `json:"username"`
	Status         model.PlayerStatus `json:"status"`
	IsHost         bool               `json:"isHost"`
	CompletionTime *int               `json:"completionTime"`
	MovesCount     *int               `json:"movesCount"`
	Rank           *int               `json:"rank"`
	JoinedAt       time.Time          `json:"joinedAt"`
	ReadyAt        *time.Time         `json:"readyAt"`
	FinishedAt     *time.Time         `json:"finishedAt"`
}

// RoomView 对外返回的房间快照，玩家按加入时间排序
type RoomView struct {
	ID             string             `json:"id"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	HostUserID     uint               `json:"hostUserId"`
	MaxPlayers     int                `json:"maxPlayers"`
	CurrentPlayers int                `json:"currentPlayers"`
	Status         model.RoomStatus   `json:"status"`
	PuzzleConfig   model.PuzzleConfig `json:"puzzleConfig"`
	CreatedAt      time.Time          `json:"createdAt"`
	GameStartedAt  *time.Time         `json:"gameStartedAt"`
	GameFinishedAt *time.Time         `json:"gameFinishedAt"`
	Players        []PlayerView       `json:"players"`
}

func buildRoomView(room *model.Room, players []model.RoomPlayer) *RoomView {
	view := &RoomView{
		ID:             room.ID,
		Code:           room.Code,
		Name:           room.Name,
		HostUserID:     room.HostUserID,
		MaxPlayers:     room.MaxPlayers,
		CurrentPlayers: room.CurrentPlayers,
		Status:         room.Status,
		PuzzleConfig:   room.PuzzleConfig,
		CreatedAt:      room.CreatedAt,
		GameStartedAt:  room.GameStartedAt,
		GameFinishedAt: room.GameFinishedAt,
		Players:        make([]PlayerView, 0, len(players)),
	}
	for _, p := range players {
		view.Players = append(view.Players, PlayerView{
			UserID:         p.UserID,
			Username:       p.Username,
			Status:         p.Status,
			IsHost:         p.IsHost,
			CompletionTime: p.CompletionTime,
			MovesCount:     p.MovesCount,
			Rank:           p.Rank,
			JoinedAt:       p.JoinedAt,
			ReadyAt:        p.ReadyAt,
			FinishedAt:     p.FinishedAt,
		})
	}
	return view
}

func (s *RoomService) viewOf(tx *gorm.DB, room *model.Room) (*RoomView, error) {
	players, err := s.RoomRepo.FindPlayers(tx, room.ID)
	if err != nil {
		return nil, err
	}
	return buildRoomView(room, players), nil
}

// CreateRoom 建房：分配唯一房间码，房主自动成为第一名成员
func (s *RoomService) CreateRoom(hostID uint, hostName, name string, cfg model.PuzzleConfig, maxPlayers int) (*RoomView, error) {
	if maxPlayers < s.MinPlayers {
		maxPlayers = s.MinPlayers
	}
	if maxPlayers > s.MaxPlayers {
		maxPlayers = s.MaxPlayers
	}

	var view *RoomView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inRoom, err := s.RoomRepo.UserInActiveRoom(tx, hostID)
		if err != nil {
			return err
		}
		if inRoom {
			return util.ErrAlreadyInRoom
		}

		code, err := util.AllocateRoomCode(util.GenerateRoomCode, func(c string) (bool, error) {
			return s.RoomRepo.CodeTaken(tx, c)
		}, s.CodeAttempts)
		if err != nil {
			return err
		}

		room := &model.Room{
			Code:           code,
			Name:           name,
			HostUserID:     hostID,
			MaxPlayers:     maxPlayers,
			CurrentPlayers: 1,
			Status:         model.RoomWaiting,
			PuzzleConfig:   cfg,
		}
		if err := tx.Create(room).Error; err != nil {
			return err
		}

		host := &model.RoomPlayer{
			RoomID:   room.ID,
			UserID:   hostID,
			Username: hostName,
			Status:   model.PlayerJoined,
			IsHost:   true,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(host).Error; err != nil {
			return err
		}

		view, err = s.viewOf(tx, room)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("room created",
		zap.String("code", view.Code), zap.Uint("host", hostID))
	return view, nil
}

// JoinRoom 凭房间码加入等待中的房间
func (s *RoomService) JoinRoom(code string, userID uint, username string) (*RoomView, error) {
	var view *RoomView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.RoomRepo.FindActiveByCode(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if _, err := s.RoomRepo.FindPlayer(tx, room.ID, userID); err == nil {
			return util.ErrAlreadyJoined
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		inRoom, err := s.RoomRepo.UserInActiveRoom(tx, userID)
		if err != nil {
			return err
		}
		if inRoom {
			return util.ErrAlreadyInRoom
		}

		if room.Status != model.RoomWaiting {
			return util.ErrRoomNotJoinable
		}

		// 条件更新兼并发守卫：满员或状态变了就一个都改不到
		res := tx.Model(&model.Room{}).
			Where("id = ? AND status = ? AND current_players < max_players",
				room.ID, model.RoomWaiting).
			Update("current_players", gorm.Expr("current_players + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if room.CurrentPlayers >= room.MaxPlayers {
				return util.ErrRoomFull
			}
			return util.ErrRoomNotJoinable
		}

		player := &model.RoomPlayer{
			RoomID:   room.ID,
			UserID:   userID,
			Username: username,
			Status:   model.PlayerJoined,
			JoinedAt: time.Now(),
		}
		if err := tx.Create(player).Error; err != nil {
			return err
		}

		room.CurrentPlayers++
		view, err = s.viewOf(tx, room)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// LeaveRoom 离开房间。房主离开时房主身份转给最早加入的剩余玩家，
// 最后一人离开时房间关闭。
func (s *RoomService) LeaveRoom(code string, userID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.RoomRepo.FindActiveByCode(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		player, err := s.RoomRepo.FindPlayer(tx, room.ID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPlayerNotInRoom
		}
		if err != nil {
			return err
		}

		if room.Status == model.RoomPlaying {
			return util.ErrRoomNotWaiting
		}

		// 硬删除，留着软删行会挡住同一用户重新加入
		if err := tx.Unscoped().Delete(player).Error; err != nil {
			return err
		}

		remaining, err := s.RoomRepo.FindPlayers(tx, room.ID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"current_players": len(remaining),
		}

		if len(remaining) == 0 {
			updates["status"] = model.RoomClosed
		} else {
			if player.IsHost {
				// joinedAt 最早的顶上
				newHost := remaining[0]
				if err := tx.Model(&model.RoomPlayer{}).
					Where("id = ?", newHost.ID).
					Update("is_host", true).Error; err != nil {
					return err
				}
				updates["host_user_id"] = newHost.UserID
			}
			// 聚合的 ready 状态可能因人员变动失效
			if room.Status == model.RoomReady && !allReady(remaining, len(remaining) >= s.MinPlayers) {
				updates["status"] = model.RoomWaiting
			}
		}

		return tx.Model(&model.Room{}).Where("id = ?", room.ID).Updates(updates).Error
	})
}

func allReady(players []model.RoomPlayer, enough bool) bool {
	if !enough {
		return false
	}
	for _, p := range players {
		if p.Status != model.PlayerReady {
			return false
		}
	}
	return true
}

// SetReady 标记自己已就绪。所有人（含房主）都就绪且人数足够时，
// 房间进入 ready——纯展示性的聚合态，提示房主可以开局。
func (s *RoomService) SetReady(code string, userID uint) (*RoomView, error) {
	var view *RoomView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.RoomRepo.FindActiveByCode(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if room.Status != model.RoomWaiting && room.Status != model.RoomReady {
			return util.ErrRoomNotWaiting
		}

		player, err := s.RoomRepo.FindPlayer(tx, room.ID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPlayerNotInRoom
		}
		if err != nil {
			return err
		}

		now := time.Now()
		player.Status = model.PlayerReady
		player.ReadyAt = &now
		if err := tx.Save(player).Error; err != nil {
			return err
		}

		players, err := s.RoomRepo.FindPlayers(tx, room.ID)
		if err != nil {
			return err
		}

		if room.Status == model.RoomWaiting && allReady(players, len(players) >= s.MinPlayers) {
			room.Status = model.RoomReady
			if err := tx.Model(&model.Room{}).
				Where("id = ?", room.ID).
				Update("status", model.RoomReady).Error; err != nil {
				return err
			}
		}

		view = buildRoomView(room, players)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// StartGame 房主开局。要求人数足够且所有非房主玩家就绪；
// 房主自己不需要点就绪。
func (s *RoomService) StartGame(code string, hostID uint) (*RoomView, error) {
	var view *RoomView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.RoomRepo.FindActiveByCode(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if room.Status != model.RoomWaiting && room.Status != model.RoomReady {
			return util.ErrRoomNotWaiting
		}
		if room.HostUserID != hostID {
			return util.ErrNotHost
		}

		players, err := s.RoomRepo.FindPlayers(tx, room.ID)
		if err != nil {
			return err
		}
		if len(players) < s.MinPlayers {
			return util.ErrNotEnoughPlayers
		}
		for _, p := range players {
			if !p.IsHost && p.Status != model.PlayerReady {
				return util.ErrPlayersNotReady
			}
		}

		now := time.Now()
		// 条件更新，状态已被并发操作改掉时开局失败
		res := tx.Model(&model.Room{}).
			Where("id = ? AND status IN ?", room.ID,
				[]model.RoomStatus{model.RoomWaiting, model.RoomReady}).
			Updates(map[string]interface{}{
				"status":          model.RoomPlaying,
				"game_started_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrRoomNotWaiting
		}

		if err := tx.Model(&model.RoomPlayer{}).
			Where("room_id = ?", room.ID).
			Update("status", model.PlayerPlaying).Error; err != nil {
			return err
		}

		room.Status = model.RoomPlaying
		room.GameStartedAt = &now
		view, err = s.viewOf(tx, room)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("game started", zap.String("code", code))
	return view, nil
}

// FinishResult recordFinish 的返回：是否触发了结算，以及最新房间视图
type FinishResult struct {
	GameEnded bool              `json:"gameEnded"`
	Room      *RoomView         `json:"room"`
	Record    *model.GameRecord `json:"record,omitempty"`
}

// precedes a 是否严格先于 b：用时短者先，平手比步数，再平比完成时刻，
// 最后按行序兜底，保证全序、名次无并列。
func precedes(a, b *model.RoomPlayer) bool {
	at, bt := *a.CompletionTime, *b.CompletionTime
	if at != bt {
		return at < bt
	}
	am, bm := *a.MovesCount, *b.MovesCount
	if am != bm {
		return am < bm
	}
	if !a.FinishedAt.Equal(*b.FinishedAt) {
		return a.FinishedAt.Before(*b.FinishedAt)
	}
	return a.ID < b.ID
}

// RecordFinish 记录一名玩家完成。最后一名完成时触发结算：
// 排名、获胜者、GameRecord 存档、经济与成就入账。
func (s *RoomService) RecordFinish(code string, userID uint, completionTime, moves int) (*FinishResult, error) {
	result := &FinishResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.RoomRepo.FindActiveByCode(tx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if room.Status != model.RoomPlaying {
			return util.ErrRoomNotPlaying
		}

		player, err := s.RoomRepo.FindPlayer(tx, room.ID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPlayerNotInRoom
		}
		if err != nil {
			return err
		}
		if player.Status == model.PlayerFinished {
			return util.ErrAlreadyFinished
		}

		now := time.Now()
		player.Status = model.PlayerFinished
		player.CompletionTime = &completionTime
		player.MovesCount = &moves
		player.FinishedAt = &now
		if err := tx.Save(player).Error; err != nil {
			return err
		}

		players, err := s.RoomRepo.FindPlayers(tx, room.ID)
		if err != nil {
			return err
		}

		finished := 0
		for _, p := range players {
			if p.Status == model.PlayerFinished {
				finished++
			}
		}
		if finished < len(players) {
			result.Room = buildRoomView(room, players)
			return nil
		}

		// 全员完成。条件更新保证结算恰好执行一次：并发的两次
		// recordFinish 里只有把状态从 playing 改掉的那个会走到这里。
		res := tx.Model(&model.Room{}).
			Where("id = ? AND status = ?", room.ID, model.RoomPlaying).
			Updates(map[string]interface{}{
				"status":           model.RoomFinished,
				"game_finished_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result.Room = buildRoomView(room, players)
			return nil
		}

		room.Status = model.RoomFinished
		room.GameFinishedAt = &now

		record, err := s.settle(tx, room, players, now)
		if err != nil {
			return err
		}
		result.GameEnded = true
		result.Record = record

		players, err = s.RoomRepo.FindPlayers(tx, room.ID)
		if err != nil {
			return err
		}
		result.Room = buildRoomView(room, players)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.GameEnded {
		monitoring.GamesSettled.Inc()
		logger.Log.Info("game settled",
			zap.String("code", code),
			zap.Uint("winner", result.Record.WinnerUserID))
	}
	return result, nil
}

// settle 结算：名次 = 1 + 严格先于自己的人数，获胜者是第1名。
// 战绩快照写进 GameRecord，经济与成就同事务入账。
func (s *RoomService) settle(tx *gorm.DB, room *model.Room, players []model.RoomPlayer, finishedAt time.Time) (*model.GameRecord, error) {
	for i := range players {
		rank := 1
		for j := range players {
			if i != j && precedes(&players[j], &players[i]) {
				rank++
			}
		}
		players[i].Rank = &rank
		if err := tx.Model(&model.RoomPlayer{}).
			Where("id = ?", players[i].ID).
			Update("rank", rank).Error; err != nil {
			return nil, err
		}
	}

	ranked := make([]model.RoomPlayer, len(players))
	copy(ranked, players)
	sort.Slice(ranked, func(i, j int) bool { return *ranked[i].Rank < *ranked[j].Rank })
	winner := ranked[0]

	duration := 0
	startedAt := finishedAt
	if room.GameStartedAt != nil {
		startedAt = *room.GameStartedAt
		duration = int(finishedAt.Sub(startedAt) / time.Second)
	}

	record := &model.GameRecord{
		RoomID:              room.ID,
		RoomCode:            room.Code,
		TotalPlayers:        len(players),
		WinnerUserID:        winner.UserID,
		GameDurationSeconds: duration,
		PuzzleConfig:        room.PuzzleConfig,
		StartedAt:           startedAt,
		FinishedAt:          finishedAt,
	}
	for _, p := range ranked {
		record.Players = append(record.Players, model.GameRecordPlayer{
			UserID:         p.UserID,
			Username:       p.Username,
			Rank:           *p.Rank,
			CompletionTime: *p.CompletionTime,
			MovesCount:     *p.MovesCount,
		})
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}

	// 每名完成者入账经济与成就；获胜者额外推进胜场成就
	cfg := room.PuzzleConfig
	for _, p := range ranked {
		reward := ComputeRewards(cfg.Difficulty, cfg.TotalPieces(), *p.CompletionTime, *p.MovesCount)
		score := ComputeScore(cfg.Difficulty, cfg.TotalPieces(), *p.CompletionTime, *p.MovesCount)
		if _, err := s.Economy.ApplyToStats(tx, p.UserID, StatsDelta{
			Coins:      reward.Coins,
			Experience: reward.Experience,
			Score:      score,
			PlayTime:   int64(*p.CompletionTime),
			CountGame:  true,
		}); err != nil {
			return nil, err
		}

		deltas := []ProgressDelta{{Code: "social_player", Delta: 1}}
		if p.UserID == winner.UserID {
			deltas = append(deltas,
				ProgressDelta{Code: "first_victory", Delta: 1},
				ProgressDelta{Code: "race_winner_10", Delta: 1},
			)
		}
		if _, _, err := s.Achievements.applyBatchTx(tx, p.UserID, deltas); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// ResetRoom 把打完的房间整体归位，可以不重建直接再来一局
func (s *RoomService) ResetRoom(code string, userID uint) (*RoomView, error) {
	var view *RoomView
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var room model.Room
		err := tx.Where("code = ? AND status = ?", code, model.RoomFinished).
			Order("updated_at DESC").
			First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 没有打完的同码房间：在非终态房间上 reset 属于前置条件不满足
			if _, aerr := s.RoomRepo.FindActiveByCode(tx, code); aerr == nil {
				return util.ErrRoomNotFinished
			}
			return util.ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		if _, err := s.RoomRepo.FindPlayer(tx, room.ID, userID); errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPlayerNotInRoom
		} else if err != nil {
			return err
		}

		// finished 房间已让出房间码，码可能被新房间合法拿走；
		// 那种情况下复活旧房会造成同码双活跃房间
		taken, err := s.RoomRepo.CodeTaken(tx, code)
		if err != nil {
			return err
		}
		if taken {
			return util.ErrRoomCodeTaken
		}

		if err := tx.Model(&model.RoomPlayer{}).
			Where("room_id = ?", room.ID).
			Updates(map[string]interface{}{
				"status":          model.PlayerJoined,
				"completion_time": nil,
				"moves_count":     nil,
				"rank":            nil,
				"ready_at":        nil,
				"finished_at":     nil,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Room{}).
			Where("id = ?", room.ID).
			Updates(map[string]interface{}{
				"status":           model.RoomWaiting,
				"game_started_at":  nil,
				"game_finished_at": nil,
			}).Error; err != nil {
			return err
		}

		room.Status = model.RoomWaiting
		room.GameStartedAt = nil
		room.GameFinishedAt = nil
		view, err = s.viewOf(tx, &room)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetRoomByCode 活跃房间的当前视图，客户端轮询用
func (s *RoomService) GetRoomByCode(code string) (*RoomView, error) {
	room, err := s.RoomRepo.FindActiveByCode(s.DB, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.viewOf(s.DB, room)
}

// GetHistory 用户的多人对局历史
func (s *RoomService) GetHistory(userID uint, page, limit int) ([]model.GameRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return s.RecordRepo.FindByUser(userID, page, limit)
}
