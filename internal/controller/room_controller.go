package controller

import (
	"strconv"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	RoomService *service.RoomService
}

func NewRoomController(roomService *service.RoomService) *RoomController {
	return &RoomController{RoomService: roomService}
}

// CreateRoomRequest 建房请求
type CreateRoomRequest struct {
	Name         string             `json:"name" binding:"required,max=100"`
	MaxPlayers   int                `json:"maxPlayers" binding:"omitempty,min=2,max=4"`
	PuzzleConfig model.PuzzleConfig `json:"puzzleConfig" binding:"required"`
}

// @Summary 创建多人房间
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms [post]
func (c *RoomController) CreateRoom(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = 2
	}

	view, err := c.RoomService.CreateRoom(claims.UserID, claims.Username, req.Name, req.PuzzleConfig, req.MaxPlayers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// JoinRoomRequest 凭码加入
type JoinRoomRequest struct {
	Code string `json:"code" binding:"required,len=8"`
}

// @Summary 凭房间码加入房间
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/join [post]
func (c *RoomController) JoinRoom(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req JoinRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.RoomService.JoinRoom(req.Code, claims.UserID, claims.Username)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 房间当前状态（客户端轮询）
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code} [get]
func (c *RoomController) GetRoom(ctx *gin.Context) {
	view, err := c.RoomService.GetRoomByCode(ctx.Param("code"))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 离开房间
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code}/leave [post]
func (c *RoomController) LeaveRoom(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.RoomService.LeaveRoom(ctx.Param("code"), claims.UserID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"left": true})
}

// @Summary 标记就绪
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code}/ready [post]
func (c *RoomController) SetReady(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.RoomService.SetReady(ctx.Param("code"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 房主开局
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code}/start [post]
func (c *RoomController) StartGame(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.RoomService.StartGame(ctx.Param("code"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// FinishRequest 上报完成
type FinishRequest struct {
	CompletionTime int `json:"completionTime" binding:"required,min=1"`
	MovesCount     int `json:"movesCount" binding:"required,min=1"`
}

// @Summary 上报本局完成
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code}/finish [post]
func (c *RoomController) RecordFinish(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req FinishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.RoomService.RecordFinish(ctx.Param("code"), claims.UserID, req.CompletionTime, req.MovesCount)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 重置房间再来一局
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/{code}/reset [post]
func (c *RoomController) ResetRoom(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.RoomService.ResetRoom(ctx.Param("code"), claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 我的多人对局历史
// @Tags 多人竞速
// @Security BearerAuth
// @Router /api/rooms/history [get]
func (c *RoomController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	records, total, err := c.RoomService.GetHistory(claims.UserID, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  records,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
