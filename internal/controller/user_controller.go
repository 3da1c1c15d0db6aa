package controller

import (
	"strconv"

	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// @Summary 我的累计数据与等级进度
// @Tags 用户
// @Security BearerAuth
// @Router /api/user/stats [get]
func (c *UserController) GetStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.UserService.GetStats(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 经验排行前列玩家
// @Tags 用户
// @Security BearerAuth
// @Router /api/players/top [get]
func (c *UserController) GetTopPlayers(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	players, err := c.UserService.GetTopPlayers(limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, players)
}

// UpdateAvatarRequest 更新头像
type UpdateAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" binding:"required,url"`
}

// @Summary 更新头像
// @Tags 用户
// @Security BearerAuth
// @Router /api/user/avatar [put]
func (c *UserController) UpdateAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateAvatarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.UpdateAvatar(claims.UserID, req.AvatarURL); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"avatarUrl": req.AvatarURL})
}
