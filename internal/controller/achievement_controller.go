package controller

import (
	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
}

func NewAchievementController(achievementService *service.AchievementService) *AchievementController {
	return &AchievementController{AchievementService: achievementService}
}

// @Summary 成就目录与我的进度
// @Tags 成就系统
// @Security BearerAuth
// @Router /api/achievements [get]
func (c *AchievementController) GetUserAchievements(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}
