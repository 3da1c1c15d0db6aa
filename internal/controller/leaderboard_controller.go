package controller

import (
	"strconv"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/repository"
	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

func leaderboardQuery(ctx *gin.Context) (repository.LeaderboardSort, repository.LeaderboardFilter) {
	sort := repository.LeaderboardSort(ctx.DefaultQuery("sort", "time"))
	filter := repository.LeaderboardFilter{
		Difficulty: model.Difficulty(ctx.Query("difficulty")),
		PieceShape: ctx.Query("pieceShape"),
	}
	return sort, filter
}

// @Summary 排行榜
// @Tags 排行榜
// @Security BearerAuth
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	sort, filter := leaderboardQuery(ctx)
	if !sort.Valid() {
		util.BadRequest(ctx, "invalid sort key")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	result, err := c.LeaderboardService.GetLeaderboard(ctx.Request.Context(), sort, filter, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的名次
// @Tags 排行榜
// @Security BearerAuth
// @Router /api/leaderboard/me [get]
func (c *LeaderboardController) GetMyRank(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sort, filter := leaderboardQuery(ctx)
	if !sort.Valid() {
		util.BadRequest(ctx, "invalid sort key")
		return
	}

	rank, err := c.LeaderboardService.GetUserRank(sort, filter, claims.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, rank)
}
