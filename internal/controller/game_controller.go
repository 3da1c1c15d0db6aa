package controller

import (
	"path/filepath"
	"strconv"

	"puzzle_arena_backend/internal/model"
	"puzzle_arena_backend/internal/service"
	"puzzle_arena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	GameService    *service.GameService
	StorageService *service.StorageService
}

func NewGameController(gameService *service.GameService, storageService *service.StorageService) *GameController {
	return &GameController{GameService: gameService, StorageService: storageService}
}

// CompleteGameRequest 单人完成上报
type CompleteGameRequest struct {
	PuzzleConfig   model.PuzzleConfig `json:"puzzleConfig" binding:"required"`
	CompletionTime int                `json:"completionTime" binding:"required,min=1"`
	MovesCount     int                `json:"movesCount" binding:"required,min=1"`
}

// @Summary 上报单人拼图完成并结算
// @Tags 单人对局
// @Security BearerAuth
// @Router /api/games/complete [post]
func (c *GameController) CompleteGame(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteGameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	settlement, err := c.GameService.CompleteGame(claims.UserID, claims.Username, req.PuzzleConfig, req.CompletionTime, req.MovesCount)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, settlement)
}

// @Summary 我的单人对局历史
// @Tags 单人对局
// @Security BearerAuth
// @Router /api/games/history [get]
func (c *GameController) GetHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	games, total, err := c.GameService.GetHistory(claims.UserID, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  games,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 我的最好成绩
// @Tags 单人对局
// @Security BearerAuth
// @Router /api/games/best [get]
func (c *GameController) GetBest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	difficulty := model.Difficulty(ctx.DefaultQuery("difficulty", "easy"))
	if !difficulty.Valid() {
		util.BadRequest(ctx, "invalid difficulty")
		return
	}
	pieceShape := ctx.DefaultQuery("pieceShape", "square")

	best, err := c.GameService.GetBest(claims.UserID, difficulty, pieceShape)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, best)
}

// @Summary 上传拼图图片
// @Tags 单人对局
// @Security BearerAuth
// @Router /api/puzzles/image [post]
func (c *GameController) UploadPuzzleImage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := model.GenerateUUID() + filepath.Ext(file.Filename)
	url, err := c.StorageService.UploadPuzzleImage(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"imageReference": url})
}
