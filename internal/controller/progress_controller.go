package controller

import (
	"errors"
	"net/http"

	"emohub_backend/internal/service"
	"emohub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 进度快照
// @Description 当前用户的汇总进度（周/元素完成数、总体百分比、连续打卡）
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	snapshot, err := c.ProgressService.GetSnapshot(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSnapshotNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}

// @Summary 手动重算进度
// @Description 对账入口：从挑战与完成事件从头重建当前用户的进度快照
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progress/recompute [post]
func (c *ProgressController) Recompute(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ProgressService.Recompute(user.UserID); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "recompute failed, please retry")
		return
	}

	snapshot, err := c.ProgressService.GetSnapshot(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, snapshot)
}
