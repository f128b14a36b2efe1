package controller

import (
	"errors"

	"emohub_backend/internal/service"
	"emohub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// @Summary 创建周挑战
// @Description 创建一个新的周主题挑战，可附带初始元素列表
// @Tags 挑战
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ChallengeRequest true "挑战内容"
// @Success 201 {object} util.Response
// @Router /api/challenges [post]
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.CreateChallenge(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, challenge)
}

// @Summary 挑战列表
// @Description 当前用户的全部挑战及其完成统计
// @Tags 挑战
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/challenges [get]
func (c *ChallengeController) ListChallenges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	challenges, err := c.ChallengeService.ListChallenges(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, challenges)
}

// @Summary 挑战详情
// @Description 单个挑战的元素列表和每个元素的完成状态
// @Tags 挑战
// @Produce json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Success 200 {object} util.Response
// @Router /api/challenges/{id} [get]
func (c *ChallengeController) GetChallenge(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.ChallengeService.GetChallenge(user.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

// @Summary 添加挑战元素
// @Description 向已有挑战追加一个元素并刷新挑战统计
// @Tags 挑战
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "挑战ID"
// @Param request body service.ElementRequest true "元素内容"
// @Success 201 {object} util.Response
// @Router /api/challenges/{id}/elements [post]
func (c *ChallengeController) AddElement(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ElementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	element, err := c.ChallengeService.AddElement(user.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, element)
}

// @Summary 切换元素完成状态
// @Description 未完成则记一次完成事件，已完成则删除事件；随后刷新统计和进度快照
// @Tags 挑战
// @Produce json
// @Security BearerAuth
// @Param id path int true "元素ID"
// @Success 200 {object} util.Response
// @Router /api/elements/{id}/toggle [post]
func (c *ChallengeController) ToggleElement(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	completed, err := c.ChallengeService.ToggleElementCompletion(user.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrElementNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"completed": completed})
}
