package controller

import (
	"errors"
	"net/http"
	"strconv"

	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/service"
	"nutriquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary 获取或创建测评会话
// @Tags 测评
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/session/{id} [get]
func (c *QuizController) GetSession(ctx *gin.Context) {
	id := ctx.Param("id")

	session, err := c.Service.GetOrCreateSession(id, util.CallerUserID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 删除测评会话
// @Tags 测评
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/quiz/session/{id} [delete]
func (c *QuizController) DeleteSession(ctx *gin.Context) {
	id := ctx.Param("id")

	err := c.Service.DeleteSession(id, util.CallerUserID(ctx))
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx, "Session not found")
	case errors.Is(err, util.ErrNotSessionOwner):
		util.Forbidden(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, nil)
	}
}

// @Summary 获取环节题目列表
// @Tags 测评
// @Produce json
// @Param section query string true "环节（BASIC/GOAL_SELECT/GOALS/LIFESTYLE）"
// @Param goal query string false "目标类别，GOALS 环节必填"
// @Success 200 {object} util.Response
// @Router /api/quiz/questions [get]
func (c *QuizController) GetQuestions(ctx *gin.Context) {
	section := model.Section(ctx.Query("section"))
	if section == "" {
		util.BadRequest(ctx, "section is required")
		return
	}
	goal := ctx.Query("goal")

	questions, err := c.Service.ListQuestions(ctx.Request.Context(), section, goal)
	if errors.Is(err, util.ErrGoalRequired) {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, questions)
}

// @Summary 同步测评进度
// @Tags 测评
// @Accept json
// @Produce json
// @Param body body service.SyncRequest true "进度数据"
// @Success 200 {object} util.Response
// @Router /api/quiz/sync [post]
func (c *QuizController) SyncProgress(ctx *gin.Context) {
	var req service.SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Service.SyncProgress(req, util.CallerUserID(ctx))
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx, "Session expired")
	case errors.Is(err, util.ErrUnknownSection):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSectionRegression):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, session)
	}
}

// @Summary 获取当前用户最近完成的测评会话
// @Tags 测评
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/quiz/user/session [get]
func (c *QuizController) GetUserSession(ctx *gin.Context) {
	callerID := util.CallerUserID(ctx)
	if callerID == nil {
		util.Success(ctx, nil)
		return
	}

	session, err := c.Service.GetUserCompletedSession(*callerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// @Summary 管理端：分页查看已完成的测评
// @Tags 测评
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/quiz/admin/reports [get]
func (c *QuizController) ListCompletedSessions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	sessions, total, err := c.Service.ListCompletedSessions(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: sessions, Total: total, Page: page, Limit: limit})
}
