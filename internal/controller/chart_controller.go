package controller

import (
	"errors"
	"strconv"

	"nutriquiz_backend/internal/service"
	"nutriquiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChartController struct {
	Service *service.ChartService
}

func NewChartController(svc *service.ChartService) *ChartController {
	return &ChartController{Service: svc}
}

// @Summary 新增热量图表（图片必传）
// @Tags 图表管理
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param value formData int true "热量档位（1600-3600）"
// @Param description formData string false "描述"
// @Param image formData file true "图表图片"
// @Success 201 {object} util.Response
// @Router /api/charts [post]
func (c *ChartController) AddChart(ctx *gin.Context) {
	valueStr := ctx.PostForm("value")
	value, err := strconv.Atoi(valueStr)
	if err != nil || value == 0 {
		util.BadRequest(ctx, "value is required")
		return
	}

	image, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image is required")
		return
	}

	chart, err := c.Service.CreateChart(ctx.Request.Context(), value, ctx.PostForm("description"), image)
	switch {
	case errors.Is(err, util.ErrChartDuplicate):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Created(ctx, chart)
	}
}

// @Summary 图表列表
// @Tags 图表管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/charts [get]
func (c *ChartController) ListCharts(ctx *gin.Context) {
	charts, err := c.Service.ListCharts()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, charts)
}

// @Summary 更新图表（图片可选）
// @Tags 图表管理
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "图表ID"
// @Success 200 {object} util.Response
// @Router /api/charts/{id} [patch]
func (c *ChartController) UpdateChart(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var value *int
	if v := ctx.PostForm("value"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			util.BadRequest(ctx, "invalid value")
			return
		}
		value = &parsed
	}
	var description *string
	if d, ok := ctx.GetPostForm("description"); ok {
		description = &d
	}

	// 图片可选，没传就只改元数据
	image, err := ctx.FormFile("image")
	if err != nil {
		image = nil
	}

	chart, err := c.Service.UpdateChart(ctx.Request.Context(), uint(id), value, description, image)
	switch {
	case errors.Is(err, util.ErrChartNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrChartDuplicate):
		util.Conflict(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, chart)
	}
}

// @Summary 删除图表
// @Tags 图表管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "图表ID"
// @Success 200 {object} util.Response
// @Router /api/charts/{id} [delete]
func (c *ChartController) DeleteChart(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	err = c.Service.DeleteChart(ctx.Request.Context(), uint(id))
	switch {
	case errors.Is(err, util.ErrChartNotFound):
		util.NotFound(ctx, err.Error())
	case err != nil:
		util.LogInternalError(ctx, err)
	default:
		util.Success(ctx, gin.H{"deleted": id})
	}
}
