package controller

import (
	"errors"

	"nutriquiz_backend/internal/service"
	"nutriquiz_backend/internal/util"
	"nutriquiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	Service *service.ReportService
}

func NewReportController(svc *service.ReportService) *ReportController {
	return &ReportController{Service: svc}
}

// @Summary 获取测评报告
// @Tags 测评
// @Produce json
// @Param id path string true "会话ID（须已完成）"
// @Success 200 {object} util.Response
// @Router /api/quiz/report/{id} [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	id := ctx.Param("id")

	report, err := c.Service.BuildReport(id)
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx, "Session not found")
	case err != nil:
		// 含图表档位缺配置的情况：参考数据不完整是部署缺陷，硬失败
		util.LogInternalError(ctx, err)
	default:
		monitoring.ReportCounter.Inc()
		util.Success(ctx, report)
	}
}
