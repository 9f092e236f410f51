package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/api/handler"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
)

// RegisterRoutes 注册API路由
// 配置了API Key时业务路由走keyauth鉴权，健康检查始终开放
func RegisterRoutes(h *server.Hertz, cfg *config.Config, scoreHandler *handler.ScoreHandler, jobHandler *handler.JobHandler) {
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if len(cfg.Server.APIKeys) > 0 {
		validKeys := make(map[string]bool, len(cfg.Server.APIKeys))
		for _, key := range cfg.Server.APIKeys {
			validKeys[key] = true
		}
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return validKeys[key], nil
			}),
			// 缺失鉴权头和无效Key统一按401处理
			// 校验器拒绝时err为nil，不能直接取Error()
			keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
				msg := "invalid or missing api key"
				if err != nil {
					msg = err.Error()
				}
				ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": msg})
			}),
		))
	}

	// 简历上传与评分
	api.POST("/resumes/upload", scoreHandler.HandleUpload)
	api.GET("/resumes/:submission_uuid", scoreHandler.HandleGetSubmission)
	api.GET("/resumes/:submission_uuid/report", scoreHandler.HandleGetReport)
	api.GET("/resumes/:submission_uuid/file", scoreHandler.HandleGetResumeFile)
	api.POST("/scores", scoreHandler.HandleSyncScore)

	// 岗位管理
	api.POST("/jobs", jobHandler.HandleCreateJob)
	api.GET("/jobs/:job_id", jobHandler.HandleGetJob)
	api.PUT("/jobs/:job_id", jobHandler.HandleUpdateJob)
	api.GET("/jobs/:job_id/reports", jobHandler.HandleListJobReports)
}
