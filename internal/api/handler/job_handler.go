package handler

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/processor"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
)

// JobHandler 岗位管理相关的HTTP处理器
type JobHandler struct {
	jobService processor.JobService
}

// NewJobHandler 创建岗位处理器
func NewJobHandler(jobService processor.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// jobResponse 把模型转为对外响应，JSON技能列反序列化为数组
func jobResponse(job *models.Job) utils.H {
	var required, goodToHave, soft []string
	_ = json.Unmarshal(job.RequiredSkillsJSON, &required)
	_ = json.Unmarshal(job.GoodToHaveSkillsJSON, &goodToHave)
	_ = json.Unmarshal(job.SoftSkillsJSON, &soft)

	return utils.H{
		"job_id":                    job.JobID,
		"title":                     job.JobTitle,
		"department":                job.Department,
		"location":                  job.Location,
		"description":               job.JobDescriptionText,
		"required_skills":           required,
		"good_to_have_skills":       goodToHave,
		"soft_skills":               soft,
		"experience_text":           job.ExperienceText,
		"required_experience_years": job.RequiredExperienceYears,
		"status":                    job.Status,
		"created_at":                job.CreatedAt,
		"updated_at":                job.UpdatedAt,
	}
}

// HandleCreateJob 创建岗位
func (h *JobHandler) HandleCreateJob(c context.Context, ctx *app.RequestContext) {
	var input processor.JobInput
	if err := ctx.BindJSON(&input); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}

	job, err := h.jobService.CreateJob(c, &input)
	if err != nil {
		if errors.Is(err, processor.ErrDatabaseFailed) {
			logger.Error().Err(err).Msg("创建岗位失败")
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusCreated, jobResponse(job))
}

// HandleGetJob 查询岗位
func (h *JobHandler) HandleGetJob(c context.Context, ctx *app.RequestContext) {
	jobID := ctx.Param("job_id")

	job, err := h.jobService.GetJob(c, jobID)
	if err != nil {
		if errors.Is(err, processor.ErrJobNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "岗位不存在"})
			return
		}
		logger.Error().Err(err).Str("job_id", jobID).Msg("查询岗位失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, jobResponse(job))
}

// HandleUpdateJob 更新岗位并失效其要求缓存
func (h *JobHandler) HandleUpdateJob(c context.Context, ctx *app.RequestContext) {
	jobID := ctx.Param("job_id")

	var input processor.JobInput
	if err := ctx.BindJSON(&input); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}

	job, err := h.jobService.UpdateJob(c, jobID, &input)
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrJobNotFound):
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "岗位不存在"})
		case errors.Is(err, processor.ErrDatabaseFailed):
			logger.Error().Err(err).Str("job_id", jobID).Msg("更新岗位失败")
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		default:
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(consts.StatusOK, jobResponse(job))
}

// HandleListJobReports 按总分倒序列出岗位下的评分报告
func (h *JobHandler) HandleListJobReports(c context.Context, ctx *app.RequestContext) {
	jobID := ctx.Param("job_id")

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	reports, err := h.jobService.ListReportsForJob(c, jobID, limit, offset)
	if err != nil {
		if errors.Is(err, processor.ErrJobNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "岗位不存在"})
			return
		}
		logger.Error().Err(err).Str("job_id", jobID).Msg("查询岗位评分报告失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"job_id":  jobID,
		"count":   len(reports),
		"reports": reports,
	})
}
