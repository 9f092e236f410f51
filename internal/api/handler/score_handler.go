package handler

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/processor"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/scoring"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// ScoreHandler 简历上传与评分相关的HTTP处理器
type ScoreHandler struct {
	cfg          *config.Config
	storage      *storage.Storage
	scoreService processor.ScoreService
}

// NewScoreHandler 创建评分处理器
func NewScoreHandler(cfg *config.Config, storageManager *storage.Storage, scoreService processor.ScoreService) *ScoreHandler {
	return &ScoreHandler{
		cfg:          cfg,
		storage:      storageManager,
		scoreService: scoreService,
	}
}

// SyncScoreRequest 同步评分请求体
// job_id和job二选一，同时提供时job_id优先
type SyncScoreRequest struct {
	ResumeText string                `json:"resume_text"`
	JobID      string                `json:"job_id,omitempty"`
	Job        *types.JobRequirement `json:"job,omitempty"`
}

// HandleUpload 接收multipart简历上传，受理后进入异步评分流水线
func (h *ScoreHandler) HandleUpload(c context.Context, ctx *app.RequestContext) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
		return
	}

	targetJobID := ctx.PostForm("target_job_id")
	sourceChannel := ctx.PostForm("source_channel")
	if sourceChannel == "" {
		sourceChannel = "web_upload"
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	result, err := h.scoreService.HandleResumeUpload(c, &processor.UploadRequest{
		FileName:      fileHeader.Filename,
		FileSize:      fileHeader.Size,
		Reader:        file,
		TargetJobID:   targetJobID,
		SourceChannel: sourceChannel,
	})
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("简历上传受理失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	status := consts.StatusAccepted
	if result.Duplicate {
		status = consts.StatusOK
	}
	ctx.JSON(status, result)
}

// HandleSyncScore 同步评分：直接对一段简历文本评分并返回完整明细
func (h *ScoreHandler) HandleSyncScore(c context.Context, ctx *app.RequestContext) {
	var req SyncScoreRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
		return
	}

	var (
		breakdown *types.ScoreBreakdown
		err       error
	)
	switch {
	case req.JobID != "":
		breakdown, err = h.scoreService.ScoreAgainstJob(c, req.ResumeText, req.JobID)
	case req.Job != nil:
		breakdown, err = h.scoreService.ScoreWithRequirement(c, req.ResumeText, req.Job)
	default:
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "必须提供job_id或job"})
		return
	}

	if err != nil {
		var validationErr *scoring.ValidationError
		switch {
		case errors.As(err, &validationErr):
			ctx.JSON(consts.StatusBadRequest, utils.H{
				"error": validationErr.Error(),
				"field": validationErr.Field,
			})
		case errors.Is(err, processor.ErrJobNotFound):
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "岗位不存在"})
		default:
			logger.Error().Err(err).Msg("同步评分失败")
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(consts.StatusOK, breakdown)
}

// HandleGetReport 查询一次提交的评分报告
func (h *ScoreHandler) HandleGetReport(c context.Context, ctx *app.RequestContext) {
	submissionUUID := ctx.Param("submission_uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "submission_uuid不能为空"})
		return
	}

	view, err := h.scoreService.GetScoreReport(c, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "评分报告不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询评分报告失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, view)
}

// HandleGetResumeFile 生成原始简历文件的预签名下载URL
func (h *ScoreHandler) HandleGetResumeFile(c context.Context, ctx *app.RequestContext) {
	submissionUUID := ctx.Param("submission_uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "submission_uuid不能为空"})
		return
	}

	submission, err := h.storage.MySQL.GetResumeSubmission(c, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询提交记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	if submission.OriginalFilePathOSS == "" {
		ctx.JSON(consts.StatusNotFound, utils.H{"error": "原始文件不存在"})
		return
	}

	const urlExpiry = 15 * time.Minute
	url, err := h.storage.MinIO.GetPresignedURL(c, submission.OriginalFilePathOSS, urlExpiry)
	if err != nil {
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("生成预签名URL失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"url":                url,
		"expires_in_seconds": int(urlExpiry.Seconds()),
	})
}

// HandleGetSubmission 查询一次提交的处理状态
func (h *ScoreHandler) HandleGetSubmission(c context.Context, ctx *app.RequestContext) {
	submissionUUID := ctx.Param("submission_uuid")
	if submissionUUID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": "submission_uuid不能为空"})
		return
	}

	submission, err := h.storage.MySQL.GetResumeSubmission(c, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"error": "提交记录不存在"})
			return
		}
		logger.Error().Err(err).Str("submission_uuid", submissionUUID).Msg("查询提交记录失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}

	resp := utils.H{
		"submission_uuid":   submission.SubmissionUUID,
		"processing_status": submission.ProcessingStatus,
		"original_filename": submission.OriginalFilename,
		"source_channel":    submission.SourceChannel,
		"submitted_at":      submission.SubmissionTimestamp,
	}
	if submission.TargetJobID != nil {
		resp["target_job_id"] = *submission.TargetJobID
	}
	if submission.ErrorMessage != "" {
		resp["error_message"] = submission.ErrorMessage
	}
	ctx.JSON(consts.StatusOK, resp)
}
