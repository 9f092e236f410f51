package processor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/constants"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/parser"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/scoring"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/tracing"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// 组件初始化检查错误
var (
	ErrStorageNotInit   = errors.New("存储未初始化")
	ErrExtractorNotInit = errors.New("提取器未初始化")
)

var tracer = otel.Tracer("processor")

// 允许的上传文件扩展名
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// UploadRequest 简历上传请求
type UploadRequest struct {
	FileName      string
	FileSize      int64
	Reader        io.Reader
	TargetJobID   string
	SourceChannel string
}

// UploadResult 简历上传结果
type UploadResult struct {
	SubmissionUUID string `json:"submission_uuid"`
	Status         string `json:"status"`
	Duplicate      bool   `json:"duplicate"`
	DuplicateOf    string `json:"duplicate_of,omitempty"`
}

// ScoreReportView 对外返回的评分报告
type ScoreReportView struct {
	SubmissionUUID string               `json:"submission_uuid"`
	JobID          string               `json:"job_id"`
	Breakdown      types.ScoreBreakdown `json:"breakdown"`
	EngineVersion  string               `json:"engine_version"`
	ScoredAt       time.Time            `json:"scored_at"`
}

// ScoreService 简历评分服务接口
type ScoreService interface {
	// HandleResumeUpload 接收上传，落库并触发异步评分流水线
	HandleResumeUpload(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// ProcessUploadedResume 消费上传消息：提取文本、去重、评分、落库
	ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error

	// ScoreAgainstJob 同步评分：对给定岗位直接评分一段简历文本
	ScoreAgainstJob(ctx context.Context, resumeText string, jobID string) (*types.ScoreBreakdown, error)

	// ScoreWithRequirement 同步评分：调用方自带完整岗位要求
	ScoreWithRequirement(ctx context.Context, resumeText string, job *types.JobRequirement) (*types.ScoreBreakdown, error)

	// GetScoreReport 查询评分报告，优先走Redis缓存
	GetScoreReport(ctx context.Context, submissionUUID string) (*ScoreReportView, error)
}

type scoreServiceImpl struct {
	cfg       *config.Config
	storage   *storage.Storage
	extractor parser.TextExtractor
	engine    *scoring.Engine
}

// ServiceOption 服务配置选项，主要用于测试注入
type ServiceOption func(*scoreServiceImpl)

// WithExtractor 注入自定义文本提取器
func WithExtractor(extractor parser.TextExtractor) ServiceOption {
	return func(s *scoreServiceImpl) {
		s.extractor = extractor
	}
}

// WithEngine 注入自定义评分引擎
func WithEngine(engine *scoring.Engine) ServiceOption {
	return func(s *scoreServiceImpl) {
		s.engine = engine
	}
}

// NewScoreService 创建评分服务
func NewScoreService(ctx context.Context, cfg *config.Config, storageManager *storage.Storage, options ...ServiceOption) (ScoreService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if storageManager == nil {
		return nil, ErrStorageNotInit
	}

	svc := &scoreServiceImpl{
		cfg:     cfg,
		storage: storageManager,
		engine:  scoring.NewEngine(),
	}

	for _, option := range options {
		option(svc)
	}

	if svc.extractor == nil {
		extractor, err := parser.NewTextExtractor(ctx, &cfg.Tika)
		if err != nil {
			return nil, fmt.Errorf("创建文本提取器失败: %w", err)
		}
		svc.extractor = extractor
	}

	return svc, nil
}

// HandleResumeUpload 处理简历上传
// 流程：流式上传到MinIO（同时计算MD5）→ Redis去重 → 落库 → 发布上传消息
func (s *scoreServiceImpl) HandleResumeUpload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	ctx, span := tracer.Start(ctx, "HandleResumeUpload")
	defer span.End()

	if s.storage.MySQL == nil || s.storage.MinIO == nil || s.storage.RabbitMQ == nil {
		return nil, ErrStorageNotInit
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("不支持的文件类型: %s", ext)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成提交UUID失败: %w", err)
	}
	submissionUUID := id.String()

	span.SetAttributes(
		attribute.String("submission_uuid", submissionUUID),
		attribute.String("target_job_id", req.TargetJobID),
	)
	log := logger.Logger.With().Str("submission_uuid", submissionUUID).Logger()

	objectKey, md5Hex, err := s.storage.MinIO.UploadResumeFileStreaming(ctx, submissionUUID, ext, req.Reader, req.FileSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "上传失败")
		return nil, NewStoreError(submissionUUID, err.Error())
	}
	log.Debug().Str("object_key", objectKey).Str("md5", md5Hex).Msg("原始简历已上传到MinIO")

	now := time.Now()
	submission := &models.ResumeSubmission{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       req.SourceChannel,
		OriginalFilename:    req.FileName,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          md5Hex,
		ProcessingStatus:    models.StatusPendingParsing,
	}
	if req.TargetJobID != "" {
		submission.TargetJobID = &req.TargetJobID
	}

	// 文件级去重，Redis异常时降级为不去重
	if s.storage.Redis != nil {
		exists, dedupErr := s.storage.Redis.CheckAndAddRawFileMD5(ctx, md5Hex)
		if dedupErr != nil {
			log.Warn().Err(dedupErr).Msg("Redis文件MD5去重检查失败，跳过去重")
		} else if exists {
			originalUUID, _ := s.storage.Redis.GetFileMD5Submission(ctx, md5Hex)
			log.Info().Str("duplicate_of", originalUUID).Msg("检测到重复文件，标记为重复提交")
			span.SetAttributes(attribute.Bool("duplicate_file", true))

			// 重复文件不保留对象，原件在首次提交的记录里
			if delErr := s.storage.MinIO.DeleteFile(ctx, objectKey); delErr != nil {
				log.Warn().Err(delErr).Msg("删除重复文件对象失败")
			} else {
				submission.OriginalFilePathOSS = ""
			}

			submission.ProcessingStatus = models.StatusRejectedDuplicate
			if err := s.storage.MySQL.CreateResumeSubmission(ctx, submission); err != nil {
				return nil, NewDatabaseError(submissionUUID, err.Error())
			}
			return &UploadResult{
				SubmissionUUID: submissionUUID,
				Status:         models.StatusRejectedDuplicate,
				Duplicate:      true,
				DuplicateOf:    originalUUID,
			}, nil
		} else {
			if err := s.storage.Redis.SetFileMD5Submission(ctx, md5Hex, submissionUUID); err != nil {
				log.Warn().Err(err).Msg("记录MD5到提交UUID映射失败")
			}
		}
	}

	if err := s.storage.MySQL.CreateResumeSubmission(ctx, submission); err != nil {
		span.RecordError(err)
		return nil, NewDatabaseError(submissionUUID, err.Error())
	}

	uploadMsg := &storage.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: now,
		SourceChannel:       req.SourceChannel,
		TargetJobID:         req.TargetJobID,
		OriginalFilename:    req.FileName,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          md5Hex,
	}
	if err := s.storage.RabbitMQ.PublishUploadedEvent(ctx, uploadMsg); err != nil {
		log.Error().Err(err).Msg("发布上传消息失败，回滚去重记录")
		span.RecordError(err)
		span.SetStatus(codes.Error, "发布失败")
		// 去重集合回滚，让同一文件可以重试上传
		if s.storage.Redis != nil {
			if rmErr := s.storage.Redis.RemoveRawFileMD5(ctx, md5Hex); rmErr != nil {
				log.Warn().Err(rmErr).Msg("回滚文件MD5失败")
			}
		}
		if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submissionUUID, models.StatusParsingFailed, "发布上传消息失败"); updErr != nil {
			log.Error().Err(updErr).Msg("更新失败状态出错")
		}
		return nil, NewPublishError(submissionUUID, err.Error())
	}

	log.Info().Msg("简历上传受理完成，已进入评分流水线")
	span.SetStatus(codes.Ok, "受理成功")
	return &UploadResult{
		SubmissionUUID: submissionUUID,
		Status:         models.StatusPendingParsing,
	}, nil
}

// ProcessUploadedResume 消费上传消息，执行提取、去重、评分全流程
// 返回nil表示消息应被确认（包括业务上的永久失败），返回error表示应重新入队
func (s *scoreServiceImpl) ProcessUploadedResume(ctx context.Context, message storage.ResumeUploadMessage) error {
	ctx, span := tracer.Start(ctx, "ProcessUploadedResume",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("submission_uuid", message.SubmissionUUID),
		attribute.String("target_job_id", message.TargetJobID),
	)
	log := logger.Logger.With().Str("submission_uuid", message.SubmissionUUID).Logger()
	ctx = log.WithContext(ctx)

	if s.storage.MySQL == nil || s.storage.MinIO == nil {
		return ErrStorageNotInit
	}
	if s.extractor == nil {
		return ErrExtractorNotInit
	}

	submission, err := s.storage.MySQL.GetResumeSubmission(ctx, message.SubmissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Msg("提交记录不存在，可能已被删除，确认消息")
			return nil
		}
		return NewDatabaseError(message.SubmissionUUID, err.Error())
	}

	// 幂等检查：只有待解析或待评分（重试）状态的消息才继续处理
	if submission.ProcessingStatus != models.StatusPendingParsing &&
		submission.ProcessingStatus != models.StatusQueuedForScoring {
		log.Debug().Str("current_status", submission.ProcessingStatus).Msg("跳过重复或已处理的消息")
		span.SetAttributes(attribute.String("skipped_reason", submission.ProcessingStatus))
		return nil
	}

	// 同一提交的并发保护，拿不到锁说明另一worker正在处理
	if s.storage.Redis != nil {
		lockKey := fmt.Sprintf(constants.KeyScoreLock, message.SubmissionUUID)
		lockValue, lockErr := s.storage.Redis.AcquireLock(ctx, lockKey, 2*time.Minute)
		if lockErr == nil && lockValue == "" {
			log.Debug().Msg("未获取到评分锁，另一worker处理中")
			return nil
		}
		if lockErr == nil {
			defer func() {
				if _, rlErr := s.storage.Redis.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockValue); rlErr != nil {
					log.Warn().Err(rlErr).Msg("释放评分锁失败")
				}
			}()
		}
	}

	// 阶段一：提取文本并做内容级去重
	text, proceed, err := s.extractAndDeduplicate(ctx, submission, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "提取阶段失败")
		return err
	}
	if !proceed {
		// 永久失败或重复内容，状态已落库，确认消息
		return nil
	}

	// 阶段二：评分并落库
	if err := s.scoreAndPersist(ctx, submission, message.TargetJobID, text); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "评分阶段失败")
		return err
	}

	span.SetStatus(codes.Ok, "处理成功")
	log.Info().Msg("简历评分流水线处理完成")
	return nil
}

// extractAndDeduplicate 下载原始文件、提取文本、内容去重并推进状态到QUEUED_FOR_SCORING
// 返回的proceed为false表示流程应终止但消息可以确认
func (s *scoreServiceImpl) extractAndDeduplicate(ctx context.Context, submission *models.ResumeSubmission, message storage.ResumeUploadMessage) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "ExtractAndDeduplicate")
	defer span.End()
	log := logger.Ctx(ctx)

	// 重试场景下解析文本已经就绪，直接从MinIO取回
	if submission.ProcessingStatus == models.StatusQueuedForScoring && submission.ParsedTextPathOSS != "" {
		text, err := s.storage.MinIO.GetParsedText(ctx, submission.ParsedTextPathOSS)
		if err != nil {
			return "", false, NewDownloadError(submission.SubmissionUUID, err.Error())
		}
		log.Debug().Msg("重试评分，复用已解析文本")
		return text, true, nil
	}

	fileBytes, err := s.storage.MinIO.GetResumeFile(ctx, message.OriginalFilePathOSS)
	if err != nil {
		span.SetAttributes(attribute.String("error.type", "download_failure"))
		return "", false, NewDownloadError(submission.SubmissionUUID, err.Error())
	}
	span.SetAttributes(attribute.Int("file_size_bytes", len(fileBytes)))

	var text string
	if strings.HasSuffix(strings.ToLower(message.OriginalFilePathOSS), ".txt") {
		text = string(fileBytes)
	} else {
		text, _, err = s.extractor.ExtractTextFromBytes(ctx, fileBytes, message.OriginalFilePathOSS)
		if err != nil {
			// 文件损坏等解析错误重试也无法恢复，标记永久失败
			log.Error().Err(err).Msg("提取简历文本失败，标记解析失败")
			span.RecordError(err)
			if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submission.SubmissionUUID, models.StatusParsingFailed, err.Error()); updErr != nil {
				return "", false, NewDatabaseError(submission.SubmissionUUID, updErr.Error())
			}
			return "", false, nil
		}
	}
	span.SetAttributes(
		attribute.Int("text_length", len(text)),
		attribute.String("text_preview", tracing.SafeResumeContent(text)),
	)

	if len(strings.TrimSpace(text)) < scoring.MinResumeLength {
		log.Info().Int("text_length", len(text)).Msg("简历文本过短，标记解析失败")
		if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submission.SubmissionUUID, models.StatusParsingFailed, ErrResumeTooShort.Error()); updErr != nil {
			return "", false, NewDatabaseError(submission.SubmissionUUID, updErr.Error())
		}
		return "", false, nil
	}

	sum := md5.Sum([]byte(text))
	textMD5Hex := hex.EncodeToString(sum[:])

	// 内容级去重：同一份简历换个文件名/格式重新上传时在这里拦截
	if s.storage.Redis != nil {
		exists, dedupErr := s.storage.Redis.CheckAndAddParsedTextMD5(ctx, textMD5Hex)
		if dedupErr != nil {
			log.Warn().Err(dedupErr).Msg("Redis文本MD5去重检查失败，跳过内容去重")
		} else if exists {
			log.Info().Str("md5", textMD5Hex).Msg("检测到重复的简历内容，标记为重复提交")
			span.SetAttributes(attribute.Bool("duplicate_content", true))
			if updErr := s.storage.MySQL.UpdateResumeProcessingStatus(ctx, submission.SubmissionUUID, models.StatusRejectedDuplicate); updErr != nil {
				return "", false, NewDatabaseError(submission.SubmissionUUID, updErr.Error())
			}
			return "", false, nil
		}
	}

	textObjectKey, err := s.storage.MinIO.UploadParsedText(ctx, submission.SubmissionUUID, text)
	if err != nil {
		return "", false, NewStoreError(submission.SubmissionUUID, err.Error())
	}
	log.Debug().Str("object_key", textObjectKey).Msg("解析文本已上传到MinIO")

	err = s.storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.storage.MySQL.UpdateResumeSubmissionFields(tx, submission.SubmissionUUID, map[string]interface{}{
			"parsed_text_path_oss": textObjectKey,
			"raw_text_md5":         textMD5Hex,
			"extractor_version":    s.cfg.ActiveExtractorVersion,
			"processing_status":    models.StatusQueuedForScoring,
		})
	})
	if err != nil {
		return "", false, NewDatabaseError(submission.SubmissionUUID, err.Error())
	}
	submission.ParsedTextPathOSS = textObjectKey

	return text, true, nil
}

// scoreAndPersist 解析岗位要求、执行评分，并在一个事务内落库报告、推进状态、写outbox
func (s *scoreServiceImpl) scoreAndPersist(ctx context.Context, submission *models.ResumeSubmission, targetJobID string, resumeText string) error {
	ctx, span := tracer.Start(ctx, "ScoreAndPersist")
	defer span.End()
	log := logger.Ctx(ctx)

	if targetJobID == "" && submission.TargetJobID != nil {
		targetJobID = *submission.TargetJobID
	}
	if targetJobID == "" {
		log.Info().Msg("未指定目标岗位，无法评分，标记评分失败")
		if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submission.SubmissionUUID, models.StatusScoringFailed, "未指定目标岗位"); updErr != nil {
			return NewDatabaseError(submission.SubmissionUUID, updErr.Error())
		}
		return nil
	}

	jobReq, err := s.resolveJobRequirement(ctx, targetJobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			log.Info().Str("job_id", targetJobID).Msg("目标岗位不存在，标记评分失败")
			if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submission.SubmissionUUID, models.StatusScoringFailed, ErrJobNotFound.Error()); updErr != nil {
				return NewDatabaseError(submission.SubmissionUUID, updErr.Error())
			}
			return nil
		}
		return err
	}

	breakdown, err := s.engine.ScoreResume(resumeText, jobReq)
	if err != nil {
		var validationErr *scoring.ValidationError
		if errors.As(err, &validationErr) {
			// 校验类错误重试无意义，标记永久失败
			log.Info().Err(err).Msg("评分输入校验失败，标记评分失败")
			tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeValidation,
				attribute.String("validation.field", validationErr.Field))
			if updErr := s.storage.MySQL.UpdateResumeProcessingFailure(ctx, submission.SubmissionUUID, models.StatusScoringFailed, err.Error()); updErr != nil {
				return NewDatabaseError(submission.SubmissionUUID, updErr.Error())
			}
			return nil
		}
		return NewScoringError(submission.SubmissionUUID, err.Error())
	}
	span.SetAttributes(
		attribute.Int("total_score", breakdown.TotalScore),
		attribute.String("match_category", string(breakdown.MatchCategory)),
	)

	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return NewScoringError(submission.SubmissionUUID, fmt.Sprintf("序列化评分明细失败: %v", err))
	}
	feedbackJSON, err := models.SliceToJSON(breakdown.Feedback)
	if err != nil {
		return NewScoringError(submission.SubmissionUUID, fmt.Sprintf("序列化评分反馈失败: %v", err))
	}

	scoredAt := time.Now()
	report := &models.ScoreReport{
		SubmissionUUID: submission.SubmissionUUID,
		JobID:          targetJobID,
		TotalScore:     breakdown.TotalScore,
		MatchCategory:  string(breakdown.MatchCategory),
		BreakdownJSON:  breakdownJSON,
		Recommendation: breakdown.Recommendation,
		FeedbackJSON:   feedbackJSON,
		EngineVersion:  scoring.EngineVersion,
		ScoredAt:       scoredAt,
	}

	scoredEvent := storage.ResumeScoredEvent{
		SubmissionUUID: submission.SubmissionUUID,
		JobID:          targetJobID,
		TotalScore:     breakdown.TotalScore,
		MatchCategory:  string(breakdown.MatchCategory),
		EngineVersion:  scoring.EngineVersion,
		ScoredAt:       scoredAt,
	}
	payloadBytes, err := json.Marshal(scoredEvent)
	if err != nil {
		return NewScoringError(submission.SubmissionUUID, fmt.Sprintf("序列化评分事件失败: %v", err))
	}

	// 报告、状态推进、事件发布在同一事务内，保证最终一致
	err = s.storage.MySQL.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.storage.MySQL.SaveScoreReport(tx, report); err != nil {
			return fmt.Errorf("保存评分报告失败: %w", err)
		}
		if err := s.storage.MySQL.UpdateResumeSubmissionFields(tx, submission.SubmissionUUID, map[string]interface{}{
			"processing_status": models.StatusScoringCompleted,
			"error_message":     "",
		}); err != nil {
			return fmt.Errorf("更新提交状态失败: %w", err)
		}
		outboxEntry := &models.OutboxMessage{
			AggregateID:      submission.SubmissionUUID,
			EventType:        "resume.scored",
			Payload:          string(payloadBytes),
			TargetExchange:   s.cfg.RabbitMQ.ResumeEventsExchange,
			TargetRoutingKey: s.cfg.RabbitMQ.ScoredRoutingKey,
		}
		if err := s.storage.MySQL.CreateOutboxMessage(tx, outboxEntry); err != nil {
			return fmt.Errorf("写入outbox记录失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return NewDatabaseError(submission.SubmissionUUID, err.Error())
	}

	// 报告写入Redis缓存，失败不影响主流程
	if s.storage.Redis != nil {
		view := &ScoreReportView{
			SubmissionUUID: submission.SubmissionUUID,
			JobID:          targetJobID,
			Breakdown:      *breakdown,
			EngineVersion:  scoring.EngineVersion,
			ScoredAt:       scoredAt,
		}
		if viewJSON, marshalErr := json.Marshal(view); marshalErr == nil {
			if cacheErr := s.storage.Redis.CacheScoreReport(ctx, submission.SubmissionUUID, string(viewJSON), s.storage.Redis.GetJobCacheDuration()); cacheErr != nil {
				log.Warn().Err(cacheErr).Msg("缓存评分报告失败")
			}
		}
	}

	log.Info().
		Int("total_score", breakdown.TotalScore).
		Str("match_category", string(breakdown.MatchCategory)).
		Msg("评分完成并已落库")
	return nil
}

// resolveJobRequirement 取岗位要求：Redis缓存优先，未命中回源MySQL并回填缓存
func (s *scoreServiceImpl) resolveJobRequirement(ctx context.Context, jobID string) (*types.JobRequirement, error) {
	log := logger.Ctx(ctx)

	if s.storage.Redis != nil {
		req, err := s.storage.Redis.GetJobRequirement(ctx, jobID)
		if err == nil {
			return req, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Str("job_id", jobID).Msg("读取岗位要求缓存失败，回源数据库")
		}
	}

	job, err := s.storage.MySQL.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, NewDatabaseError("", err.Error())
	}

	req, err := storage.JobToRequirement(job)
	if err != nil {
		return nil, fmt.Errorf("解析岗位要求失败: %w", err)
	}

	if s.storage.Redis != nil {
		if cacheErr := s.storage.Redis.SetJobRequirement(ctx, jobID, req); cacheErr != nil {
			log.Warn().Err(cacheErr).Str("job_id", jobID).Msg("回填岗位要求缓存失败")
		}
	}
	return req, nil
}

// ScoreAgainstJob 同步评分接口，用于不走异步流水线的直接调用
func (s *scoreServiceImpl) ScoreAgainstJob(ctx context.Context, resumeText string, jobID string) (*types.ScoreBreakdown, error) {
	ctx, span := tracer.Start(ctx, "ScoreAgainstJob")
	defer span.End()
	span.SetAttributes(attribute.String("job_id", jobID))

	jobReq, err := s.resolveJobRequirement(ctx, jobID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.ScoreWithRequirement(ctx, resumeText, jobReq)
}

// ScoreWithRequirement 用调用方提供的岗位要求直接评分
func (s *scoreServiceImpl) ScoreWithRequirement(ctx context.Context, resumeText string, job *types.JobRequirement) (*types.ScoreBreakdown, error) {
	_, span := tracer.Start(ctx, "ScoreWithRequirement")
	defer span.End()

	breakdown, err := s.engine.ScoreResume(resumeText, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "评分失败")
		return nil, err
	}
	span.SetAttributes(attribute.Int("total_score", breakdown.TotalScore))
	return breakdown, nil
}

// GetScoreReport 查询评分报告
func (s *scoreServiceImpl) GetScoreReport(ctx context.Context, submissionUUID string) (*ScoreReportView, error) {
	ctx, span := tracer.Start(ctx, "GetScoreReport")
	defer span.End()
	span.SetAttributes(attribute.String("submission_uuid", submissionUUID))
	log := logger.Logger.With().Str("submission_uuid", submissionUUID).Logger()

	if s.storage.Redis != nil {
		cached, err := s.storage.Redis.GetCachedScoreReport(ctx, submissionUUID)
		if err == nil && cached != "" {
			var view ScoreReportView
			if unmarshalErr := json.Unmarshal([]byte(cached), &view); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return &view, nil
			}
			log.Warn().Msg("评分报告缓存内容损坏，回源数据库")
		}
	}

	report, err := s.storage.MySQL.GetScoreReportBySubmission(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, NewDatabaseError(submissionUUID, err.Error())
	}

	var breakdown types.ScoreBreakdown
	if err := json.Unmarshal(report.BreakdownJSON, &breakdown); err != nil {
		return nil, fmt.Errorf("解析评分明细失败: %w", err)
	}

	view := &ScoreReportView{
		SubmissionUUID: report.SubmissionUUID,
		JobID:          report.JobID,
		Breakdown:      breakdown,
		EngineVersion:  report.EngineVersion,
		ScoredAt:       report.ScoredAt,
	}

	if s.storage.Redis != nil {
		if viewJSON, marshalErr := json.Marshal(view); marshalErr == nil {
			if cacheErr := s.storage.Redis.CacheScoreReport(ctx, submissionUUID, string(viewJSON), s.storage.Redis.GetJobCacheDuration()); cacheErr != nil {
				log.Warn().Err(cacheErr).Msg("回填评分报告缓存失败")
			}
		}
	}
	return view, nil
}
