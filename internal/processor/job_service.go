package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"gorm.io/gorm"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/scoring"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage/models"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/types"
)

// JobInput 创建/更新岗位的输入
type JobInput struct {
	Title                   string   `json:"title"`
	Department              string   `json:"department"`
	Location                string   `json:"location"`
	Description             string   `json:"description"`
	RequiredSkills          []string `json:"required_skills"`
	GoodToHaveSkills        []string `json:"good_to_have_skills"`
	SoftSkills              []string `json:"soft_skills"`
	ExperienceText          string   `json:"experience_text"`
	RequiredExperienceYears float64  `json:"required_experience_years"`
	CreatedByUserID         string   `json:"created_by_user_id"`
}

// ReportSummary 岗位维度的报告列表项
type ReportSummary struct {
	SubmissionUUID string    `json:"submission_uuid"`
	TotalScore     int       `json:"total_score"`
	MatchCategory  string    `json:"match_category"`
	Recommendation string    `json:"recommendation"`
	ScoredAt       time.Time `json:"scored_at"`
}

// JobService 岗位管理服务接口
type JobService interface {
	CreateJob(ctx context.Context, input *JobInput) (*models.Job, error)
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJob(ctx context.Context, jobID string, input *JobInput) (*models.Job, error)
	GetJobRequirement(ctx context.Context, jobID string) (*types.JobRequirement, error)
	ListReportsForJob(ctx context.Context, jobID string, limit, offset int) ([]ReportSummary, error)
}

type jobServiceImpl struct {
	storage *storage.Storage
}

// NewJobService 创建岗位管理服务
func NewJobService(storageManager *storage.Storage) (JobService, error) {
	if storageManager == nil || storageManager.MySQL == nil {
		return nil, ErrStorageNotInit
	}
	return &jobServiceImpl{storage: storageManager}, nil
}

func validateJobInput(input *JobInput) error {
	if input == nil {
		return errors.New("岗位输入不能为空")
	}
	if strings.TrimSpace(input.Title) == "" {
		return errors.New("岗位名称不能为空")
	}
	if strings.TrimSpace(input.Description) == "" {
		return errors.New("岗位描述不能为空")
	}
	if input.RequiredSkills == nil {
		return errors.New("必备技能列表不能为空")
	}
	return nil
}

// applyInput 把输入写入模型，经验年限缺省时从经验描述文本推导
func applyInput(job *models.Job, input *JobInput) error {
	requiredJSON, err := models.SliceToJSON(input.RequiredSkills)
	if err != nil {
		return fmt.Errorf("序列化必备技能失败: %w", err)
	}
	goodToHaveJSON, err := models.SliceToJSON(input.GoodToHaveSkills)
	if err != nil {
		return fmt.Errorf("序列化加分技能失败: %w", err)
	}
	softJSON, err := models.SliceToJSON(input.SoftSkills)
	if err != nil {
		return fmt.Errorf("序列化软技能失败: %w", err)
	}

	years := input.RequiredExperienceYears
	if years == 0 && input.ExperienceText != "" {
		years = scoring.ParseRequiredExperience(input.ExperienceText)
	}

	job.JobTitle = input.Title
	job.Department = input.Department
	job.Location = input.Location
	job.JobDescriptionText = input.Description
	job.RequiredSkillsJSON = requiredJSON
	job.GoodToHaveSkillsJSON = goodToHaveJSON
	job.SoftSkillsJSON = softJSON
	job.ExperienceText = input.ExperienceText
	job.RequiredExperienceYears = years
	job.CreatedByUserID = input.CreatedByUserID
	return nil
}

func (j *jobServiceImpl) CreateJob(ctx context.Context, input *JobInput) (*models.Job, error) {
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成岗位ID失败: %w", err)
	}

	job := &models.Job{
		JobID:  id.String(),
		Status: "ACTIVE",
	}
	if err := applyInput(job, input); err != nil {
		return nil, err
	}

	if err := j.storage.MySQL.CreateJob(ctx, job); err != nil {
		return nil, NewDatabaseError("", err.Error())
	}

	logger.Info().Str("job_id", job.JobID).Str("title", job.JobTitle).Msg("岗位创建成功")
	return job, nil
}

func (j *jobServiceImpl) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := j.storage.MySQL.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, NewDatabaseError("", err.Error())
	}
	return job, nil
}

func (j *jobServiceImpl) UpdateJob(ctx context.Context, jobID string, input *JobInput) (*models.Job, error) {
	if err := validateJobInput(input); err != nil {
		return nil, err
	}

	job, err := j.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := applyInput(job, input); err != nil {
		return nil, err
	}

	if err := j.storage.MySQL.UpdateJob(ctx, job); err != nil {
		return nil, NewDatabaseError("", err.Error())
	}

	// 岗位要求变更后旧缓存作废，下次评分回源取新要求
	if j.storage.Redis != nil {
		if err := j.storage.Redis.InvalidateJobRequirement(ctx, jobID); err != nil {
			logger.Warn().Err(err).Str("job_id", jobID).Msg("失效岗位要求缓存失败")
		}
	}

	logger.Info().Str("job_id", jobID).Msg("岗位更新成功")
	return job, nil
}

func (j *jobServiceImpl) GetJobRequirement(ctx context.Context, jobID string) (*types.JobRequirement, error) {
	job, err := j.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return storage.JobToRequirement(job)
}

func (j *jobServiceImpl) ListReportsForJob(ctx context.Context, jobID string, limit, offset int) ([]ReportSummary, error) {
	// 先确认岗位存在，避免对不存在的岗位返回空列表造成误解
	if _, err := j.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	reports, err := j.storage.MySQL.ListScoreReportsByJob(ctx, jobID, limit, offset)
	if err != nil {
		return nil, NewDatabaseError("", err.Error())
	}

	summaries := make([]ReportSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, ReportSummary{
			SubmissionUUID: r.SubmissionUUID,
			TotalScore:     r.TotalScore,
			MatchCategory:  r.MatchCategory,
			Recommendation: r.Recommendation,
			ScoredAt:       r.ScoredAt,
		})
	}
	return summaries, nil
}
