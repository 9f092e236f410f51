package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 简历提交的处理状态机
const (
	StatusPendingParsing    = "PENDING_PARSING"
	StatusQueuedForScoring  = "QUEUED_FOR_SCORING"
	StatusScoringCompleted  = "SCORING_COMPLETED"
	StatusParsingFailed     = "PARSING_FAILED"
	StatusScoringFailed     = "SCORING_FAILED"
	StatusRejectedDuplicate = "REJECTED_DUPLICATE"
)

// Job 岗位信息表
// 技能列表等结构化要求以JSON列存储，评分时反序列化为领域对象
type Job struct {
	JobID                   string         `gorm:"type:char(36);primaryKey"`
	JobTitle                string         `gorm:"type:varchar(255);not null"`
	Department              string         `gorm:"type:varchar(255)"`
	Location                string         `gorm:"type:varchar(255)"`
	JobDescriptionText      string         `gorm:"type:text;not null"`
	RequiredSkillsJSON      datatypes.JSON `gorm:"type:json"`
	GoodToHaveSkillsJSON    datatypes.JSON `gorm:"type:json"`
	SoftSkillsJSON          datatypes.JSON `gorm:"type:json"`
	ExperienceText          string         `gorm:"type:varchar(255)"`
	RequiredExperienceYears float64        `gorm:"type:double"`
	Status                  string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedByUserID         string         `gorm:"type:char(36)"`
	CreatedAt               time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt               time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// ResumeSubmission 简历提交/快照表
type ResumeSubmission struct {
	SubmissionUUID      string    `gorm:"type:char(36);primaryKey"`
	SubmissionTimestamp time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_rs_submission_timestamp"`
	SourceChannel       string    `gorm:"type:varchar(100)"`
	TargetJobID         *string   `gorm:"type:char(36);index:idx_rs_target_job_id"`
	OriginalFilename    string    `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string    `gorm:"type:varchar(1024)"`
	ParsedTextPathOSS   string    `gorm:"type:varchar(1024)"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_rs_raw_file_md5"`
	RawTextMD5          string    `gorm:"type:char(32);index:idx_rs_raw_text_md5"`
	ProcessingStatus    string    `gorm:"type:varchar(50);default:'PENDING_PARSING';index:idx_rs_processing_status"`
	ExtractorVersion    string    `gorm:"type:varchar(50)"`
	ErrorMessage        string    `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Job *Job `gorm:"foreignKey:TargetJobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (ResumeSubmission) TableName() string {
	return "resume_submissions"
}

// ScoreReport 评分报告表
// BreakdownJSON 存储完整的分维度结果，TotalScore/MatchCategory 冗余为独立列便于排序过滤
type ScoreReport struct {
	ReportID       uint64         `gorm:"primaryKey;autoIncrement"`
	SubmissionUUID string         `gorm:"type:char(36);not null;uniqueIndex:uq_sr_submission_job,priority:1;index:idx_sr_submission_uuid"`
	JobID          string         `gorm:"type:char(36);not null;uniqueIndex:uq_sr_submission_job,priority:2;index:idx_sr_job_id_total,priority:1"`
	TotalScore     int            `gorm:"type:int;not null;index:idx_sr_job_id_total,priority:2"`
	MatchCategory  string         `gorm:"type:varchar(50);not null;index:idx_sr_match_category"`
	BreakdownJSON  datatypes.JSON `gorm:"type:json;not null"`
	Recommendation string         `gorm:"type:text"`
	FeedbackJSON   datatypes.JSON `gorm:"type:json"`
	EngineVersion  string         `gorm:"type:varchar(50)"`
	ScoredAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	CreatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt      time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	ResumeSubmission *ResumeSubmission `gorm:"foreignKey:SubmissionUUID;references:SubmissionUUID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Job              *Job              `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ScoreReport) TableName() string {
	return "score_reports"
}

// SliceToJSON 将字符串切片序列化为 datatypes.JSON，nil切片序列化为空数组
func SliceToJSON(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	bytes, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
