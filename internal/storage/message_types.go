package storage

import "time"

// ResumeUploadMessage 简历上传消息
// 上传接口落库后发布，评分消费者据此拉取原始文件并走解析+评分流程
type ResumeUploadMessage struct {
	SubmissionUUID      string    `json:"submission_uuid"`          // 提交UUID，主键
	SubmissionTimestamp time.Time `json:"submission_timestamp"`     // 提交时间戳
	SourceChannel       string    `json:"source_channel,omitempty"` // 来源渠道
	TargetJobID         string    `json:"target_job_id"`            // 目标岗位ID
	OriginalFilename    string    `json:"original_filename"`        // 原始文件名
	OriginalFilePathOSS string    `json:"original_file_path_oss"`   // MinIO中的对象路径
	RawFileMD5          string    `json:"raw_file_md5,omitempty"`   // 原始文件MD5，处理失败时用于回滚去重集合
}

// ResumeScoredEvent 评分完成事件
// 经outbox中继发布，供下游系统（通知、报表等）消费
type ResumeScoredEvent struct {
	SubmissionUUID string    `json:"submission_uuid"`
	JobID          string    `json:"job_id"`
	TotalScore     int       `json:"total_score"`
	MatchCategory  string    `json:"match_category"`
	EngineVersion  string    `json:"engine_version,omitempty"`
	ScoredAt       time.Time `json:"scored_at"`
}
