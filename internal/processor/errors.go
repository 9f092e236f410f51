package processor

import (
	"errors"
	"fmt"
)

// 流水线各阶段的基础错误类型
var (
	ErrResumeDownloadFailed = errors.New("下载简历失败")
	ErrParseTextFailed      = errors.New("提取简历文本失败")
	ErrStoreTextFailed      = errors.New("上传解析文本失败")
	ErrPublishMessageFailed = errors.New("发布消息失败")
	ErrUpdateStatusFailed   = errors.New("更新简历状态失败")
	ErrDatabaseFailed       = errors.New("数据库操作失败")
	ErrJobNotFound          = errors.New("岗位不存在")
	ErrScoringFailed        = errors.New("评分失败")
	ErrDuplicateContent     = errors.New("检测到重复内容")
	ErrResumeTooShort       = errors.New("简历文本过短")
)

// ScoreProcessError 携带上下文的流水线错误
type ScoreProcessError struct {
	SubmissionUUID string
	Op             string
	BaseErr        error
	Detail         string
}

func (e *ScoreProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.SubmissionUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.SubmissionUUID)
}

func (e *ScoreProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 支持errors.Is按基础错误类型比较
func (e *ScoreProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func NewDownloadError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "download", BaseErr: ErrResumeDownloadFailed, Detail: detail}
}

func NewParseError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "parse", BaseErr: ErrParseTextFailed, Detail: detail}
}

func NewStoreError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "store", BaseErr: ErrStoreTextFailed, Detail: detail}
}

func NewPublishError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "publish", BaseErr: ErrPublishMessageFailed, Detail: detail}
}

func NewDatabaseError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "database", BaseErr: ErrDatabaseFailed, Detail: detail}
}

func NewScoringError(uuid, detail string) error {
	return &ScoreProcessError{SubmissionUUID: uuid, Op: "score", BaseErr: ErrScoringFailed, Detail: detail}
}
